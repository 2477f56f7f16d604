package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pricecompare/internal/domain"
	"pricecompare/internal/service"
)

// SessionPort is the TUI-facing subset of the search session.
type SessionPort interface {
	Search(ctx context.Context, raw string, onProgress domain.ProgressFunc) service.Result
	ChatShopping(ctx context.Context, message string) string
}

type mode int

const (
	modeSearch mode = iota
	modeChat
)

type progressMsg struct {
	step    string
	percent int
}

type searchDoneMsg struct{ result service.Result }

type chatReplyMsg struct{ reply string }

type chatLine struct {
	role, text string
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx      context.Context
	session  SessionPort
	input    textinput.Model
	viewport viewport.Model
	bar      progress.Model
	spinner  spinner.Model

	mode      mode
	busy      bool
	ready     bool
	status    string
	percent   float64
	progress  chan progressMsg
	result    *service.Result
	cursor    int
	lastQuery string
	chat      []chatLine
}

// New creates a new TUI model instance.
func New(ctx context.Context, session SessionPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What are you shopping for? e.g. cheapest iPhone 15 128GB"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		ctx:      ctx,
		session:  session,
		input:    ti,
		viewport: viewport.New(0, 0),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		status:   "Type a product request and press Enter. Tab switches to chat.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and pipeline events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 2 + qh + 1 // header + progress, status + spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.bar.Width = max(10, msg.Width-4)
		m.refresh()
		return m, nil

	case progressMsg:
		if !m.busy {
			return m, nil
		}
		m.status = msg.step
		m.percent = float64(msg.percent) / 100
		return m, waitForProgress(m.progress)

	case searchDoneMsg:
		m.busy = false
		m.progress = nil
		m.percent = 1
		res := msg.result
		m.result = &res
		m.cursor = 0
		m.chat = nil
		m.status = fmt.Sprintf("%d offers for %q (%s)", len(res.Offers), res.Request.SearchQuery, res.Recommendation.Status)
		m.refresh()
		return m, nil

	case chatReplyMsg:
		m.busy = false
		m.chat = append(m.chat, chatLine{"Assistant", msg.reply})
		m.status = "Chatting with the shopping assistant. Tab returns to results."
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.mode == modeSearch {
				m.mode = modeChat
				m.input.Placeholder = "Ask about these results"
			} else {
				m.mode = modeSearch
				m.input.Placeholder = "What are you shopping for?"
			}
			m.refresh()
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.busy {
				return m, nil
			}
			m.input.SetValue("")
			m.busy = true
			if m.mode == modeChat {
				m.chat = append(m.chat, chatLine{"You", text})
				m.status = "Thinking..."
				m.refresh()
				return m, tea.Batch(m.spinner.Tick, m.runChat(text))
			}
			m.lastQuery = text
			m.percent = 0
			m.progress = make(chan progressMsg, 8)
			m.status = "Starting search..."
			return m, tea.Batch(m.spinner.Tick, m.runSearch(text, m.progress), waitForProgress(m.progress))
		case "down":
			if m.mode == modeSearch && m.result != nil && len(m.result.Offers) > 0 {
				m.cursor = (m.cursor + 1) % len(m.result.Offers)
				m.refresh()
				return m, nil
			}
		case "up":
			if m.mode == modeSearch && m.result != nil && len(m.result.Offers) > 0 {
				m.cursor = (m.cursor - 1 + len(m.result.Offers)) % len(m.result.Offers)
				m.refresh()
				return m, nil
			}
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) runSearch(query string, ch chan progressMsg) tea.Cmd {
	return func() tea.Msg {
		res := m.session.Search(m.ctx, query, func(step string, pct int) {
			ch <- progressMsg{step: step, percent: pct}
		})
		close(ch)
		return searchDoneMsg{result: res}
	}
}

func (m Model) runChat(message string) tea.Cmd {
	return func() tea.Msg {
		return chatReplyMsg{reply: m.session.ChatShopping(m.ctx, message)}
	}
}

// waitForProgress delivers the next checkpoint; it yields nothing once the
// search has closed the channel.
func waitForProgress(ch chan progressMsg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) refresh() {
	if m.mode == modeChat {
		m.viewport.SetContent(m.renderChat())
		return
	}
	m.viewport.SetContent(m.renderResults())
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := "Price Compare"
	if m.mode == modeChat {
		title += " · chat"
	}
	header := headerStyle.Render(title)
	bar := m.bar.ViewAs(m.percent)
	input := queryBoxStyle.Render(m.input.View())
	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + bar + "\n" + resultBoxStyle.Render(m.viewport.View()) + "\n" + input + "\n" + statusStyle.Render(status)
}

func (m Model) renderResults() string {
	if m.result == nil {
		return "No results yet."
	}
	rec := m.result.Recommendation
	var b strings.Builder
	b.WriteString(analysisStyle.Render(rec.Analysis))
	b.WriteString("\n")
	if rec.Status != domain.StatusSuccess {
		return b.String()
	}
	for _, pick := range []struct {
		label string
		p     *domain.Pick
	}{{"Best overall", rec.BestOverall}, {"Best value", rec.BestValue}, {"Fastest delivery", rec.FastestDelivery}} {
		if pick.p == nil {
			continue
		}
		o := rec.Products[pick.p.Index]
		fmt.Fprintf(&b, "%s: %s (%s, %s)\n  %s\n", labelStyle.Render(pick.label), o.Title, o.PriceString, o.Seller, pick.p.Reason)
	}
	if len(rec.Considerations) > 0 {
		b.WriteString("Consider: " + strings.Join(rec.Considerations, ", ") + "\n")
	}
	b.WriteString("\n")
	for i, o := range m.result.Offers {
		line := fmt.Sprintf("%2d. %s  %s  %s", i+1, highlightTerms(o.Title, m.lastQuery), o.PriceString, o.Seller)
		if o.Rating != nil {
			line += fmt.Sprintf("  ★%.1f", *o.Rating)
		}
		if o.Delivery != nil {
			line += "  " + *o.Delivery
		}
		if i == m.cursor {
			line = cursorStyle.Render("›") + line
			if o.URL != "" {
				line += "\n    " + urlStyle.Render(o.URL)
			}
		} else {
			line = " " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderChat() string {
	if m.result == nil {
		return "Run a search first, then ask the assistant about the results."
	}
	if len(m.chat) == 0 {
		return "Ask anything about the results, e.g. \"which seller delivers fastest?\""
	}
	lines := make([]string, len(m.chat))
	for i, l := range m.chat {
		lines[i] = labelStyle.Render(l.role+":") + " " + l.text
	}
	return strings.Join(lines, "\n\n")
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	analysisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	urlStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Underline(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)
)

// highlightTerms emphasizes the words of text that also occur in query.
func highlightTerms(text, query string) string {
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return text
	}
	return unicodeWordRe.ReplaceAllStringFunc(text, func(w string) string {
		if _, ok := qTokens[strings.ToLower(w)]; ok {
			return highlightStyle.Render(w)
		}
		return w
	})
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
