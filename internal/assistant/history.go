// Package assistant implements the follow-up chat assistants that run over
// the result of a product search.
package assistant

import (
	"strings"
	"sync"
)

const (
	historyWindow  = 4
	historyMaxRune = 200
)

type turn struct {
	role    string
	message string
}

// history is the conversation log shared by both assistants.
type history struct {
	mu    sync.Mutex
	turns []turn
}

func (h *history) add(user, assistant string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turn{"User", user}, turn{"Assistant", assistant})
}

// format renders the last few turns, each cut to a fixed length.
func (h *history) format() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.turns) == 0 {
		return "No previous conversation."
	}
	start := max(0, len(h.turns)-historyWindow)
	lines := make([]string, 0, len(h.turns)-start)
	for _, t := range h.turns[start:] {
		msg := t.message
		if r := []rune(msg); len(r) > historyMaxRune {
			msg = string(r[:historyMaxRune])
		}
		lines = append(lines, t.role+": "+msg)
	}
	return strings.Join(lines, "\n")
}

func (h *history) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}
