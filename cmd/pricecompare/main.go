package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"pricecompare/internal/aggregator"
	"pricecompare/internal/completion/ollama"
	compopenai "pricecompare/internal/completion/openai"
	"pricecompare/internal/config"
	"pricecompare/internal/domain"
	"pricecompare/internal/embedding/hashing"
	embopenai "pricecompare/internal/embedding/openai"
	"pricecompare/internal/httpapi"
	"pricecompare/internal/index"
	"pricecompare/internal/interpreter"
	"pricecompare/internal/logger"
	"pricecompare/internal/ranking"
	"pricecompare/internal/recommend"
	"pricecompare/internal/search/serpapi"
	"pricecompare/internal/service"
	"pricecompare/internal/tui"
	"pricecompare/internal/vectorstore"
	"pricecompare/internal/vectorstore/memory"
	"pricecompare/internal/vectorstore/qdrant"
	"pricecompare/internal/vectorstore/sqlite"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		serve   string
		plain   bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/pricecompare/config.yaml if not provided)")
	flag.StringVar(&serve, "serve", "", "Serve the HTTP API on this address instead of starting the TUI (e.g. :8080)")
	flag.BoolVar(&plain, "plain", false, "Read queries from stdin line by line and print results")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, cfgPath, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config %s: %v", cfgPath, err)
	}

	logCfg := cfg.Log
	if serve == "" && !plain && logCfg.Output == "stderr" {
		// the TUI owns the terminal
		logCfg.Output = "file"
		if logCfg.FilePath == "" {
			logCfg.FilePath = "pricecompare.log"
		}
	}
	lg, closer, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Assemble components
	var structured, chat domain.Completer
	switch cfg.Completion.Type {
	case "openai":
		c := cfg.Completion.OpenAI
		client, err := compopenai.NewClient(compopenai.Config{
			BaseURL:   c.BaseURL,
			APIKeyEnv: c.APIKeyEnv,
			Model:     c.Model,
			Timeout:   time.Duration(c.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai completion init failed: %v", err)
		}
		structured, chat = client, client
	case "ollama":
		c := cfg.Completion.Ollama
		jsonClient, err := ollama.NewClient(ollama.Config{ServerURL: c.ServerURL, Model: c.Model, JSONMode: true})
		if err != nil {
			log.Fatalf("ollama init failed: %v", err)
		}
		textClient, err := ollama.NewClient(ollama.Config{ServerURL: c.ServerURL, Model: c.Model})
		if err != nil {
			log.Fatalf("ollama init failed: %v", err)
		}
		structured, chat = jsonClient, textClient
	}

	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "hashing":
		emb = hashing.NewEmbedder(cfg.Embedder.Hashing.Dimension)
	case "openai":
		c := cfg.Embedder.OpenAI
		client, err := embopenai.NewClient(embopenai.Config{
			BaseURL:   c.BaseURL,
			APIKeyEnv: c.APIKeyEnv,
			Model:     c.Model,
			Timeout:   time.Duration(c.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
	}

	var st vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "memory":
		st = memory.NewStorage()
	case "sqlite":
		db, err := sqlite.Open(cfg.VectorStore.SQLite.Path, cfg.VectorStore.Collection)
		if err != nil {
			log.Fatalf("sqlite store init failed: %v", err)
		}
		defer db.Close()
		st = db
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		st = qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     os.Getenv(q.APIKeyEnv),
			Collection: cfg.VectorStore.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		})
	}

	var sources []domain.Source
	for _, name := range cfg.Search.Sources {
		switch name {
		case "serpapi":
			s := cfg.Search.SerpAPI
			client, err := serpapi.NewClient(serpapi.Config{
				BaseURL:    s.BaseURL,
				APIKeyEnv:  s.APIKeyEnv,
				Timeout:    time.Duration(s.TimeoutSecs) * time.Second,
				MaxResults: cfg.Defaults.MaxResults,
			})
			if err != nil {
				log.Fatalf("serpapi init failed: %v", err)
			}
			sources = append(sources, client)
		}
	}

	policy, err := ranking.ParsePolicy(cfg.Ranking.Policy)
	if err != nil {
		log.Fatalf("ranking: %v", err)
	}

	defaults := domain.Defaults{
		Region:     cfg.Defaults.Region,
		Currency:   cfg.Defaults.Currency,
		MaxResults: cfg.Defaults.MaxResults,
	}
	ix := index.New(emb, st, lg.With().Str("component", "index").Logger())
	pipeline := service.NewPipelineService(
		interpreter.New(structured, defaults, lg.With().Str("component", "interpreter").Logger()),
		aggregator.New(sources, defaults, lg.With().Str("component", "aggregator").Logger()),
		ix,
		recommend.New(structured, lg.With().Str("component", "recommend").Logger()),
		policy,
		cfg.Recommend.TopN,
		lg.With().Str("component", "pipeline").Logger(),
	)
	session := service.NewSession(pipeline, ix, chat, lg.With().Str("component", "session").Logger())

	lg.Info().
		Str("config", cfgPath).
		Str("completion", cfg.Completion.Type).
		Str("embedder", emb.Name()).
		Str("vector_store", cfg.VectorStore.Type).
		Str("policy", string(policy)).
		Msg("pricecompare ready")

	switch {
	case serve != "":
		runServer(ctx, serve, session, lg)
	case plain:
		runPlain(ctx, os.Stdin, os.Stdout, session)
	default:
		if _, err := tea.NewProgram(tui.New(ctx, session), tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			log.Fatal(err)
		}
	}
}

func runServer(ctx context.Context, addr string, session *service.Session, lg zerolog.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(session, lg.With().Str("component", "http").Logger())),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	lg.Info().Str("addr", addr).Msg("http api listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal().Err(err).Msg("http server failed")
	}
}

func runPlain(ctx context.Context, in io.Reader, out io.Writer, session *service.Session) {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			fmt.Fprint(out, "> ")
			continue
		}
		res := session.Search(ctx, query, func(step string, pct int) {
			fmt.Fprintf(out, "[%3d%%] %s\n", pct, step)
		})
		printResult(out, res)
		if ctx.Err() != nil {
			return
		}
		fmt.Fprint(out, "> ")
	}
}

func printResult(out io.Writer, res service.Result) {
	rec := res.Recommendation
	fmt.Fprintf(out, "\n%s\n\n", rec.Analysis)
	picks := []struct {
		label string
		p     *domain.Pick
	}{{"Best overall", rec.BestOverall}, {"Best value", rec.BestValue}, {"Fastest delivery", rec.FastestDelivery}}
	for _, pk := range picks {
		if pk.p == nil {
			continue
		}
		o := rec.Products[pk.p.Index]
		fmt.Fprintf(out, "%s: %s, %s from %s\n  %s\n  %s\n", pk.label, o.Title, o.PriceString, o.Seller, pk.p.Reason, o.URL)
	}
	for i, o := range res.Offers {
		fmt.Fprintf(out, "%2d. %-60.60s %12s  %s\n", i+1, o.Title, o.PriceString, o.Seller)
	}
	fmt.Fprintln(out)
}
