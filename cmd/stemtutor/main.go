package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"stemtutor/internal/config"
	"stemtutor/internal/embedding"
	"stemtutor/internal/embedding/openai"
	"stemtutor/internal/embedding/tfidf"
	"stemtutor/internal/qa"
	"stemtutor/internal/qa/extractive"
	"stemtutor/internal/qa/hf"
	"stemtutor/internal/scheduler"
	"stemtutor/internal/tui"
	"stemtutor/internal/tutor"
	"stemtutor/internal/vectorstore"
	"stemtutor/internal/vectorstore/memory"
	"stemtutor/internal/vectorstore/qdrant"
	"stemtutor/internal/vectorstore/sqlite"
)

var (
	cfgPath string
	verbose bool
	userID  string
	corpus  []string
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "stemtutor",
		Short: "Adaptive STEM tutor over a local knowledge base",
		Long: "stemtutor ingests STEM documents into a vector index and answers\n" +
			"questions extractively, prioritizing concepts due for review in each\n" +
			"learner's spaced-repetition schedule.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (default: ./config.yaml, then ~/.config/stemtutor/config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	ingestCmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Chunk, embed, and index documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	askCmd.Flags().StringVarP(&userID, "user", "u", "Student", "learner id for the review schedule")
	askCmd.Flags().StringSliceVar(&corpus, "corpus", nil, "documents to ingest before asking (.txt, .md, or .json corpus)")

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive tutoring session",
		RunE:  runChat,
	}
	chatCmd.Flags().StringVarP(&userID, "user", "u", "Student", "learner id for the review schedule")
	chatCmd.Flags().StringSliceVar(&corpus, "corpus", nil, "documents to ingest before the session (.txt, .md, or .json corpus)")

	root.AddCommand(ingestCmd, askCmd, chatCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// buildService assembles the tutoring service from configuration. The
// returned closer releases any store resources.
func buildService(cfg *config.AppConfig, logger *slog.Logger) (*tutor.Service, func(), error) {
	closer := func() {}

	var emb embedding.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.New()
	case "openai":
		oc := cfg.Embedder.OpenAI
		if oc == nil {
			oc = &config.OpenAIEmbedderConfig{}
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Model:     oc.Model,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		emb = client
	default:
		return nil, nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var answerer qa.Answerer
	switch cfg.Answerer.Type {
	case "extractive", "":
		answerer = extractive.New(cfg.Answerer.MaxSentences)
	case "hf":
		hc := cfg.Answerer.HF
		if hc == nil {
			hc = &config.HFAnswererConfig{}
		}
		client, err := hf.NewClient(hf.Config{
			BaseURL:   hc.BaseURL,
			APIKeyEnv: hc.APIKeyEnv,
			Model:     hc.Model,
			Timeout:   time.Duration(hc.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("hf answerer init failed: %w", err)
		}
		answerer = client
	default:
		return nil, nil, fmt.Errorf("unknown answerer: %s", cfg.Answerer.Type)
	}

	var store vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "memory", "":
		store = memory.NewStorage()
	case "qdrant":
		qc := cfg.VectorStore.Qdrant
		if qc == nil {
			return nil, nil, fmt.Errorf("qdrant config missing")
		}
		store = qdrant.NewStorage(qdrant.Config{
			URL:        qc.URL,
			APIKey:     qc.APIKey,
			Collection: qc.Collection,
			Timeout:    time.Duration(qc.TimeoutSecs) * time.Second,
		})
	case "sqlite":
		path := "stemtutor.db"
		if sc := cfg.VectorStore.SQLite; sc != nil && sc.Path != "" {
			path = sc.Path
		}
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite store init failed: %w", err)
		}
		store = db
		closer = func() { _ = db.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	svc := tutor.New(tutor.Config{
		Embedder:     emb,
		Store:        store,
		Answerer:     answerer,
		Scheduler:    scheduler.New(cfg.Tutor.RepetitionIntervals, logger),
		ChunkWords:   cfg.Tutor.ChunkWords,
		OverlapWords: cfg.Tutor.OverlapWords,
		TopK:         cfg.Tutor.TopK,
		Logger:       logger,
	})
	return svc, closer, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.VectorStore.Type == "" || cfg.VectorStore.Type == "memory" {
		logger.Warn("memory vector store does not persist between runs; use the --corpus flag of ask/chat instead, or configure a sqlite or qdrant store")
	}
	svc, closer, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer closer()

	docs, err := loadDocuments(args)
	if err != nil {
		return err
	}
	n, err := svc.Ingest(cmd.Context(), docs)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	fmt.Printf("Ingested %d vectors from %d documents\n", n, len(docs))
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	svc, closer, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer closer()

	if err := ingestCorpus(cmd.Context(), svc, logger, cfg); err != nil {
		return err
	}

	resp := svc.HandleQuery(cmd.Context(), userID, strings.Join(args, " "))
	fmt.Println("Answer:", resp.Answer)
	fmt.Printf("Confidence: %.0f%%\n", resp.RelevanceScore*100)
	if len(resp.Concepts) > 0 {
		shown := resp.Concepts
		if len(shown) > 3 {
			shown = shown[:3]
		}
		fmt.Println("Key concepts:", strings.Join(shown, ", "))
	}
	if len(resp.Sources) > 0 {
		fmt.Println("Sources:", strings.Join(resp.Sources, ", "))
	}
	fmt.Printf("Latency: %.2fs\n", resp.Latency.Seconds())
	return nil
}

func runChat(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	svc, closer, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer closer()

	if err := ingestCorpus(cmd.Context(), svc, logger, cfg); err != nil {
		return err
	}

	m := tui.New(svc, userID)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// ingestCorpus loads the --corpus documents, if any, into the store before
// a session starts.
func ingestCorpus(ctx context.Context, svc *tutor.Service, logger *slog.Logger, cfg *config.AppConfig) error {
	if len(corpus) == 0 {
		if cfg.Embedder.Type == "" || cfg.Embedder.Type == "tfidf" {
			logger.Warn("tfidf embedder has no prepared vocabulary without --corpus; queries will fail until documents are ingested in this session")
		}
		return nil
	}
	docs, err := loadDocuments(corpus)
	if err != nil {
		return err
	}
	n, err := svc.Ingest(ctx, docs)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	logger.Info("corpus loaded", "vectors", n, "documents", len(docs))
	return nil
}
