package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartdoc/internal/bootstrap"
	"github.com/kailas-cloud/smartdoc/internal/config"
	"github.com/kailas-cloud/smartdoc/internal/domain"
	"github.com/kailas-cloud/smartdoc/internal/domain/text"
	logpkg "github.com/kailas-cloud/smartdoc/internal/logger"
	"github.com/kailas-cloud/smartdoc/internal/metrics"
	"github.com/kailas-cloud/smartdoc/internal/parser"
	"github.com/kailas-cloud/smartdoc/internal/usecase/definition"
	"github.com/kailas-cloud/smartdoc/internal/usecase/export"
	"github.com/kailas-cloud/smartdoc/internal/usecase/matching"
	"github.com/kailas-cloud/smartdoc/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	termFlag := &cli.StringFlag{
		Name:     "term",
		Aliases:  []string{"t"},
		Usage:    "Search term",
		Required: true,
	}
	thresholdFlag := &cli.Float64Flag{
		Name:  "threshold",
		Usage: "Minimum cosine similarity (defaults to the configured value)",
	}

	return &cli.App{
		Name:    "smartdoc-cli",
		Usage:   "Semantic word matching for PDF and DOCX documents",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file (default: config/$ENV.yaml)",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Embedding provider override (openai, ollama)",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Embedding service URL override",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Embedding model override",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "Print the plain text of a document",
				ArgsUsage: "FILE",
				Action:    parseCommand,
			},
			{
				Name:      "preprocess",
				Usage:     "Print the document's tokens with stop words removed",
				ArgsUsage: "FILE",
				Action:    preprocessCommand,
			},
			{
				Name:      "match",
				Usage:     "List document words semantically similar to a term",
				ArgsUsage: "FILE",
				Flags:     []cli.Flag{termFlag, thresholdFlag},
				Action:    matchCommand,
			},
			{
				Name:      "suggest",
				Usage:     "Suggest the document words most related to a term",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					termFlag,
					thresholdFlag,
					&cli.IntFlag{
						Name:    "num",
						Aliases: []string{"n"},
						Usage:   "Maximum number of suggestions (defaults to the configured value)",
					},
				},
				Action: suggestCommand,
			},
			{
				Name:      "search",
				Usage:     "Run a full search and print the result as JSON",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					termFlag,
					&cli.StringFlag{
						Name:    "pdf",
						Aliases: []string{"o"},
						Usage:   "Also write the highlighted document to this PDF file",
					},
				},
				Action: searchCommand,
			},
			{
				Name:      "define",
				Usage:     "Print the WordNet definition of a word",
				ArgsUsage: "WORD",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "wordnet",
						Usage:   "WordNet dict directory (defaults to dictionary.wordnet_path)",
						EnvVars: []string{"WORDNET_PATH"},
					},
				},
				Action: defineCommand,
			},
		},
	}
}

// runtime holds what a command needs; close releases the inference pool.
type runtime struct {
	cfg     config.Config
	logger  *zap.Logger
	matcher *matching.Service
	close   func()
}

func loadConfig(c *cli.Context) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	switch path := c.String("config"); {
	case path != "":
		cfg, err = config.LoadFile(path)
		if err != nil {
			return config.Config{}, err
		}
	default:
		cfg, err = config.Load(config.GetEnv())
		if err != nil {
			// no config file: run on defaults
			cfg = config.Config{}
			cfg.ApplyDefaults()
		}
	}

	if v := c.String("provider"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := c.String("base-url"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := c.String("model"); v != "" {
		cfg.Embedding.Model = v
		cfg.Embedding.Dimensions = 0
	}
	return cfg, nil
}

func newRuntime(c *cli.Context) (*runtime, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger("cli", c.String("log-level"))
	if err != nil {
		return nil, err //nolint:wrapcheck // already descriptive
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMatchingMetrics()

	embedder := bootstrap.NewEmbedder(cfg.Embedding, logger)
	matcher, pool, err := bootstrap.NewMatcher(embedder, cfg.MatchConfig(), logger)
	if err != nil {
		return nil, err //nolint:wrapcheck // already descriptive
	}
	return &runtime{
		cfg:     cfg,
		logger:  logger,
		matcher: matcher,
		close: func() {
			pool.Release()
			_ = logger.Sync()
		},
	}, nil
}

func readDocument(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", errors.New("exactly one FILE argument is required")
	}
	path := c.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	content, err := parser.Parse(path, data)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	return content, nil
}

func parseCommand(c *cli.Context) error {
	content, err := readDocument(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, content)
	return err //nolint:wrapcheck // stdout write
}

func preprocessCommand(c *cli.Context) error {
	content, err := readDocument(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, strings.Join(text.Preprocess(content), " "))
	return err //nolint:wrapcheck // stdout write
}

func matchCommand(c *cli.Context) error {
	content, err := readDocument(c)
	if err != nil {
		return err
	}
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	threshold := rt.matcher.Defaults().MatchThreshold
	if c.IsSet("threshold") {
		threshold = c.Float64("threshold")
	}
	matches, err := rt.matcher.FindSemanticMatches(c.Context, content, c.String("term"), threshold)
	if err != nil {
		return fmt.Errorf("semantic matches: %w", err)
	}
	return printLines(c, matches)
}

func suggestCommand(c *cli.Context) error {
	content, err := readDocument(c)
	if err != nil {
		return err
	}
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	defaults := rt.matcher.Defaults()
	n, threshold := defaults.NumSuggestions, defaults.SuggestionThreshold
	if c.IsSet("num") {
		n = c.Int("num")
	}
	if c.IsSet("threshold") {
		threshold = c.Float64("threshold")
	}
	suggestions, err := rt.matcher.SuggestRelatedWords(c.Context, c.String("term"), content, n, threshold)
	if err != nil {
		return fmt.Errorf("suggestions: %w", err)
	}
	return printLines(c, suggestions)
}

type searchOutput struct {
	SearchTerm      string   `json:"searchTerm"`
	ExactMatchCount int      `json:"exactMatchCount"`
	SemanticMatches []string `json:"semanticMatches"`
	SuggestedWords  []string `json:"suggestedWords"`
	PDF             string   `json:"pdf,omitempty"`
}

func searchCommand(c *cli.Context) error {
	content, err := readDocument(c)
	if err != nil {
		return err
	}
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	res, err := rt.matcher.Search(c.Context, matching.SearchRequest{
		SearchTerm:      c.String("term"),
		DocumentContent: content,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	out := searchOutput{
		SearchTerm:      res.SearchTerm,
		ExactMatchCount: res.ExactMatchCount,
		SemanticMatches: res.SemanticMatches,
		SuggestedWords:  res.SuggestedWords,
	}
	if path := c.String("pdf"); path != "" {
		if err := writePDF(c.Context, rt, res.HighlightedHTML, path); err != nil {
			return err
		}
		out.PDF = path
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out) //nolint:wrapcheck // stdout write
}

func defineCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("a WORD argument is required")
	}
	word := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := c.String("wordnet"); v != "" {
		cfg.Dictionary.WordNetPath = v
	}
	logger, err := logpkg.NewLogger("cli", c.String("log-level"))
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}
	defer func() { _ = logger.Sync() }()

	var dict domain.Dictionary
	if wn := bootstrap.NewDictionary(cfg.Dictionary, logger); wn != nil {
		dict = wn
	}
	res, err := definition.New(dict, logger).Define(c.Context, word)
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}
	_, err = fmt.Fprintln(c.App.Writer, res.Definition)
	return err //nolint:wrapcheck // stdout write
}

func writePDF(ctx context.Context, rt *runtime, html, path string) error {
	svc := export.New(export.Config{
		FontSize: rt.cfg.Export.FontSize,
		Title:    rt.cfg.Export.Title,
		MaxPages: rt.cfg.Export.MaxPages,
	}, rt.logger)
	pdf, err := svc.RenderPDF(ctx, html)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := os.WriteFile(path, pdf, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printLines(c *cli.Context, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(c.App.Writer, l); err != nil {
			return err //nolint:wrapcheck // stdout write
		}
	}
	return nil
}
