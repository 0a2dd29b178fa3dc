// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/poiesic/recall"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/importer"
	"github.com/poiesic/recall/internal/config"
	"github.com/poiesic/recall/search"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "recall",
		Usage: "Full-text search over imported conversations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"RECALL_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides database.path)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import conversation transcripts from JSON files",
				ArgsUsage: "FILE...",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent import workers (0 = NumCPU/2)",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts for conflicting writes",
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Print progress to stderr",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search messages",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
					},
					&cli.IntFlag{
						Name:  "snippet-length",
						Usage: "Maximum snippet length in characters",
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Log every step of the search",
					},
				},
			},
			{
				Name:      "conversations",
				Usage:     "Search conversations",
				ArgsUsage: "QUERY",
				Action:    conversationsCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Log every step of the search",
					},
				},
			},
			{
				Name:      "suggest",
				Usage:     "Suggest completions for a partial word",
				ArgsUsage: "PARTIAL",
				Action:    suggestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of suggestions",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show corpus statistics",
				Action: statsCommand,
			},
		},
	}
}

// setup loads the configuration file, applies global flag overrides and
// installs the default logger.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}

	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func loadedConfig(c *cli.Context) config.Config {
	if cfg, ok := c.App.Metadata[configKey].(config.Config); ok {
		return cfg
	}
	return config.Default()
}

// openDatabase opens the configured database.
func openDatabase(c *cli.Context) (*recall.Database, config.Config, error) {
	cfg := loadedConfig(c)
	if cfg.Database.Path == "" {
		return nil, cfg, errors.New("database path is required (--db or database.path)")
	}

	db, err := recall.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to open database: %w", err)
	}
	return db, cfg, nil
}

// intFlag returns the flag value when set, otherwise fallback.
func intFlag(c *cli.Context, name string, fallback int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	return fallback
}

func importCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one transcript file is required")
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	retryDelay := cfg.Import.RetryDelay
	if c.IsSet("retry-delay") {
		retryDelay = c.Duration("retry-delay")
	}

	opts := []importer.Option{
		importer.WithMaxRetries(intFlag(c, "max-retries", cfg.Import.MaxRetries)),
		importer.WithRetryDelay(retryDelay),
		importer.WithLogger(slog.Default()),
	}
	if poolSize := intFlag(c, "pool-size", cfg.Import.PoolSize); poolSize > 0 {
		opts = append(opts, importer.WithPoolSize(poolSize))
	}
	if c.Bool("progress") {
		opts = append(opts, importer.WithProgress(importer.NewProgressTracker(c.App.ErrWriter, 10)))
	}

	imp, err := db.NewImporter(opts...)
	if err != nil {
		return fmt.Errorf("failed to create importer: %w", err)
	}
	defer imp.Release()

	ctx := context.Background()
	total := importer.ImportReport{}
	for _, path := range c.Args().Slice() {
		report, err := imp.ImportFile(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		total.Conversations += report.Conversations
		total.Messages += report.Messages
		total.Skipped += report.Skipped
		total.Failed += report.Failed
	}

	fmt.Fprintf(c.App.Writer, "Imported %s conversations (%s messages), skipped %s, failed %s\n",
		humanize.Comma(int64(total.Conversations)),
		humanize.Comma(int64(total.Messages)),
		humanize.Comma(int64(total.Skipped)),
		humanize.Comma(int64(total.Failed)))
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("a query is required")
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := db.NewEngine(
		search.WithLogger(slog.Default()),
		search.WithSnippetLength(intFlag(c, "snippet-length", cfg.Search.SnippetLength)),
	)
	if err != nil {
		return err
	}

	var monitor search.SearchMonitor
	if c.Bool("trace") {
		monitor = search.NewLoggingMonitor(slog.Default())
	}

	ctx := context.Background()
	results := engine.SearchMessagesWithMonitor(ctx, query, intFlag(c, "limit", cfg.Search.MessageLimit), monitor)
	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "No matches")
		return nil
	}

	titles := conversationTitles(ctx, db)
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, []string{
			fmt.Sprintf("%.3f", result.Relevance),
			titles[result.ConversationId],
			humanize.Time(result.Timestamp),
			result.Snippet,
		})
	}
	renderTable(c.App.Writer, []string{"Relevance", "Conversation", "When", "Snippet"}, rows)
	return nil
}

func conversationsCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("a query is required")
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := db.NewEngine(search.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	var monitor search.SearchMonitor
	if c.Bool("trace") {
		monitor = search.NewLoggingMonitor(slog.Default())
	}

	conversations := engine.SearchConversationsWithMonitor(context.Background(), query,
		intFlag(c, "limit", cfg.Search.ConversationLimit), monitor)
	if len(conversations) == 0 {
		fmt.Fprintln(c.App.Writer, "No matches")
		return nil
	}

	rows := make([][]string, 0, len(conversations))
	for _, conversation := range conversations {
		flags := []string{}
		if conversation.Pinned {
			flags = append(flags, "pinned")
		}
		if conversation.Archived {
			flags = append(flags, "archived")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", conversation.Id),
			conversation.Title,
			humanize.Time(conversation.CreatedAt),
			strings.Join(flags, ","),
		})
	}
	renderTable(c.App.Writer, []string{"ID", "Title", "Created", "Flags"}, rows)
	return nil
}

func suggestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one partial word is required")
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := db.NewEngine(search.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	for _, suggestion := range engine.GetSearchSuggestions(context.Background(), c.Args().First(),
		intFlag(c, "limit", cfg.Search.SuggestionLimit)) {
		fmt.Fprintln(c.App.Writer, suggestion)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := db.NewEngine(search.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	stats := engine.GetSearchStats(context.Background())
	renderTable(c.App.Writer, []string{"Metric", "Value"}, [][]string{
		{"Messages", humanize.Comma(int64(stats.TotalIndexedMessages))},
		{"Unique words", humanize.Comma(int64(stats.TotalUniqueWords))},
		{"Text size", humanize.Comma(int64(stats.IndexSize)) + " chars"},
	})
	return nil
}

// conversationTitles maps conversation IDs to titles for display.
func conversationTitles(ctx context.Context, db *recall.Database) map[core.ID]string {
	titles := make(map[core.ID]string)
	conversations, err := db.ConversationRepository().GetAllConversations(ctx)
	if err != nil {
		slog.Warn("error listing conversations", "err", err)
		return titles
	}
	for _, conversation := range conversations {
		titles[conversation.Id] = conversation.Title
	}
	return titles
}

// renderTable writes rows as an ASCII table.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Bulk(rows)
	table.Render()
}
