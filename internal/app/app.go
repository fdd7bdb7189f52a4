package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"recogstats/internal/config"
	"recogstats/internal/httpx"
	"recogstats/internal/integrations/imagehost"
	"recogstats/internal/integrations/recognitions"
	slackbot "recogstats/internal/integrations/slack"
	"recogstats/internal/logx"
	"recogstats/internal/render"
	"recogstats/internal/report"
	"recogstats/internal/stats"
	"recogstats/internal/storage/sqlite"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	orgURLs        []string
	panel          string
	workers        int
	noLastModified bool
}

type historyFlags struct {
	org   string
	limit int
}

func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// NewRootCommand builds the CLI. Without a subcommand it behaves like run.
func NewRootCommand() *cobra.Command {
	var configPath string
	var rf runFlags
	var hf historyFlags

	root := &cobra.Command{
		Use:   "recogstats",
		Short: "Render recognition statistics charts per organization",
		Long: `Fetch the recognitions document of every configured organization,
count total, active, image and long-description records, and write one
chart per organization to <output_dir>/<org>-statistics.png.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, configPath, rf)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or ./config.yaml)")
	addRunFlags(root, &rf)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, aggregate and render every organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, configPath, rf)
		},
	}
	addRunFlags(runCmd, &rf)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded summaries of one organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, configPath, hf)
		},
	}
	historyCmd.Flags().StringVar(&hf.org, "org", "", "organization name, without the org- prefix")
	historyCmd.Flags().IntVar(&hf.limit, "limit", 10, "number of rows to show")
	_ = historyCmd.MarkFlagRequired("org")

	root.AddCommand(runCmd, historyCmd)
	return root
}

func addRunFlags(cmd *cobra.Command, rf *runFlags) {
	cmd.Flags().StringArrayVar(&rf.orgURLs, "org-url", nil, "organization recognitions url (repeatable, replaces configured urls)")
	cmd.Flags().StringVar(&rf.panel, "panel", "", "second panel: none, table or images")
	cmd.Flags().IntVar(&rf.workers, "workers", 0, "organizations processed concurrently")
	cmd.Flags().BoolVar(&rf.noLastModified, "no-last-modified", false, "skip the manifest last-modified lookup")
}

func (rf runFlags) apply(cfg *config.Config) {
	if len(rf.orgURLs) > 0 {
		cfg.OrgURLs = rf.orgURLs
		cfg.OrgURLsFile = ""
	}
	if rf.panel != "" {
		cfg.Panel = rf.panel
	}
	if rf.workers != 0 {
		cfg.Workers = rf.workers
	}
	if rf.noLastModified {
		cfg.SetLastModifiedEnabled(false)
	}
}

func runReport(cmd *cobra.Command, configPath string, rf runFlags) error {
	cfg, err := config.Load(configPath, rf.apply)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := logx.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	timeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	logger.Info("config loaded",
		zap.Int("orgs", len(cfg.OrgURLs)),
		zap.String("output_dir", cfg.OutputDir),
		zap.String("panel", cfg.Panel),
		zap.Int("workers", cfg.Workers),
		zap.Bool("last_modified", cfg.LastModifiedEnabled()),
		zap.String("timezone", cfg.Timezone),
		zap.Duration("external_http_timeout", timeout),
	)

	client := httpx.ExternalHTTPClient()
	var images render.ImageFetcher
	if cfg.Panel == config.PanelImages {
		images = imagehost.NewClient(client, cfg.ImageReferer)
	}
	deps := report.Deps{
		Fetcher: recognitions.NewFetcher(client, cfg.ManifestFilename),
		Renderer: render.New(render.Options{
			OutputDir:            cfg.OutputDir,
			OrgMarker:            cfg.OrgMarker,
			Panel:                cfg.Panel,
			DescriptionThreshold: cfg.DescriptionThreshold,
		}, images, logger),
		Logger: logger,
	}

	if cfg.DBPath != "" {
		db, err := sqlite.InitDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		defer db.Close()
		logger.Info("history database initialized", zap.String("path", cfg.DBPath))
		deps.History = sqlite.NewHistory(db)
	}
	if cfg.SlackConfigured() {
		deps.Publisher = slackbot.NewPublisher(cfg.SlackBotToken, cfg.SlackChannelID, cfg.OrgMarker)
		logger.Info("publishing enabled", zap.String("channel", cfg.SlackChannelID))
	}

	run := report.Run(cmd.Context(), report.Options{
		URLs:                cfg.OrgURLs,
		OrgMarker:           cfg.OrgMarker,
		Workers:             cfg.Workers,
		ResolveLastModified: cfg.LastModifiedEnabled(),
		Stats: stats.Options{
			DescriptionThreshold: cfg.DescriptionThreshold,
			DescriptionMeasure:   cfg.DescriptionMeasure,
			ImageURLTemplate:     cfg.ImageURLTemplate,
			Location:             cfg.Location,
		},
	}, deps)

	out := cmd.OutOrStdout()
	for _, res := range run.Results {
		if res.Succeeded() {
			fmt.Fprintf(out, "%s: %s\n", res.OrgName, res.ArtifactPath)
		} else {
			fmt.Fprintf(out, "%s: failed: %v\n", displayName(res.OrgName, res.SourceURL), res.Err)
		}
	}
	return nil
}

func displayName(org, url string) string {
	if org != "" {
		return org
	}
	return url
}
