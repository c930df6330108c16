package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-recoform/internal/config"
	"github.com/goliatone/go-recoform/internal/logging"
	"github.com/goliatone/go-recoform/internal/metrics"
	"github.com/goliatone/go-recoform/pkg/client"
	"github.com/goliatone/go-recoform/pkg/model"
	"github.com/goliatone/go-recoform/pkg/openapi"
	"github.com/goliatone/go-recoform/pkg/orchestrator"
	"github.com/goliatone/go-recoform/pkg/renderers/tui"
)

// errSubmitFailed signals that the final form state carries an error. The
// error itself was already printed as part of the output.
var errSubmitFailed = errors.New("recommendation request failed")

// app holds global flags and the configuration resolved before any
// subcommand runs.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	baseURL    string

	cfg     *config.Config
	cfgFrom string

	// newPromptDriver is swapped in tests.
	newPromptDriver func(out io.Writer) tui.PromptDriver
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	return newRootCmdFor(&app{newPromptDriver: tui.NewSurveyDriver})
}

func newRootCmdFor(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "recoform",
		Short: "Product recommendation form for a collaborative-filtering service",
		Long: `recoform collects a recommendation method and an identifier, asks the
recommender service for products and shows the result.

It serves the form over HTTP, drives it from an interactive terminal prompt
or runs a single request from the command line.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: recoform.yaml, or $RECOFORM_CONFIG)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, disabled)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format (console, json)")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "recommender service base URL")

	_ = root.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})
	_ = root.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"trace", "debug", "info", "warn", "error", "disabled"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newServeCmd(a),
		newPromptCmd(a),
		newGetCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// load resolves configuration with flag overrides applied last and
// initialises logging from it.
func (a *app) load(cmd *cobra.Command) error {
	overrides := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		overrides["log.level"] = a.logLevel
	}
	if flags.Changed("log-format") {
		overrides["log.format"] = a.logFormat
	}
	if flags.Changed("base-url") {
		overrides["recommender.base_url"] = a.baseURL
	}

	cfg, from, err := config.Load(config.LoadOptions{Path: a.configPath, Overrides: overrides})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.cfgFrom = from

	logCfg := cfg.Log.LoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Init(logCfg)
	if from != "" {
		logging.Debug().Str("path", from).Msg("configuration loaded")
	}
	return nil
}

// orchestrator wires the configured contract, client and model. Metrics,
// when given, observe the recommender client.
func (a *app) orchestrator(ctx context.Context, m *metrics.Metrics) (*orchestrator.Orchestrator, error) {
	opts := []orchestrator.Option{
		orchestrator.WithClientConfig(a.cfg.Recommender.ClientConfig()),
		orchestrator.WithModelOptions(a.modelOptions()...),
	}
	if m != nil {
		opts = append(opts, orchestrator.WithClientOptions(client.WithObserver(m)))
	}
	if path := a.cfg.Recommender.Contract; path != "" {
		doc, err := openapi.DocumentFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load contract: %w", err)
		}
		opts = append(opts, orchestrator.WithDocument(doc))
	}
	if dir := a.cfg.UI.TemplatesDir; dir != "" {
		opts = append(opts, orchestrator.WithTemplatesDir(dir))
	}
	return orchestrator.New(ctx, opts...)
}

func (a *app) modelOptions() []model.Option {
	var opts []model.Option
	if a.cfg.UI.Title != "" {
		opts = append(opts, model.WithTitle(a.cfg.UI.Title))
	}
	if a.cfg.UI.NoticeHTML != "" {
		opts = append(opts, model.WithNotice(a.cfg.UI.NoticeHTML))
	}
	if len(a.cfg.UI.Icons) > 0 {
		opts = append(opts, model.WithIcons(a.cfg.UI.Icons))
	}
	return opts
}
