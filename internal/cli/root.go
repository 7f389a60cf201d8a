// Package cli implements the catalog-search command line.
package cli

import (
	"context"
	"errors"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"productrag/internal/config"
	"productrag/internal/logger"
	"productrag/internal/retriever"
	"productrag/internal/service"
)

// Service is what the commands need from the catalog service.
type Service interface {
	Search(ctx context.Context, query string, topK int, category string) ([]retriever.Record, error)
	Details(id string) (retriever.Detail, bool)
	Categories() []string
	Summary(records []retriever.Record) string
	Describe() string
	Close() error
}

// Factory builds the service from the loaded configuration.
type Factory func(ctx context.Context, cfg *config.AppConfig, l *log.Logger) (Service, error)

// DefaultFactory assembles the real catalog service.
func DefaultFactory(ctx context.Context, cfg *config.AppConfig, l *log.Logger) (Service, error) {
	svc, err := service.Build(ctx, cfg, l)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

type app struct {
	cfgPath string
	verbose bool
	cfg     *config.AppConfig
	log     *log.Logger
	factory Factory
}

// NewRootCmd returns the root command with every subcommand attached.
func NewRootCmd(factory Factory) *cobra.Command {
	a := &app{factory: factory}
	root := &cobra.Command{
		Use:   "catalog-search",
		Short: "Search the product catalog",
		Long: `catalog-search indexes a product catalog locally and answers
natural-language product queries with ranked matches.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.loadConfig,
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to a YAML or TOML config file (default ./config.yaml or ~/.config/catalog-search/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newSearchCmd(a),
		newShowCmd(a),
		newCategoriesCmd(a),
		newTUICmd(a),
	)
	return root
}

// Execute runs the command line with the real service.
func Execute(ctx context.Context) error {
	return NewRootCmd(DefaultFactory).ExecuteContext(ctx)
}

func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	if a.cfgPath == "" {
		a.cfg, _, err = config.LoadDefault()
	} else {
		a.cfg, err = config.Load(a.cfgPath)
	}
	if err != nil {
		return err
	}
	if a.verbose {
		a.cfg.Log.Level = "debug"
	}
	a.log = logger.NewWithWriter(a.cfg.Log.Level, a.cfg.Log.Console, cmd.ErrOrStderr())
	return nil
}

func (a *app) service(ctx context.Context) (Service, error) {
	if a.factory == nil {
		return nil, errors.New("catalog service not configured")
	}
	return a.factory(ctx, a.cfg, a.log)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
