package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Sternrassler/metal-archives-client/internal/config"
	"github.com/Sternrassler/metal-archives-client/pkg/client"
	"github.com/Sternrassler/metal-archives-client/pkg/logging"
	"github.com/mattn/go-isatty"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries the state shared by the subcommands.
type app struct {
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger zerolog.Logger
	redis  *redis.Client
	client *client.Client
	styles styles
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "metalfeed",
		Short: "Browse the Metal Archives homepage lists",
		Long: `metalfeed reads the lists shown on the Metal Archives homepage (news,
recently added and updated bands, latest reviews, upcoming albums and site
statistics), page by page, and can serve them as JSON over HTTP.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.initialize,
		PersistentPostRunE: a.close,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./metalfeed.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newHomeCmd(a),
		newListCmd(a),
		newDumpCmd(a),
		newStatsCmd(a),
		newServeCmd(a),
	)

	return root
}

// initialize loads the configuration and builds the clients.
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	a.cfg = cfg

	logCfg := cfg.LoggingSetup()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Setup(logCfg)
	a.logger = logging.NewLogger("metalfeed")

	a.styles = newStyles(isTerminal(cmd.OutOrStdout()))

	clientCfg := cfg.ClientConfig()
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		clientCfg.Redis = a.redis
	}

	a.client, err = client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	a.logger.Debug().
		Str("base_url", a.client.BaseURL()).
		Bool("redis", a.redis != nil).
		Bool("cache", cfg.Redis.EnableCache).
		Msg("Client ready")

	return nil
}

func (a *app) close(*cobra.Command, []string) error {
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// ping checks Redis when it is configured.
func (a *app) ping(ctx context.Context) error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Ping(ctx).Err()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
