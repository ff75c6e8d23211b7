package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerstack/internal/config"
	"github.com/matzehuels/layerstack/pkg/server"
	"github.com/matzehuels/layerstack/pkg/store"
)

// serveFlags maps configuration keys to the serve command's flag names.
var serveFlags = map[string]string{
	"server.addr":   "addr",
	"store.backend": "backend",
	"store.dir":     "store-dir",
	"redis.addr":    "redis-addr",
	"mongo.uri":     "mongo-uri",
	"log.level":     "log-level",
}

func (c *CLI) serveCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve style documents over HTTP",
		Long: `Serve a JSON API for style documents and their groups.

Settings come from flags, LAYERSTACK_* environment variables (for example
LAYERSTACK_STORE_BACKEND), the config file and built-in defaults, in that order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := config.New()
			if err := config.BindFlags(v, cmd.Flags(), serveFlags); err != nil {
				return err
			}
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return c.runServe(cmd, cfg)
		},
	}

	d := config.Default()
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: "+config.ConfigDir()+"/config.toml)")
	cmd.Flags().String("addr", d.Server.Addr, "listen address")
	cmd.Flags().String("backend", d.Store.Backend, "document store: memory, file, redis, mongo")
	cmd.Flags().String("store-dir", d.Store.Dir, "directory of the file store")
	cmd.Flags().String("redis-addr", d.Redis.Addr, "redis address")
	cmd.Flags().String("mongo-uri", d.Mongo.URI, "mongo connection URI")
	cmd.Flags().String("log-level", d.Log.Level, "log level: debug, info, warn, error")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	// --verbose wins over a quieter configured level.
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil && level < logger.GetLevel() {
		logger.SetLevel(level)
	}

	var st store.Store
	msg := fmt.Sprintf("Connecting to %s store...", cfg.Store.Backend)
	err := withSpinner(ctx, os.Stderr, msg, func() error {
		var err error
		st, err = store.Open(ctx, cfg.StoreConfig(), logger)
		return err
	})
	if err != nil {
		return err
	}
	defer st.Close()

	printInfo("Serving %s documents on %s", StyleHighlight.Render(cfg.Store.Backend), StyleLink.Render(fmt.Sprintf("http://%s", cfg.Server.Addr)))
	return server.New(st, logger).ListenAndServe(ctx, cfg.Server.Addr)
}
