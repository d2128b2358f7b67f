package cmd

import (
	"context"
	"fmt"
	"io"
	"os/user"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/cache"
	"github.com/abhisek/selfassess/internal/config"
	"github.com/abhisek/selfassess/internal/logging"
	"github.com/abhisek/selfassess/internal/service"
	"github.com/abhisek/selfassess/internal/storage"
	"github.com/abhisek/selfassess/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "selfassess",
	Short: "CMMC Level 1 self-assessment",
	Long: "selfassess walks an organization through the CMMC Level 1 questionnaire, " +
		"scores the answers per control family and serves the same workflow over HTTP.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTake(cmd, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SELFASSESS_DB and store.path)")
	rootCmd.PersistentFlags().String("user", "", "Identity to act as (defaults to the OS user)")
	rootCmd.PersistentFlags().StringSlice("group", nil, "Groups of the identity, e.g. assessors or admins")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config and applies --db on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, _, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Path = p
	}
	return cfg, nil
}

// openStore opens the database at cfg.Store.Path or the default data path.
func openStore(cfg config.Config) (*store.Store, error) {
	path := cfg.Store.Path
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create DB directory: %w", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// localIdentity returns the identity the CLI acts as.
func localIdentity(cmd *cobra.Command) (storage.Identity, error) {
	groups, _ := cmd.Flags().GetStringSlice("group")
	if name, _ := cmd.Flags().GetString("user"); name != "" {
		return storage.Identity{ID: name, Groups: groups}, nil
	}
	u, err := user.Current()
	if err != nil {
		return storage.Identity{}, fmt.Errorf("resolve current user: %w", err)
	}
	// Object paths use the identity as a folder name.
	name := strings.NewReplacer("\\", "_", "/", "_").Replace(u.Username)
	return storage.Identity{ID: name, Groups: groups}, nil
}

// newLogger builds the process logger, or a no-op logger when quiet.
func newLogger(cfg config.Config, quiet bool) (*zap.Logger, error) {
	if quiet {
		return zap.NewNop(), nil
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// openService opens the configured bucket and builds a Service. The badger
// report cache is opened only when withCache is set, since its directory
// admits one process at a time. The returned closer releases both.
func openService(ctx context.Context, cfg config.Config, st *store.Store, logger *zap.Logger, withCache bool) (*service.Service, func(), error) {
	bucket, err := storage.Open(ctx, cfg.Storage, st.ObjectRepo())
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	closeBucket := func() {
		if c, ok := bucket.(io.Closer); ok {
			_ = c.Close()
		}
	}

	var reports *cache.Cache
	if withCache {
		reports, err = cache.Open(cfg.Cache, service.SubmissionLoader(st.AssessmentRepo(), bucket), logger)
		if err != nil {
			closeBucket()
			return nil, nil, fmt.Errorf("open cache: %w", err)
		}
	}

	svc := service.New(st.AssessmentRepo(), bucket, reports, logger)
	if err := svc.LoadQuestionnaire(ctx); err != nil {
		logger.Warn("using built-in questionnaire", zap.Error(err))
	}

	return svc, func() {
		if reports != nil {
			_ = reports.Close()
		}
		closeBucket()
	}, nil
}
