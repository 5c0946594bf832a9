package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/nao1215/corpuscrawl/internal/config"
	"github.com/nao1215/corpuscrawl/internal/database"
	"github.com/nao1215/corpuscrawl/internal/log"
	"github.com/nao1215/corpuscrawl/internal/state"
)

// addStorageFlags registers the flags that locate the configuration file,
// the output directory and the crawl state.
func addStorageFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .corpuscrawl in current or home directory)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Directory for corpus artifacts and the default checkpoint file")
	cmd.Flags().String("state-backend", string(config.BackendFile),
		"Checkpoint store: file, sqlite or redis")
	cmd.Flags().String("state-file", "",
		"Checkpoint file for the file backend (default: <output>/"+config.DefaultStateFileName+")")
	cmd.Flags().String("redis-addr", "",
		"Redis address (host:port) for the redis backend")
	cmd.Flags().String("redis-key", config.DefaultRedisKey,
		"Redis key holding the checkpoint")
	cmd.Flags().String("db-dir", "",
		"Directory of the SQLite index (default: XDG data directory)")
}

// buildConfig creates a Config from defaults, the configuration file and
// the storage flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit -c must exist; the implicit lookup may find nothing.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(f)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if cfg.OutputDir, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	backend, err := cmd.Flags().GetString("state-backend")
	if err != nil {
		return nil, err
	}
	cfg.StateBackend = config.StateBackend(backend)
	if cfg.StateFile, err = cmd.Flags().GetString("state-file"); err != nil {
		return nil, err
	}
	if cfg.RedisAddr, err = cmd.Flags().GetString("redis-addr"); err != nil {
		return nil, err
	}
	if cfg.RedisKey, err = cmd.Flags().GetString("redis-key"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the redacting logger selected by the configuration.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogJSON {
		return log.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return log.NewSecureLogger(w, cfg.Verbose)
}

// openStore returns the checkpoint store selected by cfg. db is required
// for the sqlite backend. The returned close function releases the
// store's own connections.
func openStore(ctx context.Context, cfg *config.Config, db *database.CrawlDB) (state.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StateBackend {
	case config.BackendFile, "":
		return state.NewFileStore(cfg.StatePath()), noop, nil
	case config.BackendSQLite:
		if db == nil {
			return nil, nil, errors.New("sqlite state backend requires the index database")
		}
		return state.NewDBStore(db), noop, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return state.NewRedisStore(client, cfg.RedisKey), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrInvalidStateBackend, cfg.StateBackend)
	}
}
