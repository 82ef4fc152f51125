package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"llmjobs/internal/config"
	"llmjobs/internal/dispatcher"
	"llmjobs/internal/jobstore"
	"llmjobs/internal/logger"
	providerfactory "llmjobs/internal/provider/factory"
	"llmjobs/internal/server"
	"llmjobs/internal/translator"
)

const serveUsage = `Usage:
  llmjobs serve [--config <path>] [--port <port>] [--data-dir <dir>]

Flags:
  --config   string   Path to YAML configuration file (optional)
  --port     int      Override server port from configuration
  --data-dir string   Persist jobs under this directory

Environment variables (PORT, OPENAI_API_KEY, PERSIST_JOBS, ...) and a .env
file in the working directory override the configuration file.`

type serveFlags struct {
	configPath string
	port       int
	dataDir    string
}

func parseServeFlags(args []string) (serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, serveUsage)
	}

	var f serveFlags
	fs.StringVar(&f.configPath, "config", "", "path to configuration file")
	fs.IntVar(&f.port, "port", 0, "override server port")
	fs.StringVar(&f.dataDir, "data-dir", "", "persist jobs under this directory")

	if err := fs.Parse(args); err != nil {
		return serveFlags{}, err
	}
	if fs.NArg() > 0 {
		return serveFlags{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return f, nil
}

// apply layers command line overrides on top of the loaded configuration.
func (f serveFlags) apply(cfg *config.Config) error {
	if f.port != 0 {
		if f.port < 0 || f.port > 65535 {
			return fmt.Errorf("port override %d must be a valid TCP port", f.port)
		}
		cfg.Server.Port = f.port
	}
	if f.dataDir != "" {
		cfg.Storage.DataDir = f.dataDir
		cfg.Storage.Persist = true
	}
	return nil
}

func serve(ctx context.Context, args []string) error {
	flags, err := parseServeFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse serve flags: %w", err)
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if err := flags.apply(&cfg); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	if cfg.Upstream.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set, upstream calls will fail")
	}

	p, err := providerfactory.New(cfg.Upstream)
	if err != nil {
		return err
	}

	storeOpts := jobstore.Options{Logger: log}
	if cfg.Storage.Persist {
		storeOpts.Path = jobstore.PathFor(cfg.Storage.DataDir)
	}
	store := jobstore.New(storeOpts)
	store.Load()

	d, err := dispatcher.New(p, store, translator.Defaults{
		Model:       cfg.Upstream.DefaultModel,
		VisionModel: cfg.Upstream.VisionModel,
	}, nil, log)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg.Server, d, log)
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}
