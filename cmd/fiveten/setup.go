package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/CodingFreeze/FiveTenAlgo/internal/config"
	"github.com/CodingFreeze/FiveTenAlgo/internal/marketdata"
	"github.com/CodingFreeze/FiveTenAlgo/internal/metrics"
	"github.com/CodingFreeze/FiveTenAlgo/internal/service"
	"github.com/CodingFreeze/FiveTenAlgo/internal/storage/archive"
)

func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func buildService(cfg *config.Config, reg *metrics.Registry, log *zap.Logger) (*service.Service, error) {
	provider := marketdata.NewFileCache(
		filepath.Join(cfg.Simulation.DataDir, "market_data.json"),
		marketdata.NewSynthetic(cfg.Simulation.Seed),
		log,
	)

	var opts []service.Option
	if cfg.Archive.Enabled {
		backend, err := buildArchiveBackend(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating archive backend: %w", err)
		}
		opts = append(opts, service.WithArchiver(archive.NewArchiver(backend, log)))
	}

	return service.New(cfg, provider, reg, log, opts...), nil
}

func buildArchiveBackend(cfg *config.Config) (archive.Storage, error) {
	switch cfg.Archive.Type {
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		})
	default:
		return archive.NewLocalFS(cfg.Archive.Path)
	}
}
