// Package wire assembles the application object graph.
package wire

import (
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/gitreview/internal/config"
	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/db"
	"github.com/sevigo/gitreview/internal/gitutil"
	"github.com/sevigo/gitreview/internal/logger"
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logger
}

func provideDBConfig(cfg *config.Config) config.DBConfig {
	return cfg.Database
}

func provideSlogLogger(loggerConfig logger.Config) *slog.Logger {
	// nil writer lets the logger resolve Output itself; the default config
	// points at a file because the TUI owns stdout.
	return logger.NewLogger(loggerConfig, nil)
}

func provideGit(cfg *config.Config, log *slog.Logger) (core.Git, error) {
	return gitutil.NewClient(cfg.RepoPath, log)
}

func provideSQLConn(conn *db.DB) *sqlx.DB {
	return conn.DB
}
