// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"github.com/sevigo/gitreview/internal/app"
	"github.com/sevigo/gitreview/internal/config"
	"github.com/sevigo/gitreview/internal/db"
	"github.com/sevigo/gitreview/internal/storage"
	"github.com/sevigo/gitreview/internal/syncer"
)

// InitializeApp builds the application for the repository at repoPath. The
// returned func releases the database connection.
func InitializeApp(repoPath string) (*app.App, func(), error) {
	cfg, err := config.LoadConfig(repoPath)
	if err != nil {
		return nil, nil, err
	}

	loggerConfig := provideLoggerConfig(cfg)
	slogLogger := provideSlogLogger(loggerConfig)

	dbConfig := provideDBConfig(cfg)
	dbConn, dbCleanup, err := db.NewDatabase(dbConfig)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(provideSQLConn(dbConn))

	git, err := provideGit(cfg, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, err
	}

	engine := syncer.NewEngine(store, git, slogLogger)
	application := app.NewApp(cfg, store, git, engine, slogLogger)

	return application, dbCleanup, nil
}
