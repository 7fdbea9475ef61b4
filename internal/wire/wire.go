//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"github.com/sevigo/gitreview/internal/app"
	"github.com/sevigo/gitreview/internal/config"
	"github.com/sevigo/gitreview/internal/db"
	"github.com/sevigo/gitreview/internal/storage"
	"github.com/sevigo/gitreview/internal/syncer"
)

// InitializeApp builds the application for the repository at repoPath. The
// returned func releases the database connection.
func InitializeApp(repoPath string) (*app.App, func(), error) {
	wire.Build(
		app.NewApp,
		config.LoadConfig,
		db.NewDatabase,
		storage.NewStore,
		syncer.NewEngine,
		provideLoggerConfig,
		provideDBConfig,
		provideSlogLogger,
		provideGit,
		provideSQLConn,
	)
	return &app.App{}, nil, nil
}
