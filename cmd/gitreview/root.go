package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/gitreview/internal/tui"
	"github.com/sevigo/gitreview/internal/wire"
)

var version = "dev"

var (
	repoPath string
	dbPath   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:     "gitreview",
	Short:   "Review local Git branch changes in the terminal.",
	Long:    `gitreview is a terminal UI for reviewing the changes between two local branches: diffs, per-file comments and viewed markers, with drift detection when the branches move while the review is open.`,
	Version: version,
	RunE:    run,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.Flags().StringVarP(&repoPath, "repo", "r", ".", "path to the Git repository")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "path to the review database (default <repo>/.gitreview/reviews.db)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func run(cmd *cobra.Command, args []string) error {
	// Flags win over the environment and the config file; the config loader
	// reads these variables through its env binding.
	if dbPath != "" {
		os.Setenv("GITREVIEW_DB_PATH", dbPath)
	}
	if logLevel != "" {
		os.Setenv("GITREVIEW_LOG_LEVEL", logLevel)
	}

	application, cleanup, err := wire.InitializeApp(repoPath)
	if err != nil {
		return err
	}
	defer cleanup()

	terminal := tui.New(application.Bus())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- application.Run(ctx, terminal.Size, terminal.SetFrame)
		terminal.Quit()
	}()

	if err := terminal.Run(); err != nil {
		cancel()
		<-loopErr
		return err
	}
	cancel()
	return <-loopErr
}
