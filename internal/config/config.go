package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/gitreview/internal/logger"
)

// DBConfig holds the SQLite connection settings.
type DBConfig struct {
	Path string
}

// Config holds the application's configuration values.
type Config struct {
	// RepoPath is the Git repository the reviews run against.
	RepoPath string
	Database DBConfig
	Logger   logger.Config

	// TickRate is the interval between timer events on the bus.
	TickRate time.Duration
	// BranchCheckInterval is how often the branch status sweep runs.
	BranchCheckInterval time.Duration
}

// LoadConfig reads configuration from environment variables and an optional
// config file in the repository, sets sensible defaults, and resolves paths.
// It uses the Viper library to handle configuration loading and precedence.
func LoadConfig(repoPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GITREVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("tick_rate", "250ms")
	v.SetDefault("branch_check_interval", "5s")

	v.SetConfigName(".gitreview")
	v.SetConfigType("yaml")
	v.AddConfigPath(repoPath)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository path %q: %w", repoPath, err)
	}

	dbPath := v.GetString("db_path")
	if dbPath == "" {
		dbPath = filepath.Join(absRepo, ".gitreview", "reviews.db")
	}

	logFile := v.GetString("log_file")
	if logFile == "" {
		logFile = filepath.Join(absRepo, ".gitreview", "app.log")
	}

	tickRate, err := time.ParseDuration(v.GetString("tick_rate"))
	if err != nil || tickRate <= 0 {
		return nil, fmt.Errorf("invalid tick_rate %q", v.GetString("tick_rate"))
	}
	checkInterval, err := time.ParseDuration(v.GetString("branch_check_interval"))
	if err != nil || checkInterval <= 0 {
		return nil, fmt.Errorf("invalid branch_check_interval %q", v.GetString("branch_check_interval"))
	}

	return &Config{
		RepoPath: absRepo,
		Database: DBConfig{Path: dbPath},
		Logger: logger.Config{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
			Output: logFile,
		},
		TickRate:            tickRate,
		BranchCheckInterval: checkInterval,
	}, nil
}
