package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/treesync/internal/platform"
	"github.com/sdejongh/treesync/pkg/config"
	"github.com/sdejongh/treesync/pkg/logging"
	"github.com/sdejongh/treesync/pkg/models"
)

// validateRunFlags validates the shared diff/apply flags, creating the target
// directory when requested
func validateRunFlags(flags *RunFlags) error {
	if err := platform.ValidatePath(flags.Source); err != nil {
		return err
	}
	if err := platform.ValidatePath(flags.Target); err != nil {
		return err
	}

	flags.Source = platform.NormalizePath(flags.Source)
	flags.Target = platform.NormalizePath(flags.Target)

	sourceInfo, err := os.Stat(flags.Source)
	if os.IsNotExist(err) {
		return fmt.Errorf("source path does not exist: %s", flags.Source)
	} else if err != nil {
		return fmt.Errorf("failed to access source path: %w", err)
	} else if !sourceInfo.IsDir() {
		return fmt.Errorf("source path is not a directory: %s", flags.Source)
	}

	targetInfo, err := os.Stat(flags.Target)
	if os.IsNotExist(err) {
		if flags.CreateTarget {
			if err := os.MkdirAll(flags.Target, 0755); err != nil {
				return fmt.Errorf("failed to create target directory: %w", err)
			}
		} else {
			return fmt.Errorf("target path does not exist: %s (use --create-target to create it)", flags.Target)
		}
	} else if err != nil {
		return fmt.Errorf("failed to access target path: %w", err)
	} else if !targetInfo.IsDir() {
		return fmt.Errorf("target path exists but is not a directory: %s", flags.Target)
	}

	sourceAbs, err := filepath.Abs(flags.Source)
	if err != nil {
		return fmt.Errorf("failed to resolve source path: %w", err)
	}
	targetAbs, err := filepath.Abs(flags.Target)
	if err != nil {
		return fmt.Errorf("failed to resolve target path: %w", err)
	}

	if sourceAbs == targetAbs {
		return fmt.Errorf("source and target cannot be the same: %s", sourceAbs)
	}

	if strings.HasPrefix(targetAbs, sourceAbs+string(filepath.Separator)) {
		return fmt.Errorf("target cannot be inside source directory")
	}
	if strings.HasPrefix(sourceAbs, targetAbs+string(filepath.Separator)) {
		return fmt.Errorf("source cannot be inside target directory")
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config, flags *RunFlags) error {
	if flags.Parallel > 0 {
		cfg.Performance.MaxWorkers = flags.Parallel
	}

	if flags.Bandwidth != "" {
		limit, err := parseBandwidth(flags.Bandwidth)
		if err != nil {
			return err
		}
		cfg.Performance.BandwidthLimit = limit
	}

	if flags.Output != "" {
		cfg.Output.Format = flags.Output
	}

	if flags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = flags.LogFile
		cfg.Logging.Format = flags.LogFormat
		cfg.Logging.Level = flags.LogLevel
	}

	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
	if globalFlags.Verbose {
		cfg.Output.Progress = true
	}

	return cfg.Validate()
}

// createRunOperation creates a run operation from configuration
func createRunOperation(cfg *config.Config, flags *RunFlags, commit bool) (*models.RunOperation, error) {
	operation := &models.RunOperation{
		ID:             uuid.New().String(),
		SourceRoot:     flags.Source,
		TargetRoot:     flags.Target,
		Commit:         commit,
		MaxWorkers:     cfg.Performance.MaxWorkers,
		BufferSize:     cfg.Performance.BufferSize,
		BandwidthLimit: cfg.Performance.BandwidthLimit,
		CreatedAt:      time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}

// createLogger creates a logger based on configuration
func createLogger(cfg *config.Config) (logging.Logger, error) {
	if !cfg.Logging.Enabled || cfg.Logging.File == "" {
		return logging.NewNullLogger(), nil
	}

	var format logging.Format
	switch cfg.Logging.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:    cfg.Logging.File,
		Format:  format,
		Level:   logging.ParseLevel(cfg.Logging.Level),
		MaxSize: 10 * 1024 * 1024,
	})
}

// parseBandwidth parses a bandwidth string like "500K", "10M" or "1G" into
// bytes per second
func parseBandwidth(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	multiplier := int64(1)
	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "K"):
		multiplier = 1024
		s = s[:len(s)-1]
	case strings.HasSuffix(upper, "M"):
		multiplier = 1024 * 1024
		s = s[:len(s)-1]
	case strings.HasSuffix(upper, "G"):
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid bandwidth limit: %q", s)
	}

	return value * multiplier, nil
}
