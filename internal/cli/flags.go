package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/treesync/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// RunFlags holds the flags shared by the diff and apply commands
type RunFlags struct {
	Source       string
	Target       string
	CreateTarget bool
	Parallel     int
	Bandwidth    string
	Output       string
	Report       string
	ReportFormat string

	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

// addRunFlags registers the flags shared by diff and apply on cmd
func addRunFlags(cmd *cobra.Command, flags *RunFlags) {
	cmd.Flags().StringVarP(&flags.Source, "source", "s", "", "source directory path (required)")
	cmd.Flags().StringVarP(&flags.Target, "target", "t", "", "target directory path (required)")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("target")

	cmd.Flags().BoolVar(&flags.CreateTarget, "create-target", false, "create target directory if it doesn't exist")
	cmd.Flags().IntVarP(&flags.Parallel, "parallel", "p", 0, "number of parallel workers (default: 5)")
	cmd.Flags().StringVarP(&flags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g., \"10M\", \"1G\")")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "output format: table, json")
	cmd.Flags().StringVar(&flags.Report, "report", "", "write run report to file")
	cmd.Flags().StringVar(&flags.ReportFormat, "report-format", "human", "report format: human, json")

	cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&flags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
}
