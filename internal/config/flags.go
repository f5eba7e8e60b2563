package config

import "flag"

// CliFlags are the command-line options; everything else comes from the
// YAML config and environment.
type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

// ParseFlags parses command-line flags
func ParseFlags() *CliFlags {
	var (
		configPath = flag.String("config", "config.yaml", "Path to YAML config file")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	return &CliFlags{
		ConfigPath: *configPath,
		DebugMode:  *debug,
	}
}
