// Package cmd holds the kong command grammar of the packgen binary.
package cmd

// LogOptions are the logging flags shared by every command.
type LogOptions struct {
	Level string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"PACKGEN_LOG_LEVEL"`
	File  string `help:"Write logs to this file in addition to the console" env:"PACKGEN_LOG_FILE"`
}

// CLI is the root command grammar parsed by kong.
type CLI struct {
	Config string     `help:"Path to a configuration file" env:"PACKGEN_CONFIG"`
	Log    LogOptions `embed:"" prefix:"log."`

	Generate  Generate      `cmd:"" help:"Generate device support headers and linker scripts"`
	ConfigCmd ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
	Version   Version       `cmd:"" help:"Print the packgen version"`
}
