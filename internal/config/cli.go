// Package config holds the kong command line model of cscan.
package config

import "github.com/Alia5/cscan/internal/cmd"

// LogConfig configures the logger and the macro fold trace.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"CSCAN_LOG_LEVEL"`
	File    string `help:"Write every log record to this file" env:"CSCAN_LOG_FILE"`
	RawFile string `help:"Write one line per macro fold attempt to this file" env:"CSCAN_LOG_RAW_FILE"`
}

// CLI is the root command.
type CLI struct {
	Log    LogConfig `embed:"" prefix:"log."`
	Config string    `help:"Path to a json, yaml or toml config file" env:"CSCAN_CONFIG"`

	Scan      cmd.Scan          `cmd:"" help:"Scan C files and print their exported surface"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
	Version   cmd.Version       `cmd:"" help:"Print the version"`
}
