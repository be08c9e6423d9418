package config

import (
	"flag"
	"strings"
	"time"
)

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config          string
	Debug           bool
	SearchPaths     stringList
	GenerateNormals bool
	Timeout         time.Duration
	Workers         int
	Format          string
	LogFile         string
}

// RegisterFlags defines the shared flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.Var(&f.SearchPaths, "path", "Directory to search for scenes (repeatable)")
	fs.BoolVar(&f.GenerateNormals, "normals", false, "Generate face normals for corners without one")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Give up on a scene after this long")
	fs.IntVar(&f.Workers, "workers", 0, "Concurrent scenes in batch mode")
	fs.StringVar(&f.Format, "format", "", "Output format: text, yaml or json")
	fs.StringVar(&f.LogFile, "log", "", "Write logs to this file")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if len(f.SearchPaths) > 0 {
		cfg.Assets.SearchPaths = append([]string(nil), f.SearchPaths...)
	}
	if f.GenerateNormals {
		cfg.Pipeline.GenerateNormals = true
	}
	if f.Timeout > 0 {
		cfg.Pipeline.Timeout = Duration(f.Timeout)
	}
	if f.Workers > 0 {
		cfg.Pipeline.Workers = f.Workers
	}
	if f.Format != "" {
		cfg.Output.Format = f.Format
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
