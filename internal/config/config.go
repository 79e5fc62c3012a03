// Package config loads the settings shared by the example programs.
//
// Values come from a .env file in the working directory, then from FORKRNG_*
// environment variables, then from command-line flags, each overriding the
// one before.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Prefix for environment variable names, so LOG_LEVEL becomes FORKRNG_LOG_LEVEL.
const envprefix = "FORKRNG"

// Accumulator families.
const (
	FamilyXXH64   = "xxh64"
	FamilyBlake2b = "blake2b"
)

// Config holds the example settings.
type Config struct {

	// SEED is the root seed label.
	Seed string `default:"initial seed" desc:"Root seed label"`

	// FAMILY selects the accumulator hash.
	Family string `default:"xxh64" desc:"Accumulator family: xxh64 or blake2b"`

	// LOG_LEVEL and LOG_FORMAT configure zerolog.
	LogLevel  string `split_words:"true" default:"info" desc:"Log level (trace, debug, info, warn, error)"`
	LogFormat string `split_words:"true" default:"console" desc:"Log format: console or json"`

	// CHECKPOINT is a BoltDB file for generator states. Empty disables it.
	Checkpoint string `desc:"Path of the checkpoint database"`
}

// Load reads .env, if present, and the FORKRNG_* environment.
func Load() (Config, error) {
	var c Config
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, fmt.Errorf("config: load dotenv: %w", err)
	}
	if err := envconfig.Process(envprefix, &c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// RegisterFlags adds flags for every setting to fs, defaulting to the
// current values of c.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Seed, "seed", c.Seed, "Root seed label")
	fs.StringVar(&c.Family, "family", c.Family, "Accumulator family: xxh64 or blake2b")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log format: console or json")
	fs.StringVar(&c.Checkpoint, "checkpoint", c.Checkpoint, "Path of the checkpoint database")
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	switch c.Family {
	case FamilyXXH64, FamilyBlake2b:
	default:
		return fmt.Errorf("config: unknown family %q", c.Family)
	}
	// logging.New matches level and format case-insensitively.
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Parse loads the environment, applies command-line args on top and
// validates the result.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	c, err := Load()
	if err != nil {
		return c, err
	}
	c.RegisterFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage of %s:\n", fs.Name())
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output())
		Usage(fs.Output())
	}
	if err := fs.Parse(args); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Usage prints the environment variables Load understands.
func Usage(w io.Writer) error {
	tabs := tabwriter.NewWriter(w, 1, 0, 4, ' ', 0)
	if err := envconfig.Usagef(envprefix, &Config{}, tabs, usageHelpFormat); err != nil {
		return err
	}
	return tabs.Flush()
}

// see https://github.com/kelseyhightower/envconfig/blob/v1.4.0/usage.go#L31
const usageHelpFormat = `Environment variables:
KEY	DESCRIPTION	DEFAULT
{{range .}}{{usage_key .}}	{{usage_description .}}	{{usage_default .}}
{{end}}`
