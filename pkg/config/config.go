// Package config loads cmakegraph settings from a TOML file.
//
// The file is looked up as .cmakegraph.toml in the working directory unless a
// path is given explicitly:
//
//	skip_kinds    = ["utility"]
//	skip_names    = ["test_", "bench_"]
//	frequent_deps = 3
//	legend        = true
//
//	[render]
//	format = "svg"
//	cache  = true
//
//	[server]
//	addr      = ":8080"
//	redis_url = "redis://localhost:6379/0"
//
// Values from the file are defaults; command-line flags that are set
// explicitly take precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	cgerrors "github.com/matzehuels/cmakegraph/pkg/errors"
	"github.com/matzehuels/cmakegraph/pkg/pipeline"
)

// DefaultFile is the name of the configuration file looked up in the
// working directory.
const DefaultFile = ".cmakegraph.toml"

// Config mirrors the configuration file. Pointer fields distinguish "unset"
// from zero values.
type Config struct {
	SkipKinds    []string `toml:"skip_kinds"`
	SkipNames    []string `toml:"skip_names"`
	FrequentDeps *int     `toml:"frequent_deps"`
	Legend       *bool    `toml:"legend"`

	Render Render `toml:"render"`
	Server Server `toml:"server"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// Render holds settings of the render and transform commands.
type Render struct {
	Format string `toml:"format"`
	Cache  *bool  `toml:"cache"`
}

// Server holds settings of the serve command.
type Server struct {
	Addr string `toml:"addr"`
	// RedisURL selects a shared Redis render cache instead of the
	// in-process one, e.g. "redis://localhost:6379/0".
	RedisURL string `toml:"redis_url"`
}

// Parse decodes TOML data. Unknown keys are rejected so typos do not go
// unnoticed.
func Parse(data []byte) (*Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "parse configuration")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "unknown configuration keys: %s", strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the configuration file at path. A missing file is reported as
// MISSING_INPUT_FILE.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeMissingInputFile, err, "configuration file %s does not exist", path)
	}
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "read %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.GetCode(err), err, "%s", path)
	}
	c.Path = path
	return c, nil
}

// LoadDefault reads DefaultFile from dir. A missing file yields an empty
// configuration.
func LoadDefault(dir string) (*Config, error) {
	c, err := Load(filepath.Join(dir, DefaultFile))
	if cgerrors.Is(err, cgerrors.ErrCodeMissingInputFile) {
		return &Config{}, nil
	}
	return c, err
}

// Validate checks the values with the same rules the pipeline applies.
func (c *Config) Validate() error {
	opts := pipeline.Options{SkipKinds: c.SkipKinds, SkipNames: c.SkipNames}
	if c.FrequentDeps != nil {
		opts.FrequentThreshold = *c.FrequentDeps
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if c.Render.Format != "" {
		if err := pipeline.ValidateFormat(c.Render.Format); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the values set in c into opts.
func (c *Config) Apply(opts *pipeline.Options) {
	if c.SkipKinds != nil {
		opts.SkipKinds = append([]string(nil), c.SkipKinds...)
	}
	if c.SkipNames != nil {
		opts.SkipNames = append([]string(nil), c.SkipNames...)
	}
	if c.FrequentDeps != nil {
		opts.FrequentThreshold = *c.FrequentDeps
	}
	if c.Legend != nil {
		opts.Legend = *c.Legend
	}
}

// CacheEnabled reports whether render caching is on (the default).
func (c *Config) CacheEnabled() bool {
	return c.Render.Cache == nil || *c.Render.Cache
}
