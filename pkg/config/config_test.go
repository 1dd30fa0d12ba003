package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/cmakegraph/pkg/errors"
	"github.com/matzehuels/cmakegraph/pkg/pipeline"
)

const sample = `
skip_kinds    = ["utility"]
skip_names    = ["test_", "bench_"]
frequent_deps = 3
legend        = true

[render]
format = "svg"
cache  = false

[server]
addr      = ":9090"
redis_url = "redis://cache:6379/1"
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !slices.Equal(c.SkipKinds, []string{"utility"}) || !slices.Equal(c.SkipNames, []string{"test_", "bench_"}) {
		t.Errorf("skip lists = %v / %v", c.SkipKinds, c.SkipNames)
	}
	if c.FrequentDeps == nil || *c.FrequentDeps != 3 {
		t.Errorf("FrequentDeps = %v", c.FrequentDeps)
	}
	if c.Legend == nil || !*c.Legend {
		t.Error("Legend not set")
	}
	if c.Render.Format != "svg" || c.CacheEnabled() {
		t.Errorf("Render = %+v", c.Render)
	}
	if c.Server.Addr != ":9090" || c.Server.RedisURL != "redis://cache:6379/1" {
		t.Errorf("Server = %+v", c.Server)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"syntax", `skip_kinds = [`, "parse configuration"},
		{"unknown key", "skip_kind = [\"utility\"]\n[server]\nport = 1\n", "server.port, skip_kind"},
		{"unknown kind", `skip_kinds = ["rocket"]`, "unknown target kind"},
		{"negative threshold", `frequent_deps = -2`, "threshold"},
		{"bad format", "[render]\nformat = \"pdf\"\n", "invalid format"},
		{"wrong type", `legend = "yes"`, "parse configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("Parse() error = %v, want INVALID_INPUT", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestApply(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	opts := pipeline.Options{SkipNames: []string{"keep_me"}}
	c.Apply(&opts)

	if !slices.Equal(opts.SkipNames, []string{"test_", "bench_"}) || opts.FrequentThreshold != 3 || !opts.Legend {
		t.Errorf("opts = %+v", opts)
	}

	// Unset values leave the options alone.
	empty := &Config{}
	opts = pipeline.Options{SkipNames: []string{"x"}, FrequentThreshold: 4}
	empty.Apply(&opts)
	if !slices.Equal(opts.SkipNames, []string{"x"}) || opts.FrequentThreshold != 4 {
		t.Errorf("empty config changed options: %+v", opts)
	}
	if !empty.CacheEnabled() {
		t.Error("caching should default to on")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Path != path {
		t.Errorf("Path = %q", c.Path)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeMissingInputFile) {
		t.Errorf("Load(missing) error = %v", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	_ = os.WriteFile(bad, []byte(`frequent_deps = -1`), 0o644)
	if _, err := Load(bad); !errors.Is(err, errors.ErrCodeInvalidInput) || !strings.Contains(err.Error(), bad) {
		t.Errorf("Load(bad) error = %v", err)
	}
}

func TestLoadDefault(t *testing.T) {
	dir := t.TempDir()

	c, err := LoadDefault(dir)
	if err != nil || c == nil || c.Path != "" {
		t.Fatalf("LoadDefault(empty dir) = %+v, %v", c, err)
	}

	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte(`legend = true`), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err = LoadDefault(dir)
	if err != nil {
		t.Fatal(err)
	}
	if c.Legend == nil || !*c.Legend {
		t.Error("default file not read")
	}
}
