package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"keyframer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a normalized config seeded with unique temp directories
// per test: <base>/input, <base>/output, and <base>/history.db for the ledger.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "input")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Extraction.Workers = 2
	cfgVal.Ledger.Path = filepath.Join(base, "history.db")

	if err := os.MkdirAll(cfgVal.Paths.InputDir, 0o755); err != nil {
		t.Fatalf("mkdir input: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkers sets the worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.Workers = n
	}
}

// WithLedger enables the run history database.
func WithLedger() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = true
	}
}

// WithStubFFmpeg writes a shell script standing in for ffmpeg and points the
// config at it. See WriteStubFFmpeg for its behaviour.
func WithStubFFmpeg() ConfigOption {
	return func(b *configBuilder) {
		bin, _ := WriteStubFFmpeg(b.t, filepath.Join(b.baseDir, "bin"))
		b.cfg.Extraction.FFmpegBinary = bin
	}
}

// WriteConfigFile encodes cfg as TOML into the base directory and returns its path.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()

	path := filepath.Join(BaseDir(cfg), "keyframer.toml")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create config file: %v", err)
	}
	defer file.Close()
	if err := cfg.Encode(file); err != nil {
		t.Fatalf("encode config: %v", err)
	}
	return path
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.InputDir)
}
