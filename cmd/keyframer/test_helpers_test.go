package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"keyframer/internal/config"
	"keyframer/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	callsLog   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithStubFFmpeg()}, opts...)...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: testsupport.WriteConfigFile(t, cfg),
		baseDir:    base,
		callsLog:   filepath.Join(filepath.Dir(cfg.Extraction.FFmpegBinary), "calls.log"),
	}
}

func (e *cliTestEnv) decoderCalls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.callsLog)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read calls log: %v", err)
	}
	return strings.Fields(string(data))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// requireLine fails unless some line of output starts with prefix (after
// trimming) and ends with suffix.
func requireLine(t *testing.T, output, prefix, suffix string) {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.Trim(strings.TrimSpace(line), `"'`)
		if strings.HasPrefix(trimmed, prefix) && strings.HasSuffix(trimmed, suffix) {
			return
		}
	}
	t.Fatalf("expected a line starting with %q and ending with %q in:\n%s", prefix, suffix, output)
}
