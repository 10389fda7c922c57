package main

import (
	"bytes"
	"testing"

	"github.com/strided-ml/strided/internal/config"
)

// runCmd executes the root command with args and returns what it wrote to stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"version", "matmul", "demo", "inspect"}
	for _, name := range want {
		found := false

		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}

		if !found {
			t.Errorf("expected subcommand %q not found in root", name)
		}
	}
}

func TestNewRootCmd_HasPersistentFlags(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"config", "log-level", "workers", "precision"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected --%s persistent flag to be registered", name)
		}
	}
}

func TestSetupLogger_DoesNotPanic(_ *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		setupLogger(level)
	}
}

func TestSetupLogger_InvalidLevelFallsBackToInfo(_ *testing.T) {
	// Should not panic on invalid level.
	setupLogger("not-a-level")
}

func TestRequireConfig_FailsWhenNotInitialized(t *testing.T) {
	origCfg, origLoaded := activeCfg, cfgLoaded

	t.Cleanup(func() { activeCfg, cfgLoaded = origCfg, origLoaded })

	activeCfg, cfgLoaded = config.Config{}, false

	if _, err := requireConfig(); err == nil {
		t.Fatal("expected error when config is not loaded")
	}
}

func TestRequireConfig_SucceedsWhenLoaded(t *testing.T) {
	origCfg, origLoaded := activeCfg, cfgLoaded

	t.Cleanup(func() { activeCfg, cfgLoaded = origCfg, origLoaded })

	activeCfg, cfgLoaded = config.Config{Runtime: config.RuntimeConfig{Workers: 3}}, true

	got, err := requireConfig()
	if err != nil {
		t.Fatalf("requireConfig returned unexpected error: %v", err)
	}

	if got.Runtime.Workers != 3 {
		t.Errorf("Runtime.Workers = %d; want 3", got.Runtime.Workers)
	}
}

func TestRoot_InvalidLogLevelFails(t *testing.T) {
	if _, err := runCmd(t, "--log-level=loud", "version"); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestNewBackend_HonorsWorkers(t *testing.T) {
	cfg := config.DefaultConfig()
	if newBackend(cfg).Parallel().Enabled {
		t.Error("default config should run sequentially")
	}

	cfg.Runtime.Workers = 4
	if p := newBackend(cfg).Parallel(); !p.Enabled || p.NumWorkers != 4 {
		t.Errorf("Parallel() = %+v; want 4 workers enabled", p)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}

	if !bytes.Contains([]byte(out), []byte(version)) {
		t.Errorf("version output %q does not contain %q", out, version)
	}
}
