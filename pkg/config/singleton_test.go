package config

import (
	"path/filepath"
	"sync"
	"testing"
)

func resetGlobal() {
	current.Store(nil)
	loadOnce = sync.Once{}
	loadErr = nil
}

func TestInitialize(t *testing.T) {
	resetGlobal()

	configPath := writeConfig(t, `
logging:
  level: "warn"
runstore:
  backend: "memory"
`)

	if err := Initialize(configPath); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level %q, got %q", "warn", cfg.Logging.Level)
	}
}

func TestInitialize_MissingFileUsesDefaults(t *testing.T) {
	resetGlobal()

	if err := Initialize(filepath.Join(t.TempDir(), "ecoimpact.yaml")); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	if cfg := GetConfig(); cfg == nil || cfg.RunStore.Backend != DefaultRunStoreBackend {
		t.Errorf("expected default config, got %+v", cfg)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetGlobal()

	path1 := writeConfig(t, "logging:\n  level: info\n")
	path2 := writeConfig(t, "logging:\n  level: debug\n")

	if err := Initialize(path1); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	// Second initialization should be ignored
	Initialize(path2)

	if level := GetConfig().Logging.Level; level != "info" {
		t.Errorf("second Initialize call should be ignored, got level %q", level)
	}
}

func TestGetConfig_BeforeInitialize(t *testing.T) {
	resetGlobal()

	if cfg := GetConfig(); cfg != nil {
		t.Error("expected nil config before initialization")
	}
}

func TestSetConfig(t *testing.T) {
	resetGlobal()

	SetConfig(NewTestConfig().WithLogging("error", "json").Build())

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after SetConfig")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected format %q, got %q", "json", cfg.Logging.Format)
	}
}

func TestInitialize_EnvOverride(t *testing.T) {
	resetGlobal()
	t.Setenv("ECOIMPACT_LOGGING_LEVEL", "debug")

	configPath := writeConfig(t, "logging:\n  level: warn\n")
	if err := Initialize(configPath); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	if level := GetConfig().Logging.Level; level != "debug" {
		t.Errorf("expected environment level %q, got %q", "debug", level)
	}
}

func TestInitialize_ErrorIsSticky(t *testing.T) {
	resetGlobal()

	bad := writeConfig(t, "logging:\n  level: invalid\n")
	if err := Initialize(bad); err == nil {
		t.Fatal("expected error for invalid config")
	}
	if GetConfig() != nil {
		t.Error("failed Initialize should not store a config")
	}

	good := writeConfig(t, "logging:\n  level: info\n")
	if err := Initialize(good); err == nil {
		t.Error("later Initialize should return the first error")
	}
	if GetConfig() != nil {
		t.Error("later Initialize should not load a config")
	}
}
