package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func createValidConfig() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = "Test Config"
	config.Description = "Test configuration"
	config.TokenCount = 12
	return config
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		writeConfigFile(t, dir, "classroom", createValidConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Test Config" {
			t.Errorf("Expected classroom.json as default, got %s", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in default", func(t *testing.T) {
		manager, err := NewManager(createTestConfigDir(t))
		if err != nil {
			t.Fatalf("NewManager should succeed without config files, got error: %v", err)
		}
		if manager.GetDefault().Name != engine.DefaultGameConfig().Name {
			t.Errorf("Expected built-in default, got %s", manager.GetDefault().Name)
		}
	})

	t.Run("first valid config when classroom is missing", func(t *testing.T) {
		dir := createTestConfigDir(t)
		other := createValidConfig()
		other.Name = "Park"
		writeConfigFile(t, dir, "park", other)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Park" {
			t.Errorf("Expected Park as default, got %s", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, "garden", createValidConfig())

	invalid := createValidConfig()
	invalid.SpawnRadius = invalid.CellSize
	writeConfigFile(t, dir, "broken", invalid)

	if err := os.WriteFile(filepath.Join(dir, "malformed.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("garden")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.TokenCount != 12 {
			t.Errorf("Expected 12 tokens, got %d", config.TokenCount)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		if _, err := manager.LoadConfig("garden.json"); err != nil {
			t.Errorf("Failed to load config with extension: %v", err)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		first, _ := manager.LoadConfig("garden")
		second, _ := manager.LoadConfig("garden")
		if first != second {
			t.Error("Expected cached config instance")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("missing")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("reject path traversal", func(t *testing.T) {
		_, err := manager.LoadConfig("../garden")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		_, err := manager.LoadConfig("broken")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		_, err := manager.LoadConfig("malformed")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, "zeta", createValidConfig())

	alpha := createValidConfig()
	alpha.Name = "Alpha"
	alpha.WinValue = 64
	writeConfigFile(t, dir, "alpha", alpha)

	broken := createValidConfig()
	broken.Name = ""
	writeConfigFile(t, dir, "broken", broken)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("Expected 2 valid configs, got %d", len(configs))
	}
	if configs[0].ConfigID != "alpha" || configs[1].ConfigID != "zeta" {
		t.Errorf("Expected configs sorted by id, got %s, %s", configs[0].ConfigID, configs[1].ConfigID)
	}
	if configs[0].WinValue != 64 || configs[0].WinEmoji != "🌴" {
		t.Errorf("Unexpected win info %d %s", configs[0].WinValue, configs[0].WinEmoji)
	}
	if configs[0].Filename != "alpha.json" {
		t.Errorf("Expected alpha.json, got %s", configs[0].Filename)
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := createValidConfig()
	config.Messages = engine.Messages{}
	if err := manager.SaveConfig("custom", config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if config.Messages.Victory == "" {
		t.Error("Expected default messages to be filled in before saving")
	}

	// Reload from disk through a fresh manager
	other, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	loaded, err := other.LoadConfig("custom")
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Name != config.Name || loaded.TokenCount != config.TokenCount {
		t.Errorf("Saved config mismatch: %+v", loaded)
	}

	bad := createValidConfig()
	bad.WinValue = 3
	if err := manager.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := manager.SaveConfig("../escape", createValidConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for bad name, got %v", err)
	}
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, "classroom", createValidConfig())

	garden := createValidConfig()
	garden.Name = "Garden"
	writeConfigFile(t, dir, "garden", garden)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("garden"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "Garden" {
		t.Errorf("Expected Garden default, got %s", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	// Edit on disk, then refresh
	changed := createValidConfig()
	changed.TokenCount = 30
	writeConfigFile(t, dir, "classroom", changed)

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	if manager.GetDefault().TokenCount != 30 {
		t.Errorf("Expected refreshed default with 30 tokens, got %d", manager.GetDefault().TokenCount)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, "classroom", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadConfig("classroom"); err != nil {
				errs <- err
			}
			_ = manager.GetDefault()
			if _, err := manager.ListConfigs(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent access error: %v", err)
	}
}

func TestRepositoryConfigsAreValid(t *testing.T) {
	manager, err := NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configs) < 3 {
		t.Errorf("Expected at least 3 shipped configs, got %d", len(configs))
	}
	if manager.GetDefault().Name != DefaultConfigName {
		t.Errorf("Expected classroom default, got %s", manager.GetDefault().Name)
	}
	if manager.GetDefault().Origin != engine.ClassroomOrigin {
		t.Errorf("Expected classroom origin, got %v", manager.GetDefault().Origin)
	}
}
