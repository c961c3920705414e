package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/plantmerge/game/config"
)

func testSettings(t *testing.T, storage string) config.Settings {
	t.Helper()
	defaults, err := config.LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load default settings: %v", err)
	}
	dir := t.TempDir()
	defaults.ConfigDir = "configs"
	defaults.Storage = storage
	defaults.SessionsDir = filepath.Join(dir, "sessions")
	defaults.SQLitePath = filepath.Join(dir, "plantmerge.db")
	return defaults
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	expectedAppName := "Plant Merge Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	for _, storage := range []string{config.StorageFile, config.StorageSQLite, config.StorageMemory} {
		t.Run(storage, func(t *testing.T) {
			a, err := initializeServices(testSettings(t, storage), zap.NewNop())
			if err != nil {
				t.Fatalf("Failed to initialize services: %v", err)
			}
			defer a.Close()

			if a.service == nil {
				t.Fatal("Expected game service to be initialized")
			}
			if (storage == config.StorageMemory) != (a.persistence == nil) {
				t.Errorf("Unexpected persistence %T for %s storage", a.persistence, storage)
			}

			info, err := a.service.CreateSession(context.Background(), "")
			if err != nil {
				t.Fatalf("Failed to create session: %v", err)
			}
			if info.ConfigName != "classroom" {
				t.Errorf("Expected classroom config, got %s", info.ConfigName)
			}
		})
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	settings := testSettings(t, config.StorageMemory)
	settings.ConfigDir = "/non/existent/path"

	if _, err := initializeServices(settings, zap.NewNop()); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestPruneOrphans(t *testing.T) {
	a, err := initializeServices(testSettings(t, config.StorageFile), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	kept, _ := a.service.CreateSession(ctx, "")
	gone, _ := a.service.CreateSession(ctx, "")

	if err := a.persistence.Delete(gone.ID); err != nil {
		t.Fatalf("Failed to delete stored session: %v", err)
	}

	if pruned := a.pruneOrphans(ctx); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := a.service.GetSession(ctx, kept.ID); err != nil {
		t.Errorf("Expected %s to remain: %v", kept.ID, err)
	}
	if _, err := a.service.GetSession(ctx, gone.ID); err == nil {
		t.Errorf("Expected %s to be gone", gone.ID)
	}
}

func TestCommandFlagsOverrideDefaults(t *testing.T) {
	defaults := testSettings(t, config.StorageMemory)

	var got config.Settings
	cmd := newCommand(defaults)
	cmd.Commands[0].Action = func(ctx context.Context, c *cli.Command) error {
		var err error
		got, err = settingsFromCommand(c, defaults)
		return err
	}

	args := []string{"plantmerge", "--port", "9191", "--storage", "SQLite", "--geo-direct=false", "server"}
	if err := cmd.Run(context.Background(), args); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got.Port != 9191 {
		t.Errorf("Expected port 9191, got %d", got.Port)
	}
	if got.Storage != config.StorageSQLite {
		t.Errorf("Expected normalized sqlite storage, got %q", got.Storage)
	}
	if got.GeoDirect {
		t.Error("Expected geo-direct to be disabled")
	}
	if got.ConfigDir != defaults.ConfigDir {
		t.Errorf("Expected config dir default %s, got %s", defaults.ConfigDir, got.ConfigDir)
	}
}

func TestCommandRejectsInvalidStorage(t *testing.T) {
	defaults := testSettings(t, config.StorageMemory)

	cmd := newCommand(defaults)
	cmd.Commands[0].Action = func(ctx context.Context, c *cli.Command) error {
		_, err := settingsFromCommand(c, defaults)
		return err
	}

	if err := cmd.Run(context.Background(), []string{"plantmerge", "--storage", "redis", "server"}); err == nil {
		t.Error("Expected error for unknown storage backend")
	}
}

func TestHandlerRoutes(t *testing.T) {
	a, err := initializeServices(testSettings(t, config.StorageMemory), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(a.newHandler(ctx, "http://unused"))
	defer srv.Close()

	if !externalAPIAvailable(ctx, srv.URL) {
		t.Error("Expected health endpoint to answer")
	}

	resp, err := http.Get(srv.URL + "/api/configs")
	if err != nil {
		t.Fatalf("GET /api/configs failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestExternalAPIUnavailable(t *testing.T) {
	if externalAPIAvailable(context.Background(), "http://127.0.0.1:1") {
		t.Error("Expected unreachable API to be reported unavailable")
	}
}
