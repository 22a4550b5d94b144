package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/icegen/game/engine"
)

func createValidLevel() *engine.LevelConfig {
	return &engine.LevelConfig{
		Name:        "Test Level",
		Description: "Test level",
		Width:       4,
		Height:      3,
		Data: []int{
			5, 5, 4, 5,
			1, 1, 1, 5,
			3, 1, 2, 5,
		},
		MoveLimit: 6,
		Messages: engine.LevelMessages{
			Welcome: "Welcome!",
			Victory: "Out in %d!",
		},
	}
}

func writeLevelFile(t *testing.T, dir, name string, level *engine.LevelConfig) {
	t.Helper()

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	data, err := engine.MarshalLevelConfig(level, filepath.Ext(filename))
	if err != nil {
		t.Fatalf("Failed to marshal level: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write level file: %v", err)
	}
}

// Count reports how many levels are cached
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeLevelFile(t, dir, "first", createValidLevel())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.Dir() != dir {
			t.Errorf("Expected dir %s, got %s", dir, manager.Dir())
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to the built-in room", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without level files, got error: %v", err)
		}

		level := manager.GetDefault()
		if level == nil || level.Name != engine.DefaultLevel().Name {
			t.Errorf("Expected built-in default level, got %+v", level)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()

	easy := createValidLevel()
	easy.Name = "Easy"
	easy.MoveLimit = 8
	writeLevelFile(t, dir, "easy", easy)

	yamlLevel := createValidLevel()
	yamlLevel.Name = "Yaml"
	writeLevelFile(t, dir, "frosty.yaml", yamlLevel)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name     string
		lookup   string
		wantName string
	}{
		{"bare name", "easy", "Easy"},
		{"with .json extension", "easy.json", "Easy"},
		{"yaml by bare name", "frosty", "Yaml"},
		{"yaml with extension", "frosty.yaml", "Yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := manager.LoadConfig(tt.lookup)
			if err != nil {
				t.Fatalf("Failed to load level: %v", err)
			}
			if level.Name != tt.wantName {
				t.Errorf("Expected level name '%s', got '%s'", tt.wantName, level.Name)
			}
		})
	}

	t.Run("load from cache", func(t *testing.T) {
		level1, _ := manager.LoadConfig("easy")
		level2, err := manager.LoadConfig("easy.json")
		if err != nil {
			t.Fatalf("Failed to load level from cache: %v", err)
		}
		if level1 != level2 {
			t.Error("Expected level to be loaded from cache")
		}
	})

	t.Run("load non-existent level", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("reject path traversal", func(t *testing.T) {
		_, err := manager.LoadConfig("../secrets")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load invalid level", func(t *testing.T) {
		invalidData := []byte(`{"name": "Broken", "width": 2, "height": 1, "data": [3, 3]}`)
		if err := os.WriteFile(filepath.Join(dir, "invalid.json"), invalidData, 0644); err != nil {
			t.Fatalf("Failed to write invalid level: %v", err)
		}

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		malformedData := []byte(`{"name": "Malformed", invalid json}`)
		if err := os.WriteFile(filepath.Join(dir, "malformed.json"), malformedData, 0644); err != nil {
			t.Fatalf("Failed to write malformed level: %v", err)
		}

		_, err := manager.LoadConfig("malformed")
		if err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_GetDefault(t *testing.T) {
	t.Run("classic wins", func(t *testing.T) {
		dir := t.TempDir()
		first := createValidLevel()
		first.Name = "Alpha"
		writeLevelFile(t, dir, "alpha", first)
		classic := createValidLevel()
		classic.Name = "Classic"
		writeLevelFile(t, dir, "classic.yml", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Classic" {
			t.Errorf("Expected default level 'Classic', got '%s'", got)
		}
	})

	t.Run("first level otherwise", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"beta", "alpha"} {
			level := createValidLevel()
			level.Name = strings.ToUpper(name)
			writeLevelFile(t, dir, name, level)
		}

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "ALPHA" {
			t.Errorf("Expected default level 'ALPHA', got '%s'", got)
		}

		if err := manager.SetDefault("beta"); err != nil {
			t.Fatalf("SetDefault failed: %v", err)
		}
		if got := manager.GetDefault().Name; got != "BETA" {
			t.Errorf("Expected default level 'BETA', got '%s'", got)
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()

	levels := []struct {
		filename string
		name     string
	}{
		{"alpha.json", "Alpha"},
		{"beta.yaml", "Beta"},
		{"gamma.yml", "Gamma"},
		{"delta.json", "Delta"},
	}
	for _, l := range levels {
		level := createValidLevel()
		level.Name = l.name
		writeLevelFile(t, dir, l.filename, level)
	}

	// Ignored: other extensions, a duplicate id and an invalid level
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	writeLevelFile(t, dir, "alpha.yaml", createValidLevel())
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name": ""}`), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	list, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list levels: %v", err)
	}

	var ids []string
	for _, info := range list {
		ids = append(ids, info.LevelID)
	}
	want := []string{"alpha", "beta", "delta", "gamma"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("Expected level ids %v, got %v", want, ids)
	}

	if list[0].Name != "Alpha" || list[0].Filename != "alpha.json" {
		t.Errorf("Expected alpha.json to shadow alpha.yaml, got %+v", list[0])
	}
	if list[1].Width != 4 || list[1].Height != 3 || list[1].MoveLimit != 6 {
		t.Errorf("Unexpected level info: %+v", list[1])
	}
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := t.TempDir()

	level := createValidLevel()
	level.Name = "Changeable"
	writeLevelFile(t, dir, "changeable", level)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.MoveLimit != 6 {
		t.Errorf("Expected initial move limit 6, got %d", loaded.MoveLimit)
	}

	level.MoveLimit = 12
	writeLevelFile(t, dir, "changeable", level)

	if err := manager.ReloadConfig("changeable"); err != nil {
		t.Fatalf("Failed to reload level: %v", err)
	}

	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.MoveLimit != 12 {
		t.Errorf("Expected reloaded move limit 12, got %d", reloaded.MoveLimit)
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeLevelFile(t, dir, "classic", createValidLevel())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	updated := createValidLevel()
	updated.Name = "Refreshed"
	writeLevelFile(t, dir, "classic", updated)

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	if got := manager.GetDefault().Name; got != "Refreshed" {
		t.Errorf("Expected refreshed default level, got '%s'", got)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected only the default level cached, got %d", manager.Count())
	}
}

func TestManager_ValidateConfig(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(l *engine.LevelConfig)
		wantErr bool
	}{
		{"valid level", func(l *engine.LevelConfig) {}, false},
		{"missing name", func(l *engine.LevelConfig) { l.Name = "" }, true},
		{"short data", func(l *engine.LevelConfig) { l.Data = l.Data[:5] }, true},
		{"no end", func(l *engine.LevelConfig) { l.Data[2] = engine.CodeSolid }, true},
		{"victory without count", func(l *engine.LevelConfig) { l.Messages.Victory = "Out!" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := createValidLevel()
			tt.mutate(level)
			err := manager.ValidateConfig(level)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	writeLevelFile(t, dir, "kept.yaml", createValidLevel())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name     string
		saveAs   string
		wantFile string
	}{
		{"new level defaults to JSON", "fresh", "fresh.json"},
		{"explicit YAML", "cold.yaml", "cold.yaml"},
		{"existing file keeps its format", "kept", "kept.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := createValidLevel()
			level.Name = "Saved " + tt.saveAs
			if err := manager.SaveConfig(tt.saveAs, level); err != nil {
				t.Fatalf("SaveConfig failed: %v", err)
			}

			loaded, err := engine.LoadLevelConfig(filepath.Join(dir, tt.wantFile))
			if err != nil {
				t.Fatalf("Expected %s on disk: %v", tt.wantFile, err)
			}
			if loaded.Name != level.Name {
				t.Errorf("Expected saved name '%s', got '%s'", level.Name, loaded.Name)
			}

			cached, err := manager.LoadConfig(tt.saveAs)
			if err != nil || cached != level {
				t.Errorf("Expected saved level to be cached, got %v (%v)", cached, err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "kept.json")); !os.IsNotExist(err) {
		t.Error("Expected no kept.json next to kept.yaml")
	}

	invalid := createValidLevel()
	invalid.Name = ""
	if err := manager.SaveConfig("invalid", invalid); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := manager.SaveConfig("../escape", createValidLevel()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for traversal, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 5; i++ {
		level := createValidLevel()
		level.Name = fmt.Sprintf("Level%d", i)
		writeLevelFile(t, dir, fmt.Sprintf("level%d", i), level)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.LoadConfig(fmt.Sprintf("level%d", id%5+1)); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	if manager.Count() != 5 {
		t.Errorf("Expected 5 levels in cache, got %d", manager.Count())
	}
}
