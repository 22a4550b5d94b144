package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/icegen/game/engine"
	"github.com/wricardo/mcp-training/icegen/game/service"
)

var (
	ErrConfigNotFound = errors.New("level not found")
	ErrInvalidConfig  = errors.New("invalid level")
)

// Extensions lists the level file formats in lookup order
var Extensions = []string{".json", ".yaml", ".yml"}

// Manager handles level loading and caching
type Manager struct {
	levelsDir     string
	defaultConfig *engine.LevelConfig
	configs       map[string]*engine.LevelConfig
	mu            sync.RWMutex
}

// NewManager creates a new level manager
func NewManager(levelsDir string) (*Manager, error) {
	// Ensure levels directory exists
	if _, err := os.Stat(levelsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("levels directory does not exist: %s", levelsDir)
	}

	m := &Manager{
		levelsDir: levelsDir,
		configs:   make(map[string]*engine.LevelConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}

	return m, nil
}

// Dir returns the directory the manager reads levels from
func (m *Manager) Dir() string {
	return m.levelsDir
}

// levelID strips a supported extension from name
func levelID(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range Extensions {
		if ext == supported {
			return strings.TrimSuffix(name, filepath.Ext(name))
		}
	}
	return name
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: bad level name %q", ErrInvalidConfig, name)
	}
	return nil
}

// resolve finds the file backing name, trying each extension when none is given
func (m *Manager) resolve(name string) (string, error) {
	candidates := []string{name}
	if levelID(name) == name {
		candidates = candidates[:0]
		for _, ext := range Extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, candidate := range candidates {
		path := filepath.Join(m.levelsDir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat level file: %w", err)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
}

// LoadConfig loads a level by name, with or without its file extension
func (m *Manager) LoadConfig(name string) (*engine.LevelConfig, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	id := levelID(name)

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	config, err := engine.ParseLevelConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}

	m.configs[id] = config
	return config, nil
}

// ReloadConfig drops a cached level and reads it from disk again
func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	delete(m.configs, levelID(name))
	m.mu.Unlock()

	_, err := m.LoadConfig(name)
	return err
}

// ValidateConfig checks a level without storing it
func (m *Manager) ValidateConfig(config *engine.LevelConfig) error {
	if err := engine.ValidateLevelConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ListConfigs returns information about all loadable levels, ordered by file name
func (m *Manager) ListConfigs() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}

	levels := []*service.LevelInfo{}
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id := levelID(entry.Name())
		if id == entry.Name() || seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			logrus.WithError(err).WithField("file", entry.Name()).Warn("skipping invalid level")
			continue
		}
		seen[id] = true

		levels = append(levels, &service.LevelInfo{
			Filename:    entry.Name(),
			LevelID:     id,
			Name:        config.Name,
			Description: config.Description,
			Width:       config.Width,
			Height:      config.Height,
			MoveLimit:   config.MoveLimit,
			MaxMoves:    config.MaxMoves,
		})
	}

	return levels, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.LevelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default level by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached level and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.LevelConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig picks classic, then the first listed level, then the
// built-in room
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig("classic")
	if err != nil {
		config = engine.DefaultLevel()
		if levels, listErr := m.ListConfigs(); listErr == nil && len(levels) > 0 {
			if first, loadErr := m.LoadConfig(levels[0].Filename); loadErr == nil {
				config = first
			}
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig writes a level to disk. The extension of name picks the format;
// without one an existing file keeps its format and new files are JSON.
func (m *Manager) SaveConfig(name string, config *engine.LevelConfig) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := m.ValidateConfig(config); err != nil {
		return err
	}

	path := filepath.Join(m.levelsDir, name)
	if levelID(name) == name {
		path = filepath.Join(m.levelsDir, name+".json")
		if existing, err := m.resolve(name); err == nil {
			path = existing
		}
	}

	data, err := engine.MarshalLevelConfig(config, filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[levelID(name)] = config
	m.mu.Unlock()

	return nil
}
