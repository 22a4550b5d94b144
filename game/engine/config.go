package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tile codes of the level data layer
const (
	CodeIce   = 1
	CodeFloor = 2
	CodeStart = 3
	CodeEnd   = 4
	CodeSolid = 5
)

// DefaultLevelsDir is used when LEVELS_DIR is not set
const DefaultLevelsDir = "levels"

var ErrUnsupportedFormat = errors.New("unsupported level file format")

// LevelMessages holds optional per-level text shown during play
type LevelMessages struct {
	Welcome    string `json:"welcome,omitempty" yaml:"welcome,omitempty"`
	Victory    string `json:"victory,omitempty" yaml:"victory,omitempty"`
	Blocked    string `json:"blocked,omitempty" yaml:"blocked,omitempty"`
	OutOfMoves string `json:"out_of_moves,omitempty" yaml:"out_of_moves,omitempty"`
}

// LevelConfig is the file representation of a level. Data is the row-major
// layer of tile codes: 1 ice, 2 floor, 3 start, 4 end, 5 solid.
type LevelConfig struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Width       int           `json:"width" yaml:"width"`
	Height      int           `json:"height" yaml:"height"`
	Data        []int         `json:"data" yaml:"data,flow"`
	MoveLimit   int           `json:"move_limit,omitempty" yaml:"move_limit,omitempty"`
	MaxMoves    int           `json:"max_moves,omitempty" yaml:"max_moves,omitempty"`
	Messages    LevelMessages `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// message reads a field of the level's messages, tolerating a nil level
func (c *LevelConfig) message(field func(LevelMessages) string) string {
	if c == nil {
		return ""
	}
	return field(c.Messages)
}

// SearchLimit returns the move limit to use when solving the level
func (c *LevelConfig) SearchLimit() int {
	if c == nil || c.MoveLimit <= 0 {
		return DefaultMoveLimit
	}
	return c.MoveLimit
}

// ValidateLevelConfig validates a level for structural correctness
func ValidateLevelConfig(config *LevelConfig) error {
	if config == nil {
		return fmt.Errorf("level validation: level is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("level validation: name is required")
	}

	if config.Width < MinGridSize || config.Width > MaxGridSize {
		return fmt.Errorf("level validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Width)
	}
	if config.Height < MinGridSize || config.Height > MaxGridSize {
		return fmt.Errorf("level validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Height)
	}

	if len(config.Data) != config.Width*config.Height {
		return fmt.Errorf("level validation: data must have %d tiles to match %dx%d, got %d",
			config.Width*config.Height, config.Width, config.Height, len(config.Data))
	}

	starts, ends := 0, 0
	for i, code := range config.Data {
		switch code {
		case CodeIce, CodeFloor, CodeSolid:
		case CodeStart:
			starts++
		case CodeEnd:
			ends++
		default:
			return fmt.Errorf("level validation: invalid tile code %d at (%d,%d)", code, i%config.Width, i/config.Width)
		}
	}
	if starts != 1 {
		return fmt.Errorf("level validation: data must contain exactly one start (3) tile, got %d", starts)
	}
	if ends != 1 {
		return fmt.Errorf("level validation: data must contain exactly one end (4) tile, got %d", ends)
	}

	if config.MoveLimit < 0 || config.MoveLimit > MaxMoveLimit {
		return fmt.Errorf("level validation: move_limit must be between 0 and %d, got %d", MaxMoveLimit, config.MoveLimit)
	}
	if config.MaxMoves < 0 {
		return fmt.Errorf("level validation: max_moves must not be negative, got %d", config.MaxMoves)
	}
	if config.Messages.Victory != "" && !ValidVictoryMessage(config.Messages.Victory) {
		return fmt.Errorf("level validation: messages.victory must contain %%d for the move count and no other %% sign, got %q", config.Messages.Victory)
	}

	return nil
}

// ValidVictoryMessage reports whether msg has exactly one %d placeholder and
// no other percent sign
func ValidVictoryMessage(msg string) bool {
	return strings.Count(msg, "%") == 1 && strings.Count(msg, "%d") == 1
}

// victoryMessage fills the move count into the level's victory text
func victoryMessage(level *LevelConfig, moves int) string {
	msg := defaultString(level.message(func(m LevelMessages) string { return m.Victory }), "Victory! Reached the exit in %d moves!")
	return strings.Replace(msg, "%d", strconv.Itoa(moves), 1)
}

// BuildGrid converts a validated level into a Grid. Start and end markers
// become floor tiles so the end can be landed on.
func BuildGrid(config *LevelConfig) (*Grid, error) {
	if err := ValidateLevelConfig(config); err != nil {
		return nil, err
	}

	grid, err := NewGrid(config.Width, config.Height)
	if err != nil {
		return nil, err
	}
	grid.Name = config.Name

	for i, code := range config.Data {
		x, y := i%config.Width, i/config.Width
		switch code {
		case CodeIce:
			grid.SetTile(x, y, Ice)
		case CodeFloor:
			grid.SetTile(x, y, Floor)
		case CodeSolid:
			grid.SetTile(x, y, Solid)
		case CodeStart:
			grid.SetTile(x, y, Floor)
			grid.SetStart(x, y)
		case CodeEnd:
			grid.SetTile(x, y, Floor)
			grid.SetEnd(x, y)
		}
	}

	return grid, nil
}

// ExportLevel converts a grid back into its file representation
func ExportLevel(grid *Grid, name, description string) *LevelConfig {
	data := make([]int, 0, grid.Width*grid.Height)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			switch {
			case grid.IsStart(x, y):
				data = append(data, CodeStart)
			case grid.IsEnd(x, y):
				data = append(data, CodeEnd)
			case grid.TileAt(x, y) == Floor:
				data = append(data, CodeFloor)
			case grid.TileAt(x, y) == Solid:
				data = append(data, CodeSolid)
			default:
				data = append(data, CodeIce)
			}
		}
	}
	if name == "" {
		name = grid.Name
	}
	return &LevelConfig{
		Name:        name,
		Description: description,
		Width:       grid.Width,
		Height:      grid.Height,
		Data:        data,
	}
}

// ParseLevelConfig decodes a level document. format is a file extension
// such as ".json" or ".yaml".
func ParseLevelConfig(data []byte, format string) (*LevelConfig, error) {
	var config LevelConfig
	switch strings.ToLower(format) {
	case ".json", "json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	case ".yaml", ".yml", "yaml", "yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := ValidateLevelConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// MarshalLevelConfig encodes a level for the given file extension
func MarshalLevelConfig(config *LevelConfig, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case ".json", "json":
		return json.MarshalIndent(config, "", "  ")
	case ".yaml", ".yml", "yaml", "yml":
		return yaml.Marshal(config)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// LoadLevelConfig loads a level from a JSON or YAML file
func LoadLevelConfig(filename string) (*LevelConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseLevelConfig(data, filepath.Ext(filename))
}

// LevelsDir returns the levels directory, honoring LEVELS_DIR
func LevelsDir() string {
	if dir := os.Getenv("LEVELS_DIR"); dir != "" {
		return dir
	}
	return DefaultLevelsDir
}

// LoadLevelByName loads a level by name from the levels directory
func LoadLevelByName(levelName string) (*LevelConfig, error) {
	dir := LevelsDir()

	candidates := []string{levelName}
	if filepath.Ext(levelName) == "" {
		candidates = []string{levelName + ".json", levelName + ".yaml", levelName + ".yml"}
	}

	for _, candidate := range candidates {
		levelPath := filepath.Join(dir, candidate)
		if _, err := os.Stat(levelPath); os.IsNotExist(err) {
			continue
		}
		config, err := LoadLevelConfig(levelPath)
		if err != nil {
			return nil, fmt.Errorf("invalid level '%s': %w", candidate, err)
		}
		return config, nil
	}

	return nil, fmt.Errorf("level file '%s' not found", levelName)
}

// DefaultLevel returns the built-in level: a 5x5 room enclosed by solid
// walls with the start bottom-left and the end top-right of the interior.
func DefaultLevel() *LevelConfig {
	return &LevelConfig{
		Name:        "default",
		Description: "Enclosed 5x5 room, two slides to the exit",
		Width:       5,
		Height:      5,
		Data: []int{
			5, 5, 5, 5, 5,
			5, 1, 1, 4, 5,
			5, 1, 1, 1, 5,
			5, 3, 1, 1, 5,
			5, 5, 5, 5, 5,
		},
		MoveLimit: 10,
	}
}

// InitGameStateFromLevel creates a new game state for the provided level
func InitGameStateFromLevel(config *LevelConfig) (*GameState, error) {
	if config == nil {
		config = DefaultLevel()
	}

	grid, err := BuildGrid(config)
	if err != nil {
		return nil, err
	}

	state := &GameState{
		Grid:              grid,
		PlayerPos:         grid.Start,
		MaxMoves:          config.MaxMoves,
		MoveLimit:         config.SearchLimit(),
		Message:           defaultString(config.Messages.Welcome, "Slide from S to E. Ice keeps you moving, floor stops you."),
		LevelName:         config.Name,
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
	state.RefreshView()
	return state, nil
}
