// Command validate checks the level files of a levels directory. It checks:
//   - JSON or YAML structure and required fields
//   - Dimensions, tile codes (1 ice, 2 floor, 3 start, 4 end, 5 solid) and data length
//   - Exactly one start and one end marker
//   - Move limit range and the victory message format
//   - Connectivity: the end can be reached from the start by slides
//   - Solvability within the level's move limit
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zyedidia/generic/queue"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/icegen/game/engine"
	"github.com/wricardo/mcp-training/icegen/game/solver"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// decodeLevel decodes a level document without validating it
func decodeLevel(data []byte, ext string) (*engine.LevelConfig, error) {
	var level engine.LevelConfig
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &level); err != nil {
			return nil, fmt.Errorf("Invalid JSON: %v", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &level); err != nil {
			return nil, fmt.Errorf("Invalid YAML: %v", err)
		}
	default:
		return nil, fmt.Errorf("Unsupported file extension %q", ext)
	}
	return &level, nil
}

// validateLevel loads and validates a single level file. Structural problems
// are all reported together; connectivity and solvability are only checked
// for structurally sound levels.
func validateLevel(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	level, err := decodeLevel(data, filepath.Ext(filePath))
	if err != nil {
		result.fail("%v", err)
		return result
	}

	checkStructure(level, &result)
	if !result.Valid {
		return result
	}

	grid, err := engine.BuildGrid(level)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	reach := validateConnectivity(grid, level.SearchLimit())
	result.Valid = reach.Valid
	result.Errors = append(result.Errors, reach.Errors...)

	if result.Valid {
		result.info("Name: %s", level.Name)
		result.info("Grid: %dx%d", grid.Width, grid.Height)
		result.info("Tiles: %d ice, %d floor, %d solid", grid.Count(engine.Ice), grid.Count(engine.Floor), grid.Count(engine.Solid))
		result.info("Move limit: %d", level.SearchLimit())
	}

	return result
}

// checkStructure records every structural problem of level
func checkStructure(level *engine.LevelConfig, result *ValidationResult) {
	if level.Name == "" {
		result.fail("Missing required field: name")
	}
	if level.Width < 1 || level.Width > engine.MaxGridSize {
		result.fail("width must be between 1 and %d, got %d", engine.MaxGridSize, level.Width)
	}
	if level.Height < 1 || level.Height > engine.MaxGridSize {
		result.fail("height must be between 1 and %d, got %d", engine.MaxGridSize, level.Height)
	}
	if len(level.Data) == 0 {
		result.fail("Data is empty")
	} else if len(level.Data) != level.Width*level.Height {
		result.fail("Data has %d tiles, expected %d for %dx%d", len(level.Data), level.Width*level.Height, level.Width, level.Height)
	}

	starts, ends := 0, 0
	for i, code := range level.Data {
		switch code {
		case engine.CodeIce, engine.CodeFloor, engine.CodeSolid:
		case engine.CodeStart:
			starts++
		case engine.CodeEnd:
			ends++
		default:
			x, y := i, 0
			if level.Width > 0 {
				x, y = i%level.Width, i/level.Width
			}
			result.fail("Invalid tile code %d at position [%d,%d]", code, x, y)
		}
	}
	if starts != 1 {
		result.fail("Must have exactly 1 start (3) tile, got %d", starts)
	}
	if ends != 1 {
		result.fail("Must have exactly 1 end (4) tile, got %d", ends)
	}

	if level.MoveLimit < 0 || level.MoveLimit > engine.MaxMoveLimit {
		result.fail("move_limit must be between 0 and %d, got %d", engine.MaxMoveLimit, level.MoveLimit)
	}
	if level.MaxMoves < 0 {
		result.fail("max_moves must not be negative, got %d", level.MaxMoves)
	}
	if level.Messages.Victory != "" && !engine.ValidVictoryMessage(level.Messages.Victory) {
		result.fail("messages.victory must contain %%d for the move count and no other %% sign")
	}
}

// validateConnectivity walks the slide graph breadth first from the start.
// It fails when the end is never reached or needs more slides than limit,
// and otherwise reports the shortest slide count and the solutions found
// within limit.
func validateConnectivity(grid *engine.Grid, limit int) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	depth := map[engine.Position]int{grid.Start: 0}
	pending := queue.New[engine.Position]()
	pending.Enqueue(grid.Start)
	for !pending.Empty() {
		pos := pending.Dequeue()
		if pos == grid.End {
			break
		}
		for _, d := range engine.Directions {
			next, ok := engine.Slide(grid, pos, d)
			if !ok {
				continue
			}
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = depth[pos] + 1
			pending.Enqueue(next)
		}
	}

	shortest, reached := depth[grid.End]
	if !reached {
		result.fail("Connectivity failure: end (%d,%d) is unreachable from start (%d,%d); %d landing positions explored",
			grid.End.X, grid.End.Y, grid.Start.X, grid.Start.Y, len(depth))
		return result
	}
	if shortest > limit {
		result.fail("Shortest solution needs %d slides, move limit is %d", shortest, limit)
		return result
	}

	run := solver.Run(grid, limit, solver.Options{ReversalPruning: true})
	result.info("Connectivity: end reachable in %d slides", shortest)
	result.info("Solutions within %d moves: %d (shortest %s)", limit, len(run.Solutions), run.Shortest())
	return result
}

// levelFiles lists the level files of dir in name order
func levelFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func main() {
	dirs := os.Args[1:]
	if len(dirs) == 0 {
		dirs = []string{engine.LevelsDir()}
	}

	var files []string
	for _, dir := range dirs {
		found, err := levelFiles(dir)
		if err != nil {
			fmt.Printf("Error finding level files: %v\n", err)
			os.Exit(1)
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		fmt.Printf("No level files found in %s\n", strings.Join(dirs, ", "))
		os.Exit(1)
	}

	fmt.Println("=== Ice Puzzle Level Validation ===")
	fmt.Println()

	allValid := true
	for _, file := range files {
		result := validateLevel(file)

		if result.Valid {
			fmt.Printf("✅ %s - VALID\n", result.File)
		} else {
			fmt.Printf("❌ %s - INVALID\n", result.File)
			allValid = false
		}

		for _, msg := range result.Errors {
			fmt.Printf("   %s\n", msg)
		}
		fmt.Println()
	}

	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
