// Command analyze prints quick, human-readable statistics about the level
// files in the levels directory: size, tile counts, how many solutions exist
// within the level's move limit, the shortest one and its longest slide.
//
// Usage:
//
//	analyze [file-or-dir ...]
//
// Without arguments the directory from LEVELS_DIR (default "levels") is used.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/icegen/game/engine"
	"github.com/wricardo/mcp-training/icegen/game/solver"
)

// Analysis holds the statistics of one level file
type Analysis struct {
	File      string
	Name      string
	Width     int
	Height    int
	Ice       int
	Floor     int
	Solid     int
	MoveLimit int

	Solutions    int
	Shortest     solver.Solution
	LongestSlide int
	Reversals    int
	Nodes        int

	start engine.Position
}

func main() {
	paths := os.Args[1:]
	if len(paths) == 0 {
		paths = []string{engine.LevelsDir()}
	}

	files, err := levelFiles(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", file)
		a, err := analyzeLevel(file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, a)
	}
}

// levelFiles expands directories into their level files, sorted by name
func levelFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, entry := range entries {
			switch filepath.Ext(entry.Name()) {
			case ".json", ".yaml", ".yml":
				if !entry.IsDir() {
					found = append(found, filepath.Join(p, entry.Name()))
				}
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func analyzeLevel(path string) (*Analysis, error) {
	level, err := engine.LoadLevelConfig(path)
	if err != nil {
		return nil, err
	}
	grid, err := engine.BuildGrid(level)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		File:      path,
		Name:      level.Name,
		Width:     grid.Width,
		Height:    grid.Height,
		Ice:       grid.Count(engine.Ice),
		Floor:     grid.Count(engine.Floor),
		Solid:     grid.Count(engine.Solid),
		MoveLimit: level.SearchLimit(),
		start:     grid.Start,
	}

	result := solver.Run(grid, a.MoveLimit, solver.Options{})
	a.Solutions = len(result.Solutions)
	a.Nodes = result.Nodes
	a.Shortest = result.Shortest()
	if seg, ok := a.Shortest.LongestSlide(grid.Start); ok {
		a.LongestSlide = seg.Distance
	}
	for _, sol := range result.Solutions {
		if sol.HasReversal() {
			a.Reversals++
		}
	}
	return a, nil
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(w, "Tiles: %d ice, %d floor, %d solid\n", a.Ice, a.Floor, a.Solid)
	fmt.Fprintf(w, "Start: (%d, %d)\n", a.start.X, a.start.Y)
	fmt.Fprintf(w, "Move Limit: %d\n", a.MoveLimit)

	if a.Solutions == 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: no solution within %d moves (%d nodes searched)\n", a.MoveLimit, a.Nodes)
		return
	}

	fmt.Fprintf(w, "Solutions: %d (%d with an immediate reversal)\n", a.Solutions, a.Reversals)
	fmt.Fprintf(w, "Shortest: %s\n", a.Shortest)
	fmt.Fprintf(w, "Longest slide of shortest: %d\n", a.LongestSlide)
	if a.Solutions == 1 {
		fmt.Fprintf(w, "✅ Unique solution\n")
	}
}
