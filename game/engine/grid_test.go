package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestNewGrid(t *testing.T) {
	grid, err := NewGrid(4, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if grid.Width != 4 || grid.Height != 3 {
		t.Errorf("Expected 4x3 grid, got %dx%d", grid.Width, grid.Height)
	}
	if got := grid.Count(Ice); got != 12 {
		t.Errorf("Expected 12 ice tiles, got %d", got)
	}
}

func TestNewGrid_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 3},
		{"zero height", 3, 0},
		{"negative", -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.width, tt.height)
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("Expected ErrInvalidDimensions, got %v", err)
			}
		})
	}
}

func TestGrid_OutOfBoundsIsSolid(t *testing.T) {
	grid, _ := NewGrid(3, 3)

	tests := []struct {
		name string
		x, y int
		want Tile
	}{
		{"inside", 1, 1, Ice},
		{"left of grid", -1, 1, Solid},
		{"right of grid", 3, 1, Solid},
		{"above grid", 1, -1, Solid},
		{"below grid", 1, 3, Solid},
		{"far away", 100, -100, Solid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grid.TileAt(tt.x, tt.y); got != tt.want {
				t.Errorf("TileAt(%d,%d) = %s, expected %s", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestGrid_SetTile(t *testing.T) {
	grid, _ := NewGrid(3, 3)

	if !grid.SetTile(2, 0, Floor) {
		t.Error("Expected in-bounds SetTile to succeed")
	}
	if grid.TileAt(2, 0) != Floor {
		t.Errorf("Expected floor at (2,0), got %s", grid.TileAt(2, 0))
	}
	if grid.SetTile(3, 0, Floor) {
		t.Error("Expected out-of-bounds SetTile to fail")
	}
	if grid.SetStart(-1, 0) || grid.SetEnd(0, 5) {
		t.Error("Expected out-of-bounds start/end to be rejected")
	}
}

func TestGrid_Clone(t *testing.T) {
	grid, _ := NewGrid(3, 2)
	grid.SetStart(0, 1)
	grid.SetEnd(2, 0)

	clone := grid.Clone()
	clone.SetTile(1, 1, Solid)
	clone.SetEnd(1, 0)

	if grid.TileAt(1, 1) != Ice {
		t.Error("Expected clone edits not to affect the original tiles")
	}
	if !grid.IsEnd(2, 0) {
		t.Error("Expected clone edits not to affect the original end")
	}
	if !clone.IsStart(0, 1) {
		t.Error("Expected clone to keep the start")
	}
}

func TestGrid_String(t *testing.T) {
	grid, _ := NewGrid(4, 2)
	grid.SetTile(1, 0, Floor)
	grid.SetTile(2, 1, Solid)
	grid.SetStart(0, 1)
	grid.SetEnd(3, 0)

	expected := "~#~E\nS~@~"
	if got := grid.String(); got != expected {
		t.Errorf("Expected\n%s\ngot\n%s", expected, got)
	}

	player := Position{X: 1, Y: 1}
	rows := grid.Rows(&player)
	if rows[1] != "SP@~" {
		t.Errorf("Expected player marker in row, got %q", rows[1])
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{"up", Up, false},
		{"DOWN", Down, false},
		{" left ", Left, false},
		{"right", Right, false},
		{"north", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDirection(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownDirection) {
					t.Errorf("Expected ErrUnknownDirection, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Expected %s, got %s (err %v)", tt.want, got, err)
			}
		})
	}
}

func TestDirection_Opposite(t *testing.T) {
	for _, d := range Directions {
		if d.Opposite().Opposite() != d {
			t.Errorf("Expected double opposite of %s to be itself", d)
		}
		dx, dy := d.Delta()
		ox, oy := d.Opposite().Delta()
		if dx+ox != 0 || dy+oy != 0 {
			t.Errorf("Expected %s and its opposite to cancel", d)
		}
	}
	if strings.Join([]string{string(Directions[0]), string(Directions[1]), string(Directions[2]), string(Directions[3])}, ",") != "up,down,left,right" {
		t.Errorf("Unexpected canonical order %v", Directions)
	}
}
