package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDimensions = errors.New("grid dimensions must be at least 1x1")
	ErrUnknownDirection  = errors.New("unknown direction")
)

// Direction is one of the four slide directions
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists the four directions in canonical enumeration order.
// Search expansion and move suggestions always follow this order.
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection converts a user supplied name into a Direction
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	case Left:
		return Left, nil
	case Right:
		return Right, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Delta returns the unit step of the direction
func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the direction that undoes d
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return ""
}

// Horizontal reports whether d moves along the x axis
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

// Grid is a rectangular tile map with a start and an end tile.
// Tiles are indexed [y][x].
type Grid struct {
	Name   string   `json:"name,omitempty"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Tiles  [][]Tile `json:"tiles"`
	Start  Position `json:"start"`
	End    Position `json:"end"`
}

// NewGrid creates a grid with the desired dimensions. All tiles start as ice.
func NewGrid(width, height int) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}

	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = Ice
		}
	}

	return &Grid{
		Width:  width,
		Height: height,
		Tiles:  tiles,
	}, nil
}

// InBounds reports whether x,y is a stored tile
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// TileAt returns the tile at x,y. Out of bounds locations are returned as Solid.
func (g *Grid) TileAt(x, y int) Tile {
	if !g.InBounds(x, y) {
		return Solid
	}
	return g.Tiles[y][x]
}

// At is TileAt for a Position
func (g *Grid) At(p Position) Tile {
	return g.TileAt(p.X, p.Y)
}

// SetTile stores t at x,y. Out of bounds writes are ignored and return false.
func (g *Grid) SetTile(x, y int, t Tile) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.Tiles[y][x] = t
	return true
}

// SetStart moves the start tile
func (g *Grid) SetStart(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.Start = Position{X: x, Y: y}
	return true
}

// SetEnd moves the end tile
func (g *Grid) SetEnd(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.End = Position{X: x, Y: y}
	return true
}

func (g *Grid) IsStart(x, y int) bool {
	return g.Start.X == x && g.Start.Y == y
}

func (g *Grid) IsEnd(x, y int) bool {
	return g.End.X == x && g.End.Y == y
}

// Clone returns a deep copy of the grid. Searches that may overlap with edits
// must run on a clone.
func (g *Grid) Clone() *Grid {
	c := *g
	c.Tiles = make([][]Tile, len(g.Tiles))
	for y := range g.Tiles {
		c.Tiles[y] = append([]Tile(nil), g.Tiles[y]...)
	}
	return &c
}

// Count returns the number of tiles of the given type
func (g *Grid) Count(t Tile) int {
	count := 0
	for _, row := range g.Tiles {
		for _, tile := range row {
			if tile == t {
				count++
			}
		}
	}
	return count
}

// Rows renders the grid one string per row: S start, E end, ~ ice, # floor, @ solid.
// mark, when non-nil, is drawn as P over whatever tile it covers.
func (g *Grid) Rows(mark *Position) []string {
	rows := make([]string, g.Height)
	var b strings.Builder
	for y := 0; y < g.Height; y++ {
		b.Reset()
		for x := 0; x < g.Width; x++ {
			switch {
			case mark != nil && mark.X == x && mark.Y == y:
				b.WriteByte('P')
			case g.IsStart(x, y):
				b.WriteByte('S')
			case g.IsEnd(x, y):
				b.WriteByte('E')
			default:
				b.WriteByte(g.Tiles[y][x].Symbol())
			}
		}
		rows[y] = b.String()
	}
	return rows
}

func (g *Grid) String() string {
	return strings.Join(g.Rows(nil), "\n")
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
