package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const roomLevel = `{
	"name": "Room",
	"description": "Small enclosed room",
	"width": 5,
	"height": 5,
	"data": [
		5, 5, 5, 5, 5,
		5, 1, 1, 4, 5,
		5, 1, 1, 1, 5,
		5, 3, 1, 1, 5,
		5, 5, 5, 5, 5
	],
	"move_limit": 10,
	"messages": {
		"victory": "Out in %d slides!"
	}
}`

// writeLevel writes content to a temp file with the given extension
func writeLevel(t *testing.T, ext, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test_level_*"+ext)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}
	tmpfile.Close()
	return tmpfile.Name()
}

func hasMessage(msgs []string, substr string) bool {
	for _, msg := range msgs {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestValidateLevel_ValidLevel(t *testing.T) {
	path := writeLevel(t, ".json", roomLevel)

	result := validateLevel(path)
	if !result.Valid {
		t.Errorf("Expected valid level, but got errors: %v", result.Errors)
	}

	for _, want := range []string{
		"✓ Name: Room",
		"✓ Grid: 5x5",
		"✓ Tiles: 7 ice, 2 floor, 16 solid",
		"✓ Move limit: 10",
		"✓ Connectivity: end reachable in 2 slides",
		"✓ Solutions within 10 moves: 2",
	} {
		if !hasMessage(result.Errors, want) {
			t.Errorf("Expected info message %q, got %v", want, result.Errors)
		}
	}
}

func TestValidateLevel_YAML(t *testing.T) {
	yamlLevel := `name: Room
width: 5
height: 5
data: [5, 5, 5, 5, 5, 5, 1, 1, 4, 5, 5, 1, 1, 1, 5, 5, 3, 1, 1, 5, 5, 5, 5, 5, 5]
move_limit: 4
`
	path := writeLevel(t, ".yaml", yamlLevel)

	result := validateLevel(path)
	if !result.Valid {
		t.Errorf("Expected valid level, but got errors: %v", result.Errors)
	}
	if !hasMessage(result.Errors, "Solutions within 4 moves") {
		t.Errorf("Expected solution count within the level limit, got %v", result.Errors)
	}
}

func TestValidateLevel_InvalidJSON(t *testing.T) {
	path := writeLevel(t, ".json", `{"name": "broken", "width": 5,`)

	result := validateLevel(path)
	if result.Valid {
		t.Error("Expected invalid level due to malformed JSON")
	}
	if !hasMessage(result.Errors, "Invalid JSON") {
		t.Errorf("Expected JSON error, got %v", result.Errors)
	}
}

func TestValidateLevel_UnsupportedExtension(t *testing.T) {
	path := writeLevel(t, ".txt", roomLevel)

	result := validateLevel(path)
	if result.Valid {
		t.Error("Expected invalid result for a .txt file")
	}
	if !hasMessage(result.Errors, "Unsupported file extension") {
		t.Errorf("Expected extension error, got %v", result.Errors)
	}
}

func TestValidateLevel_MissingFile(t *testing.T) {
	result := validateLevel(filepath.Join(t.TempDir(), "missing.json"))
	if result.Valid {
		t.Error("Expected invalid result for a missing file")
	}
	if !hasMessage(result.Errors, "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateLevel_StructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "missing name and short data",
			content: `{"width": 3, "height": 3, "data": [3, 1, 4]}`,
			want:    []string{"Missing required field: name", "Data has 3 tiles, expected 9"},
		},
		{
			name:    "no markers",
			content: `{"name": "x", "width": 2, "height": 2, "data": [1, 1, 1, 1]}`,
			want:    []string{"exactly 1 start (3) tile, got 0", "exactly 1 end (4) tile, got 0"},
		},
		{
			name:    "two starts and a bad code",
			content: `{"name": "x", "width": 2, "height": 2, "data": [3, 3, 4, 9]}`,
			want:    []string{"exactly 1 start (3) tile, got 2", "Invalid tile code 9 at position [1,1]"},
		},
		{
			name:    "move limit out of range",
			content: `{"name": "x", "width": 2, "height": 1, "data": [3, 4], "move_limit": 99}`,
			want:    []string{"move_limit must be between 0 and 30, got 99"},
		},
		{
			name:    "victory message without count",
			content: `{"name": "x", "width": 2, "height": 1, "data": [3, 4], "messages": {"victory": "done"}}`,
			want:    []string{"messages.victory must contain %d"},
		},
		{
			name:    "victory message with another verb",
			content: `{"name": "x", "width": 2, "height": 1, "data": [3, 4], "messages": {"victory": "%s in %d"}}`,
			want:    []string{"no other % sign"},
		},
		{
			name:    "empty data",
			content: `{"name": "x", "width": 2, "height": 1}`,
			want:    []string{"Data is empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateLevel(writeLevel(t, ".json", tt.content))
			if result.Valid {
				t.Fatalf("Expected invalid level, got %v", result.Errors)
			}
			for _, want := range tt.want {
				if !hasMessage(result.Errors, want) {
					t.Errorf("Expected error containing %q, got %v", want, result.Errors)
				}
			}
		})
	}
}

func TestValidateLevel_Unreachable(t *testing.T) {
	walled := `{
		"name": "Walled",
		"width": 5,
		"height": 5,
		"data": [
			5, 5, 5, 5, 5,
			5, 4, 1, 1, 5,
			5, 5, 5, 5, 5,
			5, 3, 1, 1, 5,
			5, 5, 5, 5, 5
		]
	}`

	result := validateLevel(writeLevel(t, ".json", walled))
	if result.Valid {
		t.Error("Expected invalid level because the end is walled off")
	}
	if !hasMessage(result.Errors, "Connectivity failure: end (1,1) is unreachable from start (1,3)") {
		t.Errorf("Expected connectivity error, got %v", result.Errors)
	}
}

func TestValidateLevel_LimitTooLow(t *testing.T) {
	content := strings.Replace(roomLevel, `"move_limit": 10`, `"move_limit": 1`, 1)

	result := validateLevel(writeLevel(t, ".json", content))
	if result.Valid {
		t.Error("Expected invalid level because the limit is below the shortest solution")
	}
	if !hasMessage(result.Errors, "Shortest solution needs 2 slides, move limit is 1") {
		t.Errorf("Expected limit error, got %v", result.Errors)
	}
}

func TestValidateLevel_AdjacentEnd(t *testing.T) {
	result := validateLevel(writeLevel(t, ".json", `{"name": "x", "width": 2, "height": 1, "data": [3, 4]}`))
	if !result.Valid {
		t.Errorf("Expected valid level, got %v", result.Errors)
	}
	if !hasMessage(result.Errors, "end reachable in 1 slides") {
		t.Errorf("Expected one slide to the end, got %v", result.Errors)
	}
}

func TestLevelFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.json", "c.yml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	files, err := levelFiles(dir)
	if err != nil {
		t.Fatalf("levelFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 level files, got %v", files)
	}
	for i, want := range []string{"a.json", "b.yaml", "c.yml"} {
		if filepath.Base(files[i]) != want {
			t.Errorf("files[%d] = %s, want %s", i, filepath.Base(files[i]), want)
		}
	}
}

func TestValidateLevel_ShippedLevels(t *testing.T) {
	files, err := levelFiles(filepath.Join("..", "levels"))
	if err != nil {
		t.Fatalf("levelFiles failed: %v", err)
	}
	if len(files) == 0 {
		t.Skip("no shipped levels")
	}
	for _, file := range files {
		if result := validateLevel(file); !result.Valid {
			t.Errorf("%s is invalid: %v", result.File, result.Errors)
		}
	}
}
