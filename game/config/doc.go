// Package config provides the level catalogue for the ice puzzle.
//
// Levels are stored as JSON or YAML files in the levels directory. Each file
// holds the level's dimensions, a row-major layer of tile codes (1 ice,
// 2 floor, 3 start, 4 end, 5 solid), an optional search move limit, an
// optional play budget and per-level messages.
//
// A level is addressed by its file name without extension, so "classic"
// finds classic.json, classic.yaml or classic.yml in that order. Loaded
// levels are validated and cached until RefreshCache or ReloadConfig.
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := manager.LoadConfig("classic")
//	levels, err := manager.ListConfigs()
//
// The default level is classic when present, otherwise the first level in
// the directory, otherwise the built-in enclosed room.
package config
