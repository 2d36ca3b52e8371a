package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type Config struct {
	Theme  string `json:"theme"`
	Sound  bool   `json:"sound"`
	Music  bool   `json:"music"`
	Volume int    `json:"volume"`
	Scale  int    `json:"scale"`
	Mode   string `json:"mode"`
}

// configRoot is swapped out by tests.
var configRoot = os.UserConfigDir

func defaultConfig() Config {
	return Config{
		Theme:  themes[0].Name,
		Sound:  true,
		Music:  true,
		Volume: 70,
		Scale:  1,
	}
}

func loadConfig() (Config, error) {
	config := defaultConfig()
	path, err := configPath()
	if err != nil {
		return config, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config, nil
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, err
	}
	if config.Theme == "" {
		config.Theme = themes[0].Name
	}
	if config.Scale < 1 {
		config.Scale = 1
	}
	if config.Volume < 0 || config.Volume > 100 {
		config.Volume = 70
	}
	return config, nil
}

func saveConfig(config Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// High scores are a single integer per game mode.

func loadHighScores() (map[string]int, error) {
	scores := map[string]int{}
	path, err := scoresPath()
	if err != nil {
		return scores, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return scores, nil
	}
	if err := json.Unmarshal(data, &scores); err != nil {
		return map[string]int{}, err
	}
	return scores, nil
}

func saveHighScores(scores map[string]int) error {
	path, err := scoresPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(scores, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// updateHighScore records score for mode if it beats the stored value and
// reports whether it did.
func updateHighScore(scores map[string]int, mode string, score int) bool {
	if score <= scores[mode] {
		return false
	}
	scores[mode] = score
	return true
}

func configPath() (string, error) {
	return storagePath("config.json")
}

func scoresPath() (string, error) {
	return storagePath("scores.json")
}

func storagePath(name string) (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, "paneltui")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
