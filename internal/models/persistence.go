package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSaveDir is used when no save directory is configured.
const DefaultSaveDir = ".duel"

// Theme is the interface color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Preferences is the only state that survives between runs.
type Preferences struct {
	Theme Theme `yaml:"theme" json:"theme"`
}

// Store keeps preferences, generated images and exported reports on disk.
// Duel sessions themselves are never persisted.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultSaveDir
	}
	return &Store{Dir: dir}
}

// LoadPreferences reads preferences.yaml, defaulting to the dark theme when
// the file is missing.
func (s *Store) LoadPreferences() (*Preferences, error) {
	prefs := &Preferences{Theme: ThemeDark}
	data, err := os.ReadFile(filepath.Join(s.Dir, "preferences.yaml"))
	if errors.Is(err, os.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}
	if prefs.Theme != ThemeLight {
		prefs.Theme = ThemeDark
	}
	return prefs, nil
}

// SavePreferences writes preferences.yaml.
func (s *Store) SavePreferences(p *Preferences) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, "preferences.yaml"), data, 0644)
}

// SaveImage writes a generated image under images/ and returns its path,
// which serves as the message's image handle.
func (s *Store) SaveImage(messageID string, img *Image) (string, error) {
	dir := filepath.Join(s.Dir, "images")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, messageID+imageExt(img.MIMEType))
	if err := os.WriteFile(path, img.Data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// SaveReport writes a plain-text report under reports/ and returns its path.
func (s *Store) SaveReport(name, content string) (string, error) {
	dir := filepath.Join(s.Dir, "reports")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func imageExt(mime string) string {
	switch strings.ToLower(mime) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
