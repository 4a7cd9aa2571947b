package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestPreferencesYAML(t *testing.T) {
	store := NewStore(t.TempDir())

	prefs, err := store.LoadPreferences()
	if err != nil {
		t.Fatalf("Failed to load default preferences: %v", err)
	}
	if prefs.Theme != ThemeDark {
		t.Errorf("Expected default theme %s, got %s", ThemeDark, prefs.Theme)
	}

	prefs.Theme = prefs.Theme.Toggle()
	if err := store.SavePreferences(prefs); err != nil {
		t.Fatalf("Failed to save preferences: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir, "preferences.yaml"))
	if err != nil {
		t.Fatalf("Failed to read preferences file: %v", err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal preferences: %v", err)
	}
	if raw["theme"] != "light" {
		t.Errorf("Expected theme light on disk, got %q", raw["theme"])
	}

	loaded, err := store.LoadPreferences()
	if err != nil {
		t.Fatalf("Failed to reload preferences: %v", err)
	}
	if loaded.Theme != ThemeLight {
		t.Errorf("Expected reloaded theme light, got %s", loaded.Theme)
	}
}

func TestPreferencesUnknownThemeFallsBackToDark(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "preferences.yaml"), []byte("theme: sepia\n"), 0644); err != nil {
		t.Fatal(err)
	}
	prefs, err := NewStore(dir).LoadPreferences()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prefs.Theme != ThemeDark {
		t.Errorf("Expected dark, got %s", prefs.Theme)
	}
}

func TestSaveImageAndReport(t *testing.T) {
	store := NewStore(t.TempDir())

	path, err := store.SaveImage("msg-1-1", &Image{MIMEType: "image/png", Data: []byte{1, 2, 3}})
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if filepath.Ext(path) != ".png" {
		t.Errorf("Expected .png extension, got %s", path)
	}

	path, err = store.SaveReport("../escape.txt", "raport")
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(store.Dir, "reports") {
		t.Errorf("Report escaped reports dir: %s", path)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "raport" {
		t.Errorf("Expected report content, got %q", got)
	}
}

func TestMessageIDEncodesTime(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	id := NewMessageID(at, 7)
	if id != "msg-1700000000123-7" {
		t.Fatalf("unexpected id %s", id)
	}
	got, err := MessageTime(id)
	if err != nil {
		t.Fatalf("MessageTime: %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("Expected %v, got %v", at, got)
	}
	if _, err := MessageTime("bogus"); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestDuelMessagesFiltersSystemMessages(t *testing.T) {
	score := 8
	items := []HistoryItem{
		&DuelMessage{ID: "a", Sequence: 1, Author: AuthorPlayer, Text: "Eu sunt focul", Score: &score},
		&SystemMessage{ID: "b", Sequence: 2, Headline: "x"},
		&DuelMessage{ID: "c", Sequence: 3, Author: AuthorAI, Text: "Eu sunt ploaia"},
	}
	got := DuelMessages(items)
	if len(got) != 2 {
		t.Fatalf("expected 2 duel messages, got %d", len(got))
	}
	*got[0].Score = 1
	if score != 8 {
		t.Error("DuelMessages must return copies")
	}
	if CompareCreation(items[0], items[2]) >= 0 {
		t.Error("expected first item to sort before third")
	}
}

func TestSortedExamples(t *testing.T) {
	m := &DuelMessage{ImprovedExamples: []ImprovedExample{{9, "c"}, {6, "a"}, {8, "b"}}}
	want := []ImprovedExample{{6, "a"}, {8, "b"}, {9, "c"}}
	if diff := cmp.Diff(want, m.SortedExamples()); diff != "" {
		t.Errorf("SortedExamples mismatch (-want +got):\n%s", diff)
	}
	if m.ImprovedExamples[0].Score != 9 {
		t.Error("SortedExamples must not reorder the message")
	}
}

func TestLookupReason(t *testing.T) {
	if len(ChallengeReasons) != 10 {
		t.Fatalf("expected 10 predefined reasons, got %d", len(ChallengeReasons))
	}
	r, ok := LookupReason(ReasonCliche)
	if !ok || r.Title != "Clișeu uzat" {
		t.Errorf("unexpected lookup result %+v %v", r, ok)
	}
	if _, ok := LookupReason("nope"); ok {
		t.Error("unknown code must not resolve")
	}
}
