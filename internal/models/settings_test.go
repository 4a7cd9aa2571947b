package models

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLimitsAreMonotonic(t *testing.T) {
	for tier := MinTier; tier < MaxTier; tier++ {
		if ExclusionLimit(tier) <= ExclusionLimit(tier+1) {
			t.Errorf("exclusion limit must strictly decrease: tier %d=%d, tier %d=%d",
				tier, ExclusionLimit(tier), tier+1, ExclusionLimit(tier+1))
		}
		if FavoriteThemeLimit(tier) >= FavoriteThemeLimit(tier+1) {
			t.Errorf("favorite theme limit must strictly increase: tier %d=%d, tier %d=%d",
				tier, FavoriteThemeLimit(tier), tier+1, FavoriteThemeLimit(tier+1))
		}
	}
}

func TestMetaphorRanges(t *testing.T) {
	want := map[int]MetaphorRange{
		1: {0, 3, 0, ""}, 2: {4, 6, 4, ""}, 3: {7, 9, 7, ""}, 4: {10, 15, 10, ""}, 5: {16, 20, 16, ""},
	}
	for tier, w := range want {
		got := MetaphorRangeFor(tier)
		got.Label = ""
		if got != w {
			t.Errorf("tier %d: expected %+v, got %+v", tier, w, got)
		}
	}
}

func TestSetTierClampsAndResets(t *testing.T) {
	s := NewSettings(1)
	for i := 0; i < 8; i++ {
		if !s.ToggleExcludedTopic(ExcludableTopics[i]) {
			t.Fatalf("toggle %d rejected", i)
		}
	}
	s.ToggleFavoriteTheme("Animale")
	_ = s.SetMetaphorLevel(3)

	s.SetTier(4)

	if diff := cmp.Diff(ExcludableTopics[:5], s.ExcludedTopics); diff != "" {
		t.Errorf("excluded topics not trimmed in order (-want +got):\n%s", diff)
	}
	if len(s.FavoriteThemes) != 0 {
		t.Errorf("favorite themes must be cleared, got %v", s.FavoriteThemes)
	}
	if s.MetaphorLevel != 10 {
		t.Errorf("expected metaphor level reset to 10, got %d", s.MetaphorLevel)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("settings invalid after SetTier: %v", err)
	}
}

func TestSetTierIgnoresInvalidTier(t *testing.T) {
	s := NewSettings(2)
	s.SetTier(9)
	if s.Tier != 2 {
		t.Errorf("expected tier to stay 2, got %d", s.Tier)
	}
}

func TestExclusionLimitAtTierFive(t *testing.T) {
	s := NewSettings(5)
	for i := 0; i < 3; i++ {
		s.ToggleExcludedTopic(ExcludableTopics[i])
	}
	if s.ToggleExcludedTopic(ExcludableTopics[3]) {
		t.Error("fourth topic must be rejected at tier 5")
	}
	if len(s.ExcludedTopics) != 3 {
		t.Errorf("expected 3 excluded topics, got %d", len(s.ExcludedTopics))
	}
}

func TestToggleIsIdempotentPairwise(t *testing.T) {
	s := NewSettings(3)
	s.ToggleExcludedTopic("Cosmologie")
	s.ToggleExcludedTopic("Cosmologie")
	if len(s.ExcludedTopics) != 0 {
		t.Errorf("double toggle must restore empty set, got %v", s.ExcludedTopics)
	}
	if s.ToggleExcludedTopic("") {
		t.Error("empty topic must be ignored")
	}
}

func TestFavoriteThemeLimit(t *testing.T) {
	for tier := MinTier; tier <= MaxTier; tier++ {
		s := NewSettings(tier)
		for _, theme := range FavoriteThemesFor(tier) {
			s.ToggleFavoriteTheme(theme)
		}
		if len(s.FavoriteThemes) != FavoriteThemeLimit(tier) {
			t.Errorf("tier %d: expected %d themes, got %d", tier, FavoriteThemeLimit(tier), len(s.FavoriteThemes))
		}
	}
}

func TestSetMetaphorLevel(t *testing.T) {
	s := NewSettings(3)
	for _, tc := range []struct {
		level int
		ok    bool
	}{{6, false}, {7, true}, {9, true}, {10, false}} {
		t.Run(fmt.Sprint(tc.level), func(t *testing.T) {
			err := s.SetMetaphorLevel(tc.level)
			if (err == nil) != tc.ok {
				t.Errorf("SetMetaphorLevel(%d) err=%v, want ok=%v", tc.level, err, tc.ok)
			}
		})
	}
	if s.MetaphorLevel != 9 {
		t.Errorf("expected last accepted level 9, got %d", s.MetaphorLevel)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	s := NewSettings(2)
	s.ToggleExcludedTopic("Cosmologie")
	c := s.Clone()
	c.ExcludedTopics[0] = "changed"
	if s.ExcludedTopics[0] != "Cosmologie" {
		t.Error("Clone shares excluded topics with original")
	}
}
