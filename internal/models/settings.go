package models

import (
	"fmt"
	"slices"
)

const (
	MinTier = 1
	MaxTier = 5

	// DefaultTier is the tier preselected on the dashboard.
	DefaultTier = 3
)

// MetaphorRange is the slice of the 0-20 metaphor scale a tier may use.
type MetaphorRange struct {
	Min     int    `yaml:"min" json:"min"`
	Max     int    `yaml:"max" json:"max"`
	Default int    `yaml:"default" json:"default"`
	Label   string `yaml:"label" json:"label"`
}

// Contains reports whether v lies inside the range.
func (r MetaphorRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

var exclusionLimits = map[int]int{1: 11, 2: 9, 3: 7, 4: 5, 5: 3}

var favoriteThemeLimits = map[int]int{1: 1, 2: 3, 3: 5, 4: 7, 5: 10}

var metaphorRanges = map[int]MetaphorRange{
	1: {Min: 0, Max: 3, Default: 0, Label: "Deloc Metaforic ↔ Puțin"},
	2: {Min: 4, Max: 6, Default: 4, Label: "Simplu ↔ Moderat"},
	3: {Min: 7, Max: 9, Default: 7, Label: "Moderat ↔ Abstract"},
	4: {Min: 10, Max: 15, Default: 10, Label: "Abstract ↔ Foarte Creativ"},
	5: {Min: 16, Max: 20, Default: 16, Label: "Poetic ↔ Absolut Metaforic"},
}

// ValidTier reports whether t is one of the five difficulty tiers.
func ValidTier(t int) bool {
	return t >= MinTier && t <= MaxTier
}

// ExclusionLimit is how many topics a player may forbid at tier t.
// Harder tiers tolerate fewer forbidden topics.
func ExclusionLimit(t int) int {
	return exclusionLimits[t]
}

// FavoriteThemeLimit is how many favorite themes a player may pick at tier t.
func FavoriteThemeLimit(t int) int {
	return favoriteThemeLimits[t]
}

// MetaphorRangeFor returns the metaphor range of tier t. Unknown tiers get
// the zero range.
func MetaphorRangeFor(t int) MetaphorRange {
	return metaphorRanges[t]
}

// Settings is the configuration chosen on the dashboard before a duel starts.
type Settings struct {
	Tier           int      `yaml:"tier" json:"tier"`
	ExcludedTopics []string `yaml:"excluded_topics" json:"excludedTopics"`
	FavoriteThemes []string `yaml:"favorite_themes" json:"favoriteThemes"`
	MetaphorLevel  int      `yaml:"metaphor_level" json:"metaphorLevel"`
}

// NewSettings returns empty settings for tier t with the tier's default
// metaphor level. An invalid tier falls back to DefaultTier.
func NewSettings(t int) Settings {
	if !ValidTier(t) {
		t = DefaultTier
	}
	return Settings{
		Tier:           t,
		ExcludedTopics: []string{},
		FavoriteThemes: []string{},
		MetaphorLevel:  MetaphorRangeFor(t).Default,
	}
}

// SetTier switches the difficulty tier. Excess excluded topics are dropped
// from the end of the selection, favorite themes are cleared and the metaphor
// level is reset to the new tier's default. Invalid tiers are ignored.
func (s *Settings) SetTier(t int) {
	if !ValidTier(t) {
		return
	}
	s.Tier = t
	if limit := ExclusionLimit(t); len(s.ExcludedTopics) > limit {
		s.ExcludedTopics = slices.Clone(s.ExcludedTopics[:limit])
	}
	s.FavoriteThemes = []string{}
	s.MetaphorLevel = MetaphorRangeFor(t).Default
}

// ToggleExcludedTopic removes topic if selected, otherwise adds it while the
// tier limit allows. It reports whether the selection changed.
func (s *Settings) ToggleExcludedTopic(topic string) bool {
	var changed bool
	s.ExcludedTopics, changed = toggleBounded(s.ExcludedTopics, topic, ExclusionLimit(s.Tier))
	return changed
}

// ToggleFavoriteTheme is ToggleExcludedTopic for favorite themes.
func (s *Settings) ToggleFavoriteTheme(theme string) bool {
	var changed bool
	s.FavoriteThemes, changed = toggleBounded(s.FavoriteThemes, theme, FavoriteThemeLimit(s.Tier))
	return changed
}

// SetMetaphorLevel accepts v only when it lies inside the current tier's range.
func (s *Settings) SetMetaphorLevel(v int) error {
	r := MetaphorRangeFor(s.Tier)
	if !r.Contains(v) {
		return fmt.Errorf("metaphor level %d outside tier %d range [%d,%d]", v, s.Tier, r.Min, r.Max)
	}
	s.MetaphorLevel = v
	return nil
}

// Validate checks every tier-dependent invariant.
func (s Settings) Validate() error {
	if !ValidTier(s.Tier) {
		return fmt.Errorf("tier %d outside [%d,%d]", s.Tier, MinTier, MaxTier)
	}
	if n, limit := len(s.ExcludedTopics), ExclusionLimit(s.Tier); n > limit {
		return fmt.Errorf("%d excluded topics exceed tier %d limit of %d", n, s.Tier, limit)
	}
	if n, limit := len(s.FavoriteThemes), FavoriteThemeLimit(s.Tier); n > limit {
		return fmt.Errorf("%d favorite themes exceed tier %d limit of %d", n, s.Tier, limit)
	}
	if r := MetaphorRangeFor(s.Tier); !r.Contains(s.MetaphorLevel) {
		return fmt.Errorf("metaphor level %d outside tier %d range [%d,%d]", s.MetaphorLevel, s.Tier, r.Min, r.Max)
	}
	return nil
}

// Clone returns a copy that shares no slices with s.
func (s Settings) Clone() Settings {
	c := s
	c.ExcludedTopics = slices.Clone(s.ExcludedTopics)
	c.FavoriteThemes = slices.Clone(s.FavoriteThemes)
	if c.ExcludedTopics == nil {
		c.ExcludedTopics = []string{}
	}
	if c.FavoriteThemes == nil {
		c.FavoriteThemes = []string{}
	}
	return c
}

func toggleBounded(list []string, item string, limit int) ([]string, bool) {
	if item == "" {
		return list, false
	}
	if i := slices.Index(list, item); i >= 0 {
		return slices.Delete(slices.Clone(list), i, i+1), true
	}
	if len(list) >= limit {
		return list, false
	}
	return append(slices.Clone(list), item), true
}
