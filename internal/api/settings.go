package api

import (
	"fmt"
	"strings"
)

const (
	MinArticlesPerPage     = 4
	MaxArticlesPerPage     = 20
	DefaultArticlesPerPage = 8
)

var (
	Themes  = []string{"dark", "light", "system", "amber", "green", "blue", "white"}
	Fonts   = []string{"default", "vt323", "ibm-plex", "fira-code", "space-mono", "jetbrains", "press-start", "share-tech"}
	Layouts = []string{"compact", "default", "wide", "full"}
)

type Settings struct {
	Theme                string   `json:"theme"`
	Font                 string   `json:"font"`
	Layout               string   `json:"layout"`
	ArticlesPerPage      int      `json:"articles_per_page"`
	InfiniteScroll       bool     `json:"infinite_scroll"`
	AutoRefreshSeconds   int      `json:"auto_refresh_seconds"`
	NotificationsEnabled bool     `json:"notifications_enabled"`
	KeywordAlerts        []string `json:"keyword_alerts"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:           "dark",
		Font:            "default",
		Layout:          "default",
		ArticlesPerPage: DefaultArticlesPerPage,
		KeywordAlerts:   []string{},
	}
}

// ClampPerPage maps any value into the supported page-size range; zero means default.
func ClampPerPage(n int) int {
	if n == 0 {
		return DefaultArticlesPerPage
	}
	if n < MinArticlesPerPage {
		return MinArticlesPerPage
	}
	if n > MaxArticlesPerPage {
		return MaxArticlesPerPage
	}
	return n
}

// Normalize replaces unknown enum values with defaults and clamps numeric fields.
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if !contains(Themes, s.Theme) {
		s.Theme = d.Theme
	}
	if !contains(Fonts, s.Font) {
		s.Font = d.Font
	}
	if !contains(Layouts, s.Layout) {
		s.Layout = d.Layout
	}
	s.ArticlesPerPage = ClampPerPage(s.ArticlesPerPage)
	if s.AutoRefreshSeconds < 0 {
		s.AutoRefreshSeconds = 0
	}
	keywords := make([]string, 0, len(s.KeywordAlerts))
	for _, kw := range s.KeywordAlerts {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	s.KeywordAlerts = keywords
	return s
}

func (s Settings) Validate() error {
	if !contains(Themes, s.Theme) {
		return fmt.Errorf("invalid theme %q, must be one of: %s", s.Theme, strings.Join(Themes, ", "))
	}
	if !contains(Fonts, s.Font) {
		return fmt.Errorf("invalid font %q, must be one of: %s", s.Font, strings.Join(Fonts, ", "))
	}
	if !contains(Layouts, s.Layout) {
		return fmt.Errorf("invalid layout %q, must be one of: %s", s.Layout, strings.Join(Layouts, ", "))
	}
	if s.ArticlesPerPage < MinArticlesPerPage || s.ArticlesPerPage > MaxArticlesPerPage {
		return fmt.Errorf("articles_per_page must be between %d and %d, got %d", MinArticlesPerPage, MaxArticlesPerPage, s.ArticlesPerPage)
	}
	if s.AutoRefreshSeconds < 0 {
		return fmt.Errorf("auto_refresh_seconds must be >= 0, got %d", s.AutoRefreshSeconds)
	}
	return nil
}

// Next returns the option following current in options, wrapping around.
func Next(options []string, current string) string {
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
