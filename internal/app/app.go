package app

import (
	"context"
	"fmt"

	"github.com/glabrego/teletext-cli/internal/api"
)

type BackendClient interface {
	FetchArticles(ctx context.Context) (api.ArticlesResponse, error)
	ListFeeds(ctx context.Context) ([]string, error)
	FeedHealth(ctx context.Context) (map[string]api.HealthRecord, error)
	AddFeed(ctx context.Context, url string) error
	RemoveFeed(ctx context.Context, url string) error
	DiscoverFeeds(ctx context.Context, url string) ([]api.DiscoveredFeed, error)
	GetSettings(ctx context.Context) (api.Settings, error)
	UpdateSettings(ctx context.Context, s api.Settings) (api.Settings, error)
	ImportOPML(ctx context.Context, content string) (int, error)
	ExportOPML(ctx context.Context) (string, error)
}

type LocalSettings interface {
	LoadSettings() (api.Settings, bool)
}

// SettingsSource says where resolved settings came from.
type SettingsSource string

const (
	SettingsLocal   SettingsSource = "local"
	SettingsServer  SettingsSource = "server"
	SettingsDefault SettingsSource = "default"
)

type Service struct {
	client BackendClient
	local  LocalSettings
}

func NewService(client BackendClient, local LocalSettings) *Service {
	return &Service{client: client, local: local}
}

func (s *Service) Refresh(ctx context.Context) (api.ArticlesResponse, error) {
	resp, err := s.client.FetchArticles(ctx)
	if err != nil {
		return api.ArticlesResponse{}, fmt.Errorf("fetch articles from backend: %w", err)
	}
	return resp, nil
}

// LoadSettings prefers the local override and falls back to the server
// copy, then to defaults. A server error only matters when there is no
// local copy, and even then defaults are returned alongside it.
func (s *Service) LoadSettings(ctx context.Context) (api.Settings, SettingsSource, error) {
	if s.local != nil {
		if settings, ok := s.local.LoadSettings(); ok {
			return settings, SettingsLocal, nil
		}
	}
	settings, err := s.client.GetSettings(ctx)
	if err != nil {
		return api.DefaultSettings(), SettingsDefault, fmt.Errorf("fetch settings from backend: %w", err)
	}
	return settings.Normalize(), SettingsServer, nil
}

// PushSettings mirrors settings to the backend.
func (s *Service) PushSettings(ctx context.Context, settings api.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if _, err := s.client.UpdateSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings to backend: %w", err)
	}
	return nil
}

type FeedStatus struct {
	Feeds  []string
	Health map[string]api.HealthRecord
}

func (s *Service) Feeds(ctx context.Context) (FeedStatus, error) {
	feeds, err := s.client.ListFeeds(ctx)
	if err != nil {
		return FeedStatus{}, fmt.Errorf("fetch feeds from backend: %w", err)
	}
	health, err := s.client.FeedHealth(ctx)
	if err != nil {
		return FeedStatus{}, fmt.Errorf("fetch feed health from backend: %w", err)
	}
	return FeedStatus{Feeds: feeds, Health: health}, nil
}

func (s *Service) AddFeed(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("feed URL is required")
	}
	if err := s.client.AddFeed(ctx, url); err != nil {
		return fmt.Errorf("add feed %s: %w", url, err)
	}
	return nil
}

func (s *Service) RemoveFeed(ctx context.Context, url string) error {
	if err := s.client.RemoveFeed(ctx, url); err != nil {
		return fmt.Errorf("remove feed %s: %w", url, err)
	}
	return nil
}

func (s *Service) DiscoverFeeds(ctx context.Context, url string) ([]api.DiscoveredFeed, error) {
	if url == "" {
		return nil, fmt.Errorf("site URL is required")
	}
	found, err := s.client.DiscoverFeeds(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("discover feeds at %s: %w", url, err)
	}
	return found, nil
}

func (s *Service) ImportOPML(ctx context.Context, content string) (int, error) {
	added, err := s.client.ImportOPML(ctx, content)
	if err != nil {
		return 0, fmt.Errorf("import opml: %w", err)
	}
	return added, nil
}

func (s *Service) ExportOPML(ctx context.Context) (string, error) {
	doc, err := s.client.ExportOPML(ctx)
	if err != nil {
		return "", fmt.Errorf("export opml: %w", err)
	}
	return doc, nil
}
