package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/teletext-cli/internal/alert"
	"github.com/glabrego/teletext-cli/internal/api"
	"github.com/glabrego/teletext-cli/internal/app"
)

type Service interface {
	Refresh(ctx context.Context) (api.ArticlesResponse, error)
	LoadSettings(ctx context.Context) (api.Settings, app.SettingsSource, error)
	PushSettings(ctx context.Context, settings api.Settings) error
	Feeds(ctx context.Context) (app.FeedStatus, error)
	AddFeed(ctx context.Context, url string) error
	RemoveFeed(ctx context.Context, url string) error
	DiscoverFeeds(ctx context.Context, url string) ([]api.DiscoveredFeed, error)
}

type Alerter interface {
	RequestPermission(ctx context.Context) bool
	Alerts(ctx context.Context, matches []alert.Match) int
}

type RefreshSuccessMsg struct {
	Response api.ArticlesResponse
	Duration time.Duration
	Source   string
}

type RefreshErrorMsg struct {
	Err      error
	Duration time.Duration
	Source   string
}

type SettingsLoadedMsg struct {
	Settings api.Settings
	Source   app.SettingsSource
	Err      error
}

type SettingsPushedMsg struct {
	Err error
}

type FeedsLoadedMsg struct {
	Status app.FeedStatus
}

type FeedsErrorMsg struct {
	Err error
}

type FeedActionSuccessMsg struct {
	Status string
}

type FeedActionErrorMsg struct {
	Err error
}

type DiscoverSuccessMsg struct {
	Site  string
	Feeds []api.DiscoveredFeed
}

type OpenURLSuccessMsg struct {
	Status string
	URL    string
	Opened bool
}

type OpenURLErrorMsg struct {
	Err error
}

type PermissionMsg struct {
	Granted bool
}

type AlertsSentMsg struct {
	Count int
}

func RefreshCmd(service Service, source string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		start := time.Now()

		resp, err := service.Refresh(ctx)
		if err != nil {
			return RefreshErrorMsg{Err: err, Duration: time.Since(start), Source: source}
		}
		return RefreshSuccessMsg{Response: resp, Duration: time.Since(start), Source: source}
	}
}

func LoadSettingsCmd(service Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		settings, source, err := service.LoadSettings(ctx)
		return SettingsLoadedMsg{Settings: settings, Source: source, Err: err}
	}
}

func PushSettingsCmd(service Service, settings api.Settings) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return SettingsPushedMsg{Err: service.PushSettings(ctx, settings)}
	}
}

func LoadFeedsCmd(service Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		status, err := service.Feeds(ctx)
		if err != nil {
			return FeedsErrorMsg{Err: err}
		}
		return FeedsLoadedMsg{Status: status}
	}
}

func AddFeedCmd(service Service, url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := service.AddFeed(ctx, url); err != nil {
			return FeedActionErrorMsg{Err: err}
		}
		return FeedActionSuccessMsg{Status: "FEED ADDED"}
	}
}

func RemoveFeedCmd(service Service, url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := service.RemoveFeed(ctx, url); err != nil {
			return FeedActionErrorMsg{Err: err}
		}
		return FeedActionSuccessMsg{Status: "FEED REMOVED"}
	}
}

func DiscoverFeedsCmd(service Service, site string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		feeds, err := service.DiscoverFeeds(ctx, site)
		if err != nil {
			return FeedActionErrorMsg{Err: err}
		}
		return DiscoverSuccessMsg{Site: site, Feeds: feeds}
	}
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "OPENED IN BROWSER", URL: url, Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "NO BROWSER, URL COPIED", URL: url}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open URL or copy to clipboard")}
	}
}

func CopyURLCmd(url string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "URL COPIED", URL: url}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not copy URL to clipboard")}
	}
}

func RequestPermissionCmd(alerter Alerter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return PermissionMsg{Granted: alerter.RequestPermission(ctx)}
	}
}

func SendAlertsCmd(alerter Alerter, matches []alert.Match) tea.Cmd {
	if len(matches) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return AlertsSentMsg{Count: alerter.Alerts(ctx, matches)}
	}
}
