package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glabrego/teletext-cli/internal/api"
	tuitheme "github.com/glabrego/teletext-cli/internal/tui/theme"
)

type SettingsField int

const (
	FieldTheme SettingsField = iota
	FieldLayout
	FieldFont
	FieldPerPage
	FieldInfiniteScroll
	FieldNotifications
	FieldAutoRefresh
	FieldKeywords
	FieldSave
)

const SettingsFieldCount = int(FieldSave) + 1

func (f SettingsField) Label() string {
	switch f {
	case FieldTheme:
		return "THEME"
	case FieldLayout:
		return "LAYOUT"
	case FieldFont:
		return "FONT"
	case FieldPerPage:
		return "PER PAGE"
	case FieldInfiniteScroll:
		return "INFINITE SCROLL"
	case FieldNotifications:
		return "NOTIFICATIONS"
	case FieldAutoRefresh:
		return "AUTO REFRESH"
	case FieldKeywords:
		return "KEYWORD ALERTS"
	case FieldSave:
		return "SAVE"
	default:
		return ""
	}
}

func SettingValue(s api.Settings, f SettingsField) string {
	switch f {
	case FieldTheme:
		return s.Theme
	case FieldLayout:
		return s.Layout
	case FieldFont:
		return s.Font
	case FieldPerPage:
		return strconv.Itoa(s.ArticlesPerPage)
	case FieldInfiniteScroll:
		return onOff(s.InfiniteScroll)
	case FieldNotifications:
		return onOff(s.NotificationsEnabled)
	case FieldAutoRefresh:
		if s.AutoRefreshSeconds <= 0 {
			return "off"
		}
		return fmt.Sprintf("%ds", s.AutoRefreshSeconds)
	case FieldKeywords:
		if len(s.KeywordAlerts) == 0 {
			return "(none)"
		}
		return strings.Join(s.KeywordAlerts, ", ")
	default:
		return ""
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// SettingsForm is the editable copy of settings shown by the dialog.
type SettingsForm struct {
	Draft  api.Settings
	Cursor int
	Input  string
}

func settingsModal(form SettingsForm, width int, th tuitheme.Theme) string {
	lines := []string{th.Section.Render("SETTINGS"), ""}
	for i := 0; i < SettingsFieldCount; i++ {
		f := SettingsField(i)
		active := i == form.Cursor
		if f == FieldSave {
			lines = append(lines, "", th.RenderActiveLine(active, th.Header.Render("[ SAVE ]")))
			continue
		}
		value := SettingValue(form.Draft, f)
		if f == FieldKeywords && active && form.Input != "" {
			value = form.Input
		} else {
			value = truncateRunes(value, max(8, width-22))
		}
		line := th.MetaLabel.Render(padRight(f.Label(), 18)) + th.MetaValue.Render(value)
		lines = append(lines, th.RenderActiveLine(active, line))
	}
	lines = append(lines, "", th.Footer.Render("↑/↓ move  ←/→ change  enter edit/save  esc close"))
	return strings.Join(lines, "\n")
}

// FeedsForm is the feed manager's cursor and pending input. The cursor spans
// the subscribed feeds first, then the discovered ones.
type FeedsForm struct {
	Cursor   int
	Disabled map[string]struct{}
	// Input is the rendered text input while adding or discovering, with
	// InputLabel naming which.
	Input      string
	InputLabel string
}

func feedsModal(feeds []string, health map[string]api.HealthRecord, discovered []api.DiscoveredFeed, form FeedsForm, width int, th tuitheme.Theme) string {
	lines := []string{th.Section.Render(fmt.Sprintf("FEEDS (%d)", len(feeds))), ""}
	if len(feeds) == 0 {
		lines = append(lines, th.MetaLabel.Render("NO FEEDS"))
	}
	for i, url := range feeds {
		mark := "[x]"
		if _, off := form.Disabled[url]; off {
			mark = "[ ]"
		}
		h, known := health[url]
		status := HealthLabel(h, known)
		available := max(8, width-visibleLen(status)-6)
		line := mark + " " + truncateRunes(url, available)
		gap := max(1, width-visibleLen(line)-visibleLen(status))
		styled := th.MetaLabel.Render(status)
		if h.ErrorCount > 0 {
			styled = th.StateWarn.Render(status)
		}
		lines = append(lines, th.RenderActiveLine(i == form.Cursor, line+strings.Repeat(" ", gap)+styled))
	}
	if len(discovered) > 0 {
		lines = append(lines, "", th.Section.Render("DISCOVERED"))
		for i, f := range discovered {
			label := f.URL
			if t := strings.TrimSpace(f.Title); t != "" {
				label = t + "  " + f.URL
			}
			lines = append(lines, th.RenderActiveLine(len(feeds)+i == form.Cursor, "  + "+truncateRunes(label, max(8, width-4))))
		}
	}
	if form.Input != "" {
		lines = append(lines, "", th.MetaLabel.Render(form.InputLabel)+" "+form.Input)
	}
	lines = append(lines, "", th.Footer.Render("space toggle  x remove  a add  d discover  enter add found  esc close"))
	return strings.Join(lines, "\n")
}

// HealthLabel summarizes a feed health record in a few words.
func HealthLabel(h api.HealthRecord, known bool) string {
	if !known {
		return "NO DATA"
	}
	if h.ErrorCount > 0 {
		return fmt.Sprintf("ERR x%d", h.ErrorCount)
	}
	return fmt.Sprintf("OK %d", h.ArticleCount)
}

func helpModal(fullHelp string, th tuitheme.Theme) string {
	lines := []string{
		th.Section.Render("HELP"),
		"",
		fullHelp,
		"",
		th.MetaLabel.Render("Type an article number and press enter, or wait, to open it."),
		th.Footer.Render("esc or ? to close"),
	}
	return strings.Join(lines, "\n")
}
