package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/teletext-cli/internal/api"
)

type Theme struct {
	Name string

	Header      lipgloss.Style
	Clock       lipgloss.Style
	PagePill    lipgloss.Style
	Section     lipgloss.Style
	UnreadCount lipgloss.Style
	ActiveLine  lipgloss.Style
	Number      lipgloss.Style
	MetaLabel   lipgloss.Style
	MetaValue   lipgloss.Style
	Body        lipgloss.Style
	Footer      lipgloss.Style
	Notice      lipgloss.Style
	StateWarn   lipgloss.Style
	StateLoad   lipgloss.Style
	Digits      lipgloss.Style
	Modal       lipgloss.Style

	TitleUnread     lipgloss.Style
	TitleRead       lipgloss.Style
	TitleBookmarked lipgloss.Style
}

type palette struct {
	text, dim, accent, secondary, warn, load, surface, mark lipgloss.Color
}

var palettes = map[string]palette{
	"dark": {
		text: "#ffffff", dim: "#8a8a8a", accent: "#ffff00", secondary: "#00ffff",
		warn: "#ff3b3b", load: "#ff00ff", surface: "#1f3bff", mark: "#00ff00",
	},
	"light": {
		text: "#111111", dim: "#6b6b6b", accent: "#0b3d91", secondary: "#007a7a",
		warn: "#b00020", load: "#8a2be2", surface: "#d7e3ff", mark: "#1b7f1b",
	},
	"amber": {
		text: "#ffb000", dim: "#a66f00", accent: "#ffd066", secondary: "#ffc233",
		warn: "#ff5f00", load: "#ffcc66", surface: "#4a3000", mark: "#ffe099",
	},
	"green": {
		text: "#33ff33", dim: "#1a8c1a", accent: "#99ff99", secondary: "#66ff66",
		warn: "#ccff00", load: "#b3ffb3", surface: "#003b00", mark: "#ccffcc",
	},
	"blue": {
		text: "#e6f0ff", dim: "#7f9cc9", accent: "#ffff66", secondary: "#66e0ff",
		warn: "#ff8080", load: "#c6a0ff", surface: "#0033aa", mark: "#80ff80",
	},
	"white": {
		text: "#ffffff", dim: "#9e9e9e", accent: "#ffffff", secondary: "#dddddd",
		warn: "#ffffff", load: "#cccccc", surface: "#444444", mark: "#ffffff",
	},
}

func Default() Theme {
	return ForName("dark")
}

// ForName builds the named theme. "system" follows the terminal background
// and unknown names fall back to dark.
func ForName(name string) Theme {
	if name == "system" {
		name = "light"
		if lipgloss.HasDarkBackground() {
			name = "dark"
		}
	}
	p, ok := palettes[name]
	if !ok {
		name = "dark"
		p = palettes[name]
	}
	return build(name, p)
}

func build(name string, p palette) Theme {
	return Theme{
		Name:        name,
		Header:      lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Clock:       lipgloss.NewStyle().Foreground(p.secondary),
		PagePill:    lipgloss.NewStyle().Foreground(p.text).Background(p.surface).Padding(0, 1),
		Section:     lipgloss.NewStyle().Bold(true).Foreground(p.secondary),
		UnreadCount: lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		ActiveLine:  lipgloss.NewStyle().Background(p.surface).Foreground(p.text),
		Number:      lipgloss.NewStyle().Foreground(p.accent),
		MetaLabel:   lipgloss.NewStyle().Foreground(p.dim),
		MetaValue:   lipgloss.NewStyle().Foreground(p.secondary),
		Body:        lipgloss.NewStyle().Foreground(p.text),
		Footer:      lipgloss.NewStyle().Foreground(p.dim),
		Notice:      lipgloss.NewStyle().Bold(true).Foreground(p.mark),
		StateWarn:   lipgloss.NewStyle().Foreground(p.warn),
		StateLoad:   lipgloss.NewStyle().Foreground(p.load),
		Digits: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent).
			Background(p.surface).
			Padding(0, 1),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(p.secondary).
			Padding(0, 1),
		TitleUnread:     lipgloss.NewStyle().Bold(true).Foreground(p.text),
		TitleRead:       lipgloss.NewStyle().Foreground(p.dim),
		TitleBookmarked: lipgloss.NewStyle().Bold(true).Foreground(p.mark),
	}
}

func (t Theme) StyleArticleTitle(a api.Article, title string) string {
	if title == "" {
		return title
	}
	switch {
	case a.Bookmarked:
		return t.TitleBookmarked.Render(title)
	case a.Read:
		return t.TitleRead.Render(title)
	default:
		return t.TitleUnread.Render(title)
	}
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}

// LayoutWidth is the content width for a layout setting on a terminal
// termWidth columns wide.
func LayoutWidth(layout string, termWidth int) int {
	var limit int
	switch layout {
	case "compact":
		limit = 60
	case "wide":
		limit = 100
	case "full":
		limit = 0
	default:
		limit = 80
	}
	if termWidth <= 0 {
		if limit == 0 {
			return 80
		}
		return limit
	}
	if limit == 0 || termWidth < limit {
		return termWidth
	}
	return limit
}
