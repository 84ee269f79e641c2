package view

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/teletext-cli/internal/api"
	tuitheme "github.com/glabrego/teletext-cli/internal/tui/theme"
)

var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

type RowParams struct {
	Article api.Article
	// Number is the 1-based position a digit jump selects.
	Number int
	Now    time.Time
	Active bool
	Width  int
}

// ArticleRow renders one list line: number, state marker, title and a
// right-aligned "source, age" label.
func ArticleRow(p RowParams, th tuitheme.Theme) string {
	marker := " "
	switch {
	case p.Article.Bookmarked:
		marker = "★"
	case !p.Article.Read:
		marker = "•"
	}
	prefix := th.Number.Render(fmt.Sprintf("%3d", p.Number)) + " " + marker + " "

	label := DateLabel(p.Now, p.Article.Date)
	if src := strings.TrimSpace(p.Article.Source); src != "" {
		label = truncateRunes(strings.ToUpper(src), 18) + "  " + label
	}
	label = strings.TrimSpace(label)

	available := p.Width - visibleLen(prefix) - 1 - visibleLen(label)
	if available < 1 {
		available = 1
	}
	title := strings.TrimSpace(p.Article.Title)
	if title == "" {
		title = "(untitled)"
	}
	title = truncateRunes(title, available)
	gap := p.Width - visibleLen(prefix) - visibleLen(title) - visibleLen(label)
	if gap < 1 {
		gap = 1
	}
	line := prefix + th.StyleArticleTitle(p.Article, title) + strings.Repeat(" ", gap) + th.MetaLabel.Render(label)
	return th.RenderActiveLine(p.Active, line)
}

// ParseDate reads the backend date string, which is not in a single format
// across feeds.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateLabel is a relative age when the date parses, else the raw text.
func DateLabel(now time.Time, raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return truncateRunes(strings.TrimSpace(raw), 16)
	}
	return RelativeTimeLabel(now, t)
}

func RelativeTimeLabel(now, then time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	if then.IsZero() {
		return "unknown"
	}
	if then.After(now) {
		return "just now"
	}
	d := now.Sub(then)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	}
	return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

func visibleLen(s string) int {
	return lipgloss.Width(s)
}
