package view

import (
	"strings"
	"time"

	"github.com/glabrego/teletext-cli/internal/api"
	tuitheme "github.com/glabrego/teletext-cli/internal/tui/theme"
)

func DetailLines(a api.Article, now time.Time, width int, th tuitheme.Theme) []string {
	lines := make([]string, 0, 24)
	title := strings.TrimSpace(a.Title)
	if title == "" {
		title = "(untitled)"
	}
	for _, line := range wrapText(title, width) {
		lines = append(lines, th.Header.Render(line))
	}
	lines = append(lines, th.MetaLabel.Render(strings.Repeat("═", max(1, min(width, visibleLen(title))))))

	meta := func(label, value string) {
		if value = strings.TrimSpace(value); value == "" {
			return
		}
		for i, line := range wrapText(value, max(1, width-8)) {
			head := "        "
			if i == 0 {
				head = th.MetaLabel.Render(padRight(label, 8))
			}
			lines = append(lines, head+th.MetaValue.Render(line))
		}
	}
	meta("SOURCE", a.Source)
	if a.Date != "" {
		date := a.Date
		if t, ok := ParseDate(a.Date); ok {
			date = t.Format("Mon 02 Jan 2006 15:04") + " (" + RelativeTimeLabel(now, t) + ")"
		}
		meta("DATE", date)
	}
	meta("URL", a.URL)

	flags := make([]string, 0, 2)
	if a.Bookmarked {
		flags = append(flags, "BOOKMARKED")
	}
	if a.Read {
		flags = append(flags, "READ")
	}
	meta("STATE", strings.Join(flags, " · "))

	if body := SummaryLines(a.Summary, width); len(body) > 0 {
		lines = append(lines, "")
		for _, line := range body {
			lines = append(lines, th.Body.Render(line))
		}
	}
	return lines
}

func padRight(s string, n int) string {
	if w := visibleLen(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}
