// Package view draws a reader state into a terminal frame. Everything here is
// a pure function of its arguments.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/teletext-cli/internal/reader"
	"github.com/glabrego/teletext-cli/internal/store"
	tuistate "github.com/glabrego/teletext-cli/internal/tui/state"
	tuitheme "github.com/glabrego/teletext-cli/internal/tui/theme"
)

// Context is the terminal-side input to a frame that does not live in the
// store: geometry, clock, theme and the rendered bubbles widgets.
type Context struct {
	Width  int
	Height int
	Now    time.Time
	Theme  tuitheme.Theme

	// Digits is the pending article number; empty hides the digit box.
	Digits      string
	Spinner     string
	FilterInput string
	ShortHelp   string
	FullHelp    string
	// DetailBody is the rendered detail viewport. When empty the detail page
	// is drawn from the top.
	DetailBody string

	Settings SettingsForm
	Feeds    FeedsForm
}

type Frame struct {
	Body  string
	Title string
}

// Render draws st. It never mutates st.
func Render(st *store.ViewState, ctx Context) Frame {
	th := ctx.Theme
	width := tuitheme.LayoutWidth(st.Settings.Layout, ctx.Width)

	parts := []string{
		header(st, ctx.Now, width, th),
		th.MetaLabel.Render(strings.Repeat("━", width)),
	}
	var body string
	switch st.Modal {
	case store.ModalSettings:
		body = th.Modal.Render(settingsModal(ctx.Settings, width-4, th))
	case store.ModalFeeds:
		body = th.Modal.Render(feedsModal(st.Feeds, st.FeedHealth, st.DiscoveredFeeds, ctx.Feeds, width-4, th))
	case store.ModalHelp:
		body = th.Modal.Render(helpModal(ctx.FullHelp, th))
	default:
		if st.View == store.ViewDetail {
			body = detailBody(st, ctx, width)
		} else {
			body = listBody(st, ctx, width)
		}
	}
	parts = append(parts, body, "")
	if status := statusLine(st, ctx, th); status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, th.Footer.Render(ctx.ShortHelp))

	out := strings.Join(parts, "\n")
	if ctx.Width > width {
		out = lipgloss.PlaceHorizontal(ctx.Width, lipgloss.Center, out)
	}
	return Frame{Body: out, Title: WindowTitle(st.UnreadCount)}
}

// WindowTitle shows the unread count in front of the app name.
func WindowTitle(unread int) string {
	if unread > 0 {
		return fmt.Sprintf("(%d) TELETEXT", unread)
	}
	return "TELETEXT"
}

func header(st *store.ViewState, now time.Time, width int, th tuitheme.Theme) string {
	if now.IsZero() {
		now = time.Now()
	}
	left := th.Header.Render("TELETEXT") + " " + th.PagePill.Render(pageLabel(st))
	right := th.Clock.Render(now.Format("Mon 02 Jan 15:04:05"))
	gap := max(1, width-visibleLen(left)-visibleLen(right))
	top := left + strings.Repeat(" ", gap) + right

	section := sectionLabel(st)
	unread := th.UnreadCount.Render(fmt.Sprintf("%d UNREAD", st.UnreadCount))
	gap = max(1, width-visibleLen(section)-visibleLen(unread))
	return top + "\n" + th.Section.Render(section) + strings.Repeat(" ", gap) + unread
}

func pageLabel(st *store.ViewState) string {
	switch {
	case st.View == store.ViewDetail:
		return "ARTICLE"
	case st.View == store.ViewBookmarks:
		return "SAVED"
	case st.Settings.InfiniteScroll:
		return "ALL"
	default:
		return fmt.Sprintf("P%d/%d", st.Page, st.TotalPages)
	}
}

func sectionLabel(st *store.ViewState) string {
	switch st.View {
	case store.ViewDetail:
		if st.SelectedArticle != nil && st.SelectedArticle.Source != "" {
			return strings.ToUpper(st.SelectedArticle.Source)
		}
		return "ARTICLE"
	case store.ViewBookmarks:
		return "BOOKMARKS"
	default:
		if st.FilterText != "" {
			return fmt.Sprintf("NEWS · FILTER %q", st.FilterText)
		}
		return "NEWS"
	}
}

func listBody(st *store.ViewState, ctx Context, width int) string {
	th := ctx.Theme
	if st.Loading && !st.Fetched {
		return th.StateLoad.Render("LOADING PAGES...")
	}
	slice, offset := reader.DisplayedSlice(st)
	if len(slice) == 0 {
		switch {
		case st.View == store.ViewBookmarks:
			return th.MetaLabel.Render("NO BOOKMARKS YET. PRESS b ON AN ARTICLE TO SAVE IT.")
		case st.FilterText != "":
			return th.MetaLabel.Render(fmt.Sprintf("NO ARTICLES MATCH %q", st.FilterText))
		default:
			return th.MetaLabel.Render("NO ARTICLES")
		}
	}
	active := reader.LocalHighlight(st)
	start, end := tuistate.CenteredWindow(len(slice), active, tuistate.ListHeight(ctx.Height, st.Notice != ""))
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, ArticleRow(RowParams{
			Article: slice[i],
			Number:  offset + i + 1,
			Now:     ctx.Now,
			Active:  i == active,
			Width:   width,
		}, th))
	}
	return strings.Join(rows, "\n")
}

func detailBody(st *store.ViewState, ctx Context, width int) string {
	if ctx.DetailBody != "" {
		return ctx.DetailBody
	}
	if st.SelectedArticle == nil {
		return ctx.Theme.MetaLabel.Render("NO ARTICLE SELECTED")
	}
	lines := DetailLines(*st.SelectedArticle, ctx.Now, width, ctx.Theme)
	if h := DetailHeight(ctx.Height, st.Notice != ""); len(lines) > h {
		lines = lines[:h]
	}
	return strings.Join(lines, "\n")
}

func DetailHeight(height int, hasNotice bool) int {
	return tuistate.ListHeight(height, hasNotice)
}

func statusLine(st *store.ViewState, ctx Context, th tuitheme.Theme) string {
	switch {
	case ctx.Digits != "":
		return th.Digits.Render("GO TO ARTICLE: " + ctx.Digits + "_")
	case st.FilterMode:
		input := ctx.FilterInput
		if input == "" {
			input = "/" + st.FilterText
		}
		return input
	case st.Notice != "":
		return th.Notice.Render(st.Notice)
	case st.Loading:
		return th.StateLoad.Render(strings.TrimSpace(ctx.Spinner + " LOADING"))
	}
	return ""
}
