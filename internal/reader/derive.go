package reader

import (
	"strings"

	"github.com/glabrego/teletext-cli/internal/api"
	"github.com/glabrego/teletext-cli/internal/store"
)

// Visible drops articles whose source feed is disabled. With nothing
// disabled the input slice is returned as is.
func Visible(all []api.Article, disabled map[string]struct{}) []api.Article {
	if len(disabled) == 0 {
		return all
	}
	out := make([]api.Article, 0, len(all))
	for _, a := range all {
		if _, off := disabled[a.SourceURL]; off {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Filter keeps articles whose title, source or summary contains text,
// ignoring case. An empty text returns articles itself.
func Filter(articles []api.Article, text string) []api.Article {
	if text == "" {
		return articles
	}
	q := strings.ToLower(text)
	out := make([]api.Article, 0, len(articles))
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Source), q) ||
			strings.Contains(strings.ToLower(a.Summary), q) {
			out = append(out, a)
		}
	}
	return out
}

// TotalPages is never below one so page math downstream cannot divide by zero.
func TotalPages(n, perPage int) int {
	perPage = api.ClampPerPage(perPage)
	pages := (n + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}

func UnreadCount(articles []api.Article) int {
	n := 0
	for _, a := range articles {
		if !a.Read {
			n++
		}
	}
	return n
}

func Bookmarked(articles []api.Article) []api.Article {
	out := make([]api.Article, 0, len(articles))
	for _, a := range articles {
		if a.Bookmarked {
			out = append(out, a)
		}
	}
	return out
}

// Numbered is the list the on-screen row numbers refer to.
func Numbered(st *store.ViewState) []api.Article {
	if st.View == store.ViewBookmarks {
		return Bookmarked(st.Articles)
	}
	return Filter(st.Articles, st.FilterText)
}

// DisplayedSlice returns the articles currently drawn and the index of the
// first one within Numbered.
func DisplayedSlice(st *store.ViewState) ([]api.Article, int) {
	numbered := Numbered(st)
	if st.View == store.ViewBookmarks || st.Settings.InfiniteScroll {
		return numbered, 0
	}
	perPage := api.ClampPerPage(st.Settings.ArticlesPerPage)
	start := (st.Page - 1) * perPage
	if start < 0 {
		start = 0
	}
	if start > len(numbered) {
		start = len(numbered)
	}
	end := start + perPage
	if end > len(numbered) {
		end = len(numbered)
	}
	return numbered[start:end], start
}

// globalHighlight reports whether HighlightIndex is stored as an index into
// Numbered rather than into the displayed slice.
func globalHighlight(st *store.ViewState) bool {
	return st.View == store.ViewList && !st.Settings.InfiniteScroll
}

// LocalHighlight maps HighlightIndex into the displayed slice, -1 if none or
// off-slice.
func LocalHighlight(st *store.ViewState) int {
	if st.HighlightIndex < 0 {
		return -1
	}
	slice, offset := DisplayedSlice(st)
	local := st.HighlightIndex
	if globalHighlight(st) {
		local -= offset
	}
	if local < 0 || local >= len(slice) {
		return -1
	}
	return local
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
