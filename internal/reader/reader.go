// Package reader turns user intents and fetch results into store patches.
// Each operation issues at most one Patch so subscribers never observe a
// half-applied transition.
package reader

import (
	"fmt"

	"github.com/glabrego/teletext-cli/internal/alert"
	"github.com/glabrego/teletext-cli/internal/api"
	"github.com/glabrego/teletext-cli/internal/overlay"
	"github.com/glabrego/teletext-cli/internal/store"
)

type Reader struct {
	store   *store.Store
	overlay *overlay.Store
}

func New(st *store.Store, ov *overlay.Store) *Reader {
	return &Reader{store: st, overlay: ov}
}

func (r *Reader) State() *store.ViewState {
	return r.store.Get()
}

func (r *Reader) BeginFetch() {
	r.store.Patch(store.EventLoading, func(s *store.ViewState) {
		s.Loading = true
	})
}

// FailFetch keeps the articles already on screen.
func (r *Reader) FailFetch(err error) {
	r.store.Patch(store.EventLoading, func(s *store.ViewState) {
		s.Loading = false
		setNotice(s, fmt.Sprintf("FETCH FAILED: %v", err))
	})
}

// ApplyFetch replaces the article set with resp and returns the keyword
// alerts raised by articles that were not part of the previous fetch. The
// first fetch of a session never alerts.
func (r *Reader) ApplyFetch(resp api.ArticlesResponse) []alert.Match {
	all := r.overlay.Enrich(append([]api.Article(nil), resp.Articles...))
	visible := Visible(all, r.overlay.DisabledFeeds().All())

	cur := r.store.Get()
	var matches []alert.Match
	if cur.Fetched && cur.Settings.NotificationsEnabled {
		matches = alert.Find(visible, cur.Settings.KeywordAlerts, cur.PreviousArticleURLs)
	}

	r.store.Patch(store.EventArticles, func(s *store.ViewState) {
		s.AllArticles = all
		s.Articles = visible
		s.Page = 1
		s.HighlightIndex = -1
		s.TotalPages = TotalPages(len(Filter(visible, s.FilterText)), s.Settings.ArticlesPerPage)
		s.PreviousArticleURLs = alert.SeenSet(all)
		s.Fetched = true
		s.Loading = false
		s.UnreadCount = UnreadCount(visible)
	})
	return matches
}

// ToggleFeed flips a feed between enabled and disabled and re-derives the
// visible articles from the full set. It reports whether the feed is now
// enabled.
func (r *Reader) ToggleFeed(url string) bool {
	enabled := r.overlay.ToggleFeed(url)
	disabled := r.overlay.DisabledFeeds().All()
	r.store.Patch(store.EventFeeds, func(s *store.ViewState) {
		s.AllArticles = r.overlay.Enrich(append([]api.Article(nil), s.AllArticles...))
		s.Articles = Visible(s.AllArticles, disabled)
		s.Page = 1
		s.HighlightIndex = -1
		s.TotalPages = TotalPages(len(Filter(s.Articles, s.FilterText)), s.Settings.ArticlesPerPage)
		s.UnreadCount = UnreadCount(s.Articles)
		if enabled {
			setNotice(s, "FEED ENABLED")
		} else {
			setNotice(s, "FEED DISABLED")
		}
	})
	return enabled
}

func (r *Reader) OpenFilter() {
	r.store.Patch(store.EventFilter, func(s *store.ViewState) {
		s.FilterMode = true
	})
}

// SetFilter narrows the list without touching Articles.
func (r *Reader) SetFilter(text string) {
	r.store.Patch(store.EventFilter, func(s *store.ViewState) {
		s.FilterText = text
		s.Page = 1
		s.HighlightIndex = -1
		s.TotalPages = TotalPages(len(Filter(s.Articles, text)), s.Settings.ArticlesPerPage)
	})
}

func (r *Reader) CloseFilter() {
	r.store.Patch(store.EventFilter, func(s *store.ViewState) {
		s.FilterMode = false
		s.FilterText = ""
		s.Page = 1
		s.HighlightIndex = -1
		s.TotalPages = TotalPages(len(s.Articles), s.Settings.ArticlesPerPage)
	})
}

// ConfirmFilter leaves the filter input but keeps its text applied.
func (r *Reader) ConfirmFilter() {
	if !r.store.Get().FilterMode {
		return
	}
	r.store.Patch(store.EventFilter, func(s *store.ViewState) {
		s.FilterMode = false
	})
}

func (r *Reader) NextPage() {
	cur := r.store.Get()
	if cur.Settings.InfiniteScroll || cur.View != store.ViewList || cur.Page >= cur.TotalPages {
		return
	}
	r.store.Patch(store.EventPage, func(s *store.ViewState) {
		s.Page++
		s.HighlightIndex = -1
	})
}

func (r *Reader) PrevPage() {
	cur := r.store.Get()
	if cur.Settings.InfiniteScroll || cur.View != store.ViewList || cur.Page <= 1 {
		return
	}
	r.store.Patch(store.EventPage, func(s *store.ViewState) {
		s.Page--
		s.HighlightIndex = -1
	})
}

// MoveHighlight shifts the highlight by delta within the displayed slice.
// With nothing highlighted the first move lands on the first row.
func (r *Reader) MoveHighlight(delta int) {
	cur := r.store.Get()
	if cur.View == store.ViewDetail {
		return
	}
	slice, offset := DisplayedSlice(cur)
	if len(slice) == 0 {
		return
	}
	next := 0
	if local := LocalHighlight(cur); local >= 0 {
		next = clamp(local+delta, 0, len(slice)-1)
	}
	if globalHighlight(cur) {
		next += offset
	}
	if next == cur.HighlightIndex {
		return
	}
	r.store.Patch(store.EventHighlight, func(s *store.ViewState) {
		s.HighlightIndex = next
	})
}

// Highlighted returns the highlighted article in list views, or the
// selected article in the detail view.
func (r *Reader) Highlighted() (api.Article, bool) {
	cur := r.store.Get()
	if cur.View == store.ViewDetail {
		if cur.SelectedArticle == nil {
			return api.Article{}, false
		}
		return *cur.SelectedArticle, true
	}
	local := LocalHighlight(cur)
	if local < 0 {
		return api.Article{}, false
	}
	slice, _ := DisplayedSlice(cur)
	return slice[local], true
}

func (r *Reader) SelectHighlighted() bool {
	cur := r.store.Get()
	if cur.View == store.ViewDetail {
		return false
	}
	a, ok := r.Highlighted()
	if !ok {
		return false
	}
	r.open(a)
	return true
}

// SelectArticle opens the article numbered n on screen. Out of range numbers
// are ignored.
func (r *Reader) SelectArticle(n int) bool {
	numbered := Numbered(r.store.Get())
	if n < 1 || n > len(numbered) {
		return false
	}
	r.open(numbered[n-1])
	return true
}

func (r *Reader) open(a api.Article) {
	if a.URL != "" {
		r.overlay.Read().Add(a.URL)
	}
	a.Read = true
	r.store.Patch(store.EventView, func(s *store.ViewState) {
		setFlag(s, a.URL, func(x *api.Article) { x.Read = true })
		s.View = store.ViewDetail
		s.SelectedArticle = &a
		s.Modal = store.ModalNone
		s.UnreadCount = UnreadCount(s.Articles)
	})
}

// ToggleBookmark bookmarks the open article in the detail view and switches
// between the list and bookmarks views elsewhere.
func (r *Reader) ToggleBookmark() {
	cur := r.store.Get()
	switch cur.View {
	case store.ViewDetail:
		if cur.SelectedArticle != nil {
			r.ToggleBookmarkFor(cur.SelectedArticle.URL)
		}
	case store.ViewList:
		r.store.Patch(store.EventView, func(s *store.ViewState) {
			s.View = store.ViewBookmarks
			s.HighlightIndex = -1
		})
	case store.ViewBookmarks:
		r.store.Patch(store.EventView, func(s *store.ViewState) {
			s.View = store.ViewList
			s.HighlightIndex = -1
			s.SelectedArticle = nil
		})
	}
}

// ToggleBookmarkFor reports whether url is bookmarked afterwards.
func (r *Reader) ToggleBookmarkFor(url string) bool {
	on := r.overlay.Bookmarks().Toggle(url)
	r.store.Patch(store.EventArticles, func(s *store.ViewState) {
		setFlag(s, url, func(x *api.Article) { x.Bookmarked = on })
		if on {
			setNotice(s, "BOOKMARKED")
		} else {
			setNotice(s, "BOOKMARK REMOVED")
		}
	})
	return on
}

// ToggleReadFor reports whether url is read afterwards.
func (r *Reader) ToggleReadFor(url string) bool {
	on := r.overlay.Read().Toggle(url)
	r.store.Patch(store.EventArticles, func(s *store.ViewState) {
		setFlag(s, url, func(x *api.Article) { x.Read = on })
		s.UnreadCount = UnreadCount(s.Articles)
	})
	return on
}

func (r *Reader) MarkRead(url string) {
	if r.overlay.Read().Has(url) {
		return
	}
	r.overlay.Read().Add(url)
	r.store.Patch(store.EventArticles, func(s *store.ViewState) {
		setFlag(s, url, func(x *api.Article) { x.Read = true })
		s.UnreadCount = UnreadCount(s.Articles)
	})
}

// Back returns to the list from anywhere and closes any modal.
func (r *Reader) Back() {
	r.store.Patch(store.EventView, func(s *store.ViewState) {
		s.View = store.ViewList
		s.SelectedArticle = nil
		s.HighlightIndex = -1
		s.Modal = store.ModalNone
	})
}

// ApplySettings normalizes and persists settings, then resets paging.
func (r *Reader) ApplySettings(settings api.Settings) api.Settings {
	settings = settings.Normalize()
	r.overlay.SaveSettings(settings)
	r.UseSettings(settings)
	return settings
}

// UseSettings applies settings without persisting them.
func (r *Reader) UseSettings(settings api.Settings) {
	settings = settings.Normalize()
	r.store.Patch(store.EventSettings, func(s *store.ViewState) {
		s.Settings = settings
		s.Page = 1
		s.HighlightIndex = -1
		s.TotalPages = TotalPages(len(Filter(s.Articles, s.FilterText)), settings.ArticlesPerPage)
	})
}

func (r *Reader) DisabledFeeds() map[string]struct{} {
	return r.overlay.DisabledFeeds().All()
}

func (r *Reader) SetFeeds(feeds []string) {
	r.store.Patch(store.EventFeeds, func(s *store.ViewState) {
		s.Feeds = feeds
	})
}

func (r *Reader) SetFeedHealth(health map[string]api.HealthRecord) {
	if health == nil {
		health = make(map[string]api.HealthRecord)
	}
	r.store.Patch(store.EventFeeds, func(s *store.ViewState) {
		s.FeedHealth = health
	})
}

func (r *Reader) SetDiscovered(feeds []api.DiscoveredFeed) {
	r.store.Patch(store.EventFeeds, func(s *store.ViewState) {
		s.DiscoveredFeeds = feeds
	})
}

// Notify shows a transient message and returns its sequence number for
// ClearNotice.
func (r *Reader) Notify(msg string) int {
	var seq int
	r.store.Patch(store.EventNotice, func(s *store.ViewState) {
		setNotice(s, msg)
		seq = s.NoticeSeq
	})
	return seq
}

// ClearNotice clears the notice only if no newer one replaced it.
func (r *Reader) ClearNotice(seq int) {
	cur := r.store.Get()
	if cur.NoticeSeq != seq || cur.Notice == "" {
		return
	}
	r.store.Patch(store.EventNotice, func(s *store.ViewState) {
		s.Notice = ""
	})
}

func (r *Reader) OpenModal(m store.Modal) {
	r.store.Patch(store.EventModal, func(s *store.ViewState) {
		s.Modal = m
		if m == store.ModalFeeds {
			s.DiscoveredFeeds = nil
		}
	})
}

func (r *Reader) CloseModal() {
	if r.store.Get().Modal == store.ModalNone {
		return
	}
	r.store.Patch(store.EventModal, func(s *store.ViewState) {
		s.Modal = store.ModalNone
	})
}

func setNotice(s *store.ViewState, msg string) {
	s.Notice = msg
	s.NoticeSeq++
}

// setFlag applies fn to every copy of url in the state. Articles is replaced
// with a fresh slice so renderers comparing slices see the change.
func setFlag(s *store.ViewState, url string, fn func(*api.Article)) {
	s.Articles = append([]api.Article(nil), s.Articles...)
	for i := range s.Articles {
		if s.Articles[i].URL == url {
			fn(&s.Articles[i])
		}
	}
	for i := range s.AllArticles {
		if s.AllArticles[i].URL == url {
			fn(&s.AllArticles[i])
		}
	}
	if s.SelectedArticle != nil && s.SelectedArticle.URL == url {
		sel := *s.SelectedArticle
		fn(&sel)
		s.SelectedArticle = &sel
	}
}
