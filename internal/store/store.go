// Package store holds the single mutable view state of a reader session and
// fans out one synchronous notification per patch.
package store

import (
	"github.com/glabrego/teletext-cli/internal/api"
)

type View int

const (
	ViewList View = iota
	ViewDetail
	ViewBookmarks
)

func (v View) String() string {
	switch v {
	case ViewDetail:
		return "detail"
	case ViewBookmarks:
		return "bookmarks"
	default:
		return "list"
	}
}

type Modal int

const (
	ModalNone Modal = iota
	ModalSettings
	ModalFeeds
	ModalHelp
)

// ViewState is the whole reader view. HighlightIndex is -1 when nothing is
// highlighted; in the paged list view it indexes the filtered set, elsewhere
// the rendered slice.
type ViewState struct {
	View            View
	Articles        []api.Article
	AllArticles     []api.Article
	Page            int
	TotalPages      int
	HighlightIndex  int
	FilterText      string
	FilterMode      bool
	SelectedArticle *api.Article
	Loading         bool
	Settings        api.Settings
	Feeds           []string
	FeedHealth      map[string]api.HealthRecord
	DiscoveredFeeds []api.DiscoveredFeed
	// PreviousArticleURLs is the URL snapshot of the last applied fetch.
	PreviousArticleURLs map[string]struct{}
	Fetched             bool

	UnreadCount int
	Notice      string
	NoticeSeq   int
	Modal       Modal
}

func Initial() ViewState {
	return ViewState{
		View:           ViewList,
		Page:           1,
		TotalPages:     1,
		HighlightIndex: -1,
		Settings:       api.DefaultSettings(),
		FeedHealth:     make(map[string]api.HealthRecord),
	}
}

type EventKind int

const (
	EventArticles EventKind = iota + 1
	EventPage
	EventFilter
	EventHighlight
	EventView
	EventSettings
	EventFeeds
	EventLoading
	EventNotice
	EventModal
)

func (k EventKind) String() string {
	switch k {
	case EventArticles:
		return "articles"
	case EventPage:
		return "page"
	case EventFilter:
		return "filter"
	case EventHighlight:
		return "highlight"
	case EventView:
		return "view"
	case EventSettings:
		return "settings"
	case EventFeeds:
		return "feeds"
	case EventLoading:
		return "loading"
	case EventNotice:
		return "notice"
	case EventModal:
		return "modal"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind EventKind
	Seq  int
}

type Listener func(Event, *ViewState)

// Store owns a ViewState. It is not safe for concurrent use; callers run on
// the UI event loop.
type Store struct {
	state     ViewState
	listeners map[int]Listener
	order     []int
	nextID    int
	seq       int
}

func New(initial ViewState) *Store {
	return &Store{state: initial, listeners: make(map[int]Listener)}
}

// Get returns the live state. The pointer is stable for the store's lifetime.
func (s *Store) Get() *ViewState {
	return &s.state
}

// Patch applies fn as one atomic change and then calls every subscriber once,
// in subscription order, before returning.
func (s *Store) Patch(kind EventKind, fn func(*ViewState)) {
	if fn != nil {
		fn(&s.state)
	}
	s.seq++
	ev := Event{Kind: kind, Seq: s.seq}
	ids := append([]int(nil), s.order...)
	for _, id := range ids {
		if l, ok := s.listeners[id]; ok {
			l(ev, &s.state)
		}
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)
	return func() {
		if _, ok := s.listeners[id]; !ok {
			return
		}
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *Store) Seq() int {
	return s.seq
}
