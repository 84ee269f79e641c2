package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/teletext-cli/internal/alert"
	"github.com/glabrego/teletext-cli/internal/api"
	"github.com/glabrego/teletext-cli/internal/app"
	"github.com/glabrego/teletext-cli/internal/overlay"
	"github.com/glabrego/teletext-cli/internal/reader"
	"github.com/glabrego/teletext-cli/internal/storage"
	"github.com/glabrego/teletext-cli/internal/store"
	tuiactions "github.com/glabrego/teletext-cli/internal/tui/actions"
	"github.com/glabrego/teletext-cli/internal/tui/view"
)

type fakeService struct {
	mu         sync.Mutex
	articles   []api.Article
	refreshErr error
	refreshes  int
	settings   api.Settings
	pushed     []api.Settings
	feeds      app.FeedStatus
	added      []string
	removed    []string
	discovered []api.DiscoveredFeed
}

func (f *fakeService) Refresh(context.Context) (api.ArticlesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return api.ArticlesResponse{}, f.refreshErr
	}
	return api.ArticlesResponse{Articles: append([]api.Article(nil), f.articles...), Count: len(f.articles)}, nil
}

func (f *fakeService) LoadSettings(context.Context) (api.Settings, app.SettingsSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings.Theme == "" {
		return api.DefaultSettings(), app.SettingsDefault, nil
	}
	return f.settings, app.SettingsServer, nil
}

func (f *fakeService) PushSettings(_ context.Context, s api.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, s)
	return nil
}

func (f *fakeService) Feeds(context.Context) (app.FeedStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.feeds, nil
}

func (f *fakeService) AddFeed(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, url)
	return nil
}

func (f *fakeService) RemoveFeed(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, url)
	return nil
}

func (f *fakeService) DiscoverFeeds(context.Context, string) ([]api.DiscoveredFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.discovered, nil
}

func (f *fakeService) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

type fakeAlerter struct {
	mu      sync.Mutex
	asked   bool
	matches []alert.Match
}

func (f *fakeAlerter) RequestPermission(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = true
	return true
}

func (f *fakeAlerter) Alerts(_ context.Context, matches []alert.Match) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = append(f.matches, matches...)
	return len(matches)
}

type countingKV struct {
	storage.KV
	mu   sync.Mutex
	gets int
}

func (k *countingKV) Get(ctx context.Context, key string) ([]byte, error) {
	k.mu.Lock()
	k.gets++
	k.mu.Unlock()
	return k.KV.Get(ctx, key)
}

func (k *countingKV) reads() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.gets
}

type harness struct {
	m       *Model
	kv      *countingKV
	svc     *fakeService
	alerter *fakeAlerter
	opened  []string
	copied  []string
}

func newHarness(t *testing.T, svc *fakeService) *harness {
	t.Helper()
	kv := &countingKV{KV: storage.NewDiskKV(t.TempDir())}
	ov := overlay.New(kv, nil)
	st := store.New(store.Initial())
	h := &harness{svc: svc, kv: kv, alerter: &fakeAlerter{}}
	var mu sync.Mutex
	h.m = NewModel(Options{
		Service:    svc,
		Reader:     reader.New(st, ov),
		Store:      st,
		Alerter:    h.alerter,
		DigitDelay: 10 * time.Millisecond,
		Now:        func() time.Time { return time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC) },
		OpenURL: func(url string) error {
			mu.Lock()
			defer mu.Unlock()
			h.opened = append(h.opened, url)
			return nil
		},
		CopyURL: func(url string) error {
			mu.Lock()
			defer mu.Unlock()
			h.copied = append(h.copied, url)
			return nil
		},
	})
	t.Cleanup(h.m.Close)
	h.m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return h
}

// drain runs cmd and returns the messages it produces within a short window.
// Long timers (clock, spinner, notice expiry) are dropped.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, drain(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// pump feeds msg to the model and keeps feeding whatever the resulting
// commands produce. It reports whether the program asked to quit.
func (h *harness) pump(msgs ...tea.Msg) bool {
	quit := false
	for i := 0; len(msgs) > 0 && i < 200; i++ {
		msg := msgs[0]
		msgs = msgs[1:]
		if _, ok := msg.(tea.QuitMsg); ok {
			quit = true
			continue
		}
		_, cmd := h.m.Update(msg)
		msgs = append(msgs, drain(cmd)...)
	}
	return quit
}

func (h *harness) init() {
	h.pump(drain(h.m.Init())...)
}

func (h *harness) state() *store.ViewState {
	return h.m.store.Get()
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func sampleArticles(n int) []api.Article {
	out := make([]api.Article, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, api.Article{
			URL:       fmt.Sprintf("https://news.example/%d", i),
			Title:     fmt.Sprintf("Story %d", i),
			Source:    "BBC",
			SourceURL: "https://bbc.example/rss",
			Date:      "2026-02-09 10:00",
		})
	}
	return out
}

func TestModel_InitFetchesAndRenders(t *testing.T) {
	h := newHarness(t, &fakeService{articles: sampleArticles(17)})
	h.init()

	st := h.state()
	if st.Loading || !st.Fetched || st.TotalPages != 3 || st.UnreadCount != 17 {
		t.Fatalf("unexpected state after init: loading=%v fetched=%v pages=%d unread=%d", st.Loading, st.Fetched, st.TotalPages, st.UnreadCount)
	}
	if h.m.windowTitle != "(17) TELETEXT" {
		t.Fatalf("unexpected window title: %q", h.m.windowTitle)
	}
	v := h.m.View()
	if !strings.Contains(v, "P1/3") || !strings.Contains(v, "Story 8") || strings.Contains(v, "Story 9 ") {
		t.Fatalf("unexpected first page:\n%s", v)
	}

	h.pump(runes("n"))
	if st.Page != 2 || !strings.Contains(h.m.View(), "P2/3") {
		t.Fatalf("expected page 2, got %d", st.Page)
	}
}

func TestModel_RefreshErrorKeepsArticles(t *testing.T) {
	svc := &fakeService{articles: sampleArticles(3)}
	h := newHarness(t, svc)
	h.init()

	svc.mu.Lock()
	svc.refreshErr = errors.New("backend down")
	svc.mu.Unlock()
	h.pump(runes("r"))

	st := h.state()
	if len(st.Articles) != 3 || st.Loading {
		t.Fatalf("expected articles kept after failure, got %d loading=%v", len(st.Articles), st.Loading)
	}
	if !strings.HasPrefix(st.Notice, "FETCH FAILED") {
		t.Fatalf("unexpected notice: %q", st.Notice)
	}
}

func TestModel_DigitBufferCommitsLatestTimerOnly(t *testing.T) {
	h := newHarness(t, &fakeService{articles: sampleArticles(17)})
	h.init()

	_, first := h.m.Update(runes("1"))
	_, second := h.m.Update(runes("2"))
	if h.m.digits != "12" || !strings.Contains(h.m.View(), "GO TO ARTICLE: 12_") {
		t.Fatalf("expected digit box for 12, got %q", h.m.digits)
	}

	h.pump(drain(first)...)
	if h.state().View != store.ViewList {
		t.Fatal("stale digit timer must not select an article")
	}
	h.pump(drain(second)...)
	st := h.state()
	if st.View != store.ViewDetail || st.SelectedArticle == nil || st.SelectedArticle.Title != "Story 12" {
		t.Fatalf("expected article 12 opened, got %+v", st.SelectedArticle)
	}
	if h.m.digits != "" || !st.SelectedArticle.Read {
		t.Fatalf("expected cleared digits and read article, digits=%q", h.m.digits)
	}
}

func TestModel_EnterCommitsDigitsAndUnknownNumberNotifies(t *testing.T) {
	h := newHarness(t, &fakeService{articles: sampleArticles(5)})
	h.init()

	h.m.Update(runes("3"))
	h.pump(key(tea.KeyEnter))
	if sel := h.state().SelectedArticle; sel == nil || sel.Title != "Story 3" {
		t.Fatalf("expected article 3, got %+v", sel)
	}

	h.pump(key(tea.KeyEsc))
	if h.state().View != store.ViewList {
		t.Fatalf("expected back to list, got %s", h.state().View)
	}

	h.m.Update(runes("9"))
	h.pump(key(tea.KeyEnter))
	if h.state().View != store.ViewList || h.state().Notice != "ARTICLE 9 NOT FOUND" {
		t.Fatalf("unexpected state after unknown number: view=%s notice=%q", h.state().View, h.state().Notice)
	}
}

func TestModel_FilterInput(t *testing.T) {
	list := sampleArticles(10)
	list[4].Title = "Election night"
	h := newHarness(t, &fakeService{articles: list})
	h.init()

	h.pump(runes("/"))
	if st := h.state(); !st.FilterMode || st.FilterText != "" || h.m.filter.Value() != "" {
		t.Fatalf("opening the filter must start empty, got text=%q input=%q", st.FilterText, h.m.filter.Value())
	}
	for _, r := range "elect" {
		h.pump(runes(string(r)))
	}
	st := h.state()
	if !st.FilterMode || st.FilterText != "elect" || st.TotalPages != 1 {
		t.Fatalf("unexpected filter state: mode=%v text=%q pages=%d", st.FilterMode, st.FilterText, st.TotalPages)
	}
	if h.m.digits != "" {
		t.Fatal("typing in the filter must not buffer digits")
	}

	h.pump(key(tea.KeyEnter))
	if st.FilterMode || st.FilterText != "elect" {
		t.Fatalf("enter should keep the filter applied, got mode=%v text=%q", st.FilterMode, st.FilterText)
	}
	h.m.Update(runes("1"))
	h.pump(key(tea.KeyEnter))
	if st.SelectedArticle == nil || st.SelectedArticle.Title != "Election night" {
		t.Fatalf("expected numbering within the filter, got %+v", st.SelectedArticle)
	}

	h.pump(key(tea.KeyEsc), runes("/"))
	if !st.FilterMode || st.FilterText != "elect" || h.m.filter.Value() != "elect" {
		t.Fatalf("reopening keeps the applied text, got text=%q input=%q", st.FilterText, h.m.filter.Value())
	}

	h.pump(key(tea.KeyEsc))
	if st.FilterText != "" || st.TotalPages != 2 {
		t.Fatalf("expected filter cleared, got text=%q pages=%d", st.FilterText, st.TotalPages)
	}
}

func TestModel_OpenURLMarksRead(t *testing.T) {
	h := newHarness(t, &fakeService{articles: sampleArticles(3)})
	h.init()

	h.pump(runes("o"))
	if h.state().Notice != "NO ARTICLE SELECTED" {
		t.Fatalf("unexpected notice: %q", h.state().Notice)
	}

	h.pump(runes("j"), runes("o"))
	if len(h.opened) != 1 || h.opened[0] != "https://news.example/1" {
		t.Fatalf("unexpected opened urls: %v", h.opened)
	}
	st := h.state()
	if !st.Articles[0].Read || st.UnreadCount != 2 || st.Notice != "OPENED IN BROWSER" {
		t.Fatalf("expected first article read, unread=%d notice=%q", st.UnreadCount, st.Notice)
	}

	h.pump(runes("j"), runes("y"))
	if len(h.copied) != 1 || h.copied[0] != "https://news.example/2" {
		t.Fatalf("unexpected copied urls: %v", h.copied)
	}
}

func TestModel_BookmarkAndReadToggles(t *testing.T) {
	h := newHarness(t, &fakeService{articles: sampleArticles(3)})
	h.init()

	h.m.Update(runes("2"))
	h.pump(key(tea.KeyEnter), runes("b"))
	st := h.state()
	if !st.SelectedArticle.Bookmarked || st.Notice != "BOOKMARKED" {
		t.Fatalf("expected bookmarked article, notice=%q", st.Notice)
	}
	h.pump(runes("m"))
	if st.SelectedArticle.Read {
		t.Fatal("expected read toggled off")
	}

	h.pump(key(tea.KeyEsc), runes("b"))
	if st.View != store.ViewBookmarks || !strings.Contains(h.m.View(), "Story 2") {
		t.Fatalf("expected bookmarks view with story 2, got %s", st.View)
	}
	h.pump(runes("b"))
	if st.View != store.ViewList {
		t.Fatalf("expected list view again, got %s", st.View)
	}
}

func TestModel_SettingsSave(t *testing.T) {
	svc := &fakeService{articles: sampleArticles(17)}
	h := newHarness(t, svc)
	h.init()

	h.pump(runes("s"))
	if h.state().Modal != store.ModalSettings || !strings.Contains(h.m.View(), "SETTINGS") {
		t.Fatal("expected settings dialog")
	}
	h.pump(key(tea.KeyRight))
	for i := 0; i < 3; i++ {
		h.pump(key(tea.KeyDown))
	}
	h.pump(runes("+"))
	for i := 0; i < 5; i++ {
		h.pump(key(tea.KeyDown))
	}
	h.pump(key(tea.KeyEnter))

	st := h.state()
	if st.Modal != store.ModalNone {
		t.Fatalf("expected dialog closed, got %v", st.Modal)
	}
	if st.Settings.Theme != "light" || st.Settings.ArticlesPerPage != 9 || st.TotalPages != 2 {
		t.Fatalf("unexpected settings: %+v pages=%d", st.Settings, st.TotalPages)
	}
	if len(svc.pushed) != 1 || svc.pushed[0].ArticlesPerPage != 9 {
		t.Fatalf("unexpected pushed settings: %+v", svc.pushed)
	}
	if st.Notice != "SETTINGS SAVED" {
		t.Fatalf("unexpected notice: %q", st.Notice)
	}
}

func TestModel_KeywordEditing(t *testing.T) {
	h := newHarness(t, &fakeService{})
	h.init()

	h.pump(runes("s"))
	for i := 0; i < 7; i++ {
		h.pump(key(tea.KeyDown))
	}
	h.pump(key(tea.KeyEnter))
	if h.m.inputOn != inputKeywords {
		t.Fatal("expected keyword input")
	}
	h.pump(runes("go, , Rust "), key(tea.KeyEnter))
	if got := h.m.settingsForm.Draft.KeywordAlerts; len(got) != 2 || got[0] != "go" || got[1] != "Rust" {
		t.Fatalf("unexpected keywords: %q", got)
	}
	h.pump(key(tea.KeyEsc))
	if h.state().Modal != store.ModalNone || len(h.state().Settings.KeywordAlerts) != 0 {
		t.Fatal("closing without save must discard the draft")
	}
}

func TestModel_AutoRefreshGeneration(t *testing.T) {
	svc := &fakeService{articles: sampleArticles(2), settings: api.Settings{Theme: "dark", AutoRefreshSeconds: 30}}
	h := newHarness(t, svc)
	h.init()

	gen := h.m.autoRefreshGen
	if h.m.autoRefreshSecs != 30 {
		t.Fatalf("expected 30s timer armed, got %d", h.m.autoRefreshSecs)
	}
	before := svc.refreshCount()
	h.pump(autoRefreshMsg{gen: gen - 1})
	if svc.refreshCount() != before {
		t.Fatal("stale auto refresh timer must be ignored")
	}
	h.pump(autoRefreshMsg{gen: gen})
	if svc.refreshCount() != before+1 {
		t.Fatalf("expected one auto refresh, got %d", svc.refreshCount()-before)
	}

	h.pump(tuiactions.SettingsLoadedMsg{Settings: api.Settings{Theme: "dark"}})
	if h.m.autoRefreshGen == gen || h.m.autoRefreshSecs != 0 {
		t.Fatalf("expected timer disarmed, gen=%d secs=%d", h.m.autoRefreshGen, h.m.autoRefreshSecs)
	}
	h.pump(autoRefreshMsg{gen: gen})
	if svc.refreshCount() != before+1 {
		t.Fatal("disarmed timer must not refresh")
	}
}

func TestModel_KeywordAlerts(t *testing.T) {
	svc := &fakeService{
		articles: sampleArticles(3),
		settings: api.Settings{Theme: "dark", NotificationsEnabled: true, KeywordAlerts: []string{"election"}},
	}
	h := newHarness(t, svc)
	h.init()
	if !h.alerter.asked {
		t.Fatal("expected permission request when notifications are enabled")
	}
	if len(h.alerter.matches) != 0 {
		t.Fatalf("first fetch must not alert, got %d", len(h.alerter.matches))
	}

	next := append(sampleArticles(3), api.Article{URL: "https://news.example/new", Title: "Election called", Source: "BBC"})
	h.pump(tuiactions.RefreshSuccessMsg{Response: api.ArticlesResponse{Articles: next}})
	if len(h.alerter.matches) != 1 || h.alerter.matches[0].Keyword != "election" {
		t.Fatalf("unexpected alerts: %+v", h.alerter.matches)
	}
	if h.state().Notice != "KEYWORD ALERT: ELECTION" {
		t.Fatalf("unexpected notice: %q", h.state().Notice)
	}
}

func TestModel_FeedsDialog(t *testing.T) {
	list := sampleArticles(2)
	list[1].SourceURL = "https://other.example/rss"
	svc := &fakeService{
		articles: list,
		feeds: app.FeedStatus{
			Feeds:  []string{"https://bbc.example/rss", "https://other.example/rss"},
			Health: map[string]api.HealthRecord{"https://other.example/rss": {ErrorCount: 3}},
		},
		discovered: []api.DiscoveredFeed{{Title: "Found", URL: "https://found.example/feed"}},
	}
	h := newHarness(t, svc)
	h.init()

	h.pump(runes("f"))
	st := h.state()
	if st.Modal != store.ModalFeeds || len(st.Feeds) != 2 || !strings.Contains(h.m.View(), "ERR x3") {
		t.Fatalf("expected feeds dialog with health:\n%s", h.m.View())
	}

	h.pump(key(tea.KeyDown), key(tea.KeySpace))
	if len(st.Articles) != 1 || st.Articles[0].SourceURL != "https://bbc.example/rss" {
		t.Fatalf("expected other feed hidden, got %+v", st.Articles)
	}
	if !strings.Contains(h.m.View(), "[ ] https://other.example/rss") {
		t.Fatalf("expected disabled marker:\n%s", h.m.View())
	}

	before := h.kv.reads()
	for i := 0; i < 3; i++ {
		h.pump(clockTickMsg(time.Date(2026, 2, 9, 12, 0, i, 0, time.UTC)))
	}
	if got := h.kv.reads() - before; got != 0 {
		t.Fatalf("redrawing the feeds dialog read storage %d times", got)
	}
	if !strings.Contains(h.m.View(), "[ ] https://other.example/rss") {
		t.Fatalf("expected disabled marker after redraws:\n%s", h.m.View())
	}

	h.pump(runes("a"))
	h.pump(runes("https://new.example/rss"), key(tea.KeyEnter))
	if len(svc.added) != 1 || svc.added[0] != "https://new.example/rss" {
		t.Fatalf("unexpected added feeds: %v", svc.added)
	}

	h.pump(runes("d"))
	h.pump(runes("https://found.example"), key(tea.KeyEnter))
	if len(st.DiscoveredFeeds) != 1 || h.m.feedCursor != 2 {
		t.Fatalf("expected discovered feed selected, cursor=%d", h.m.feedCursor)
	}
	h.pump(key(tea.KeyEnter))
	if len(svc.added) != 2 || svc.added[1] != "https://found.example/feed" {
		t.Fatalf("unexpected added feeds: %v", svc.added)
	}

	h.pump(key(tea.KeyUp), key(tea.KeyUp), runes("x"))
	if len(svc.removed) != 1 || svc.removed[0] != "https://bbc.example/rss" {
		t.Fatalf("unexpected removed feeds: %v", svc.removed)
	}
	h.pump(key(tea.KeyEsc))
	if st.Modal != store.ModalNone {
		t.Fatal("expected dialog closed")
	}
}

func TestModel_RendersOnEveryPatch(t *testing.T) {
	h := newHarness(t, &fakeService{})
	h.m.reader.Notify("HELLO FROM THE STORE")
	if !strings.Contains(h.m.View(), "HELLO FROM THE STORE") {
		t.Fatalf("expected frame to follow the store without an Update:\n%s", h.m.View())
	}
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t, &fakeService{})
	if !h.pump(runes("q")) {
		t.Fatal("expected q to quit")
	}
	h.pump(runes("/"))
	if !h.pump(key(tea.KeyCtrlC)) {
		t.Fatal("expected ctrl+c to quit even while filtering")
	}
}

func TestAdjustSetting(t *testing.T) {
	s := api.DefaultSettings()
	cases := []struct {
		name  string
		field view.SettingsField
		dir   int
		check func(api.Settings) bool
	}{
		{name: "theme back wraps", field: view.FieldTheme, dir: -1, check: func(s api.Settings) bool { return s.Theme == "white" }},
		{name: "per page steps up", field: view.FieldPerPage, dir: 1, check: func(s api.Settings) bool { return s.ArticlesPerPage == 9 }},
		{name: "auto refresh back wraps", field: view.FieldAutoRefresh, dir: -1, check: func(s api.Settings) bool { return s.AutoRefreshSeconds == 1800 }},
		{name: "notifications toggle", field: view.FieldNotifications, dir: 1, check: func(s api.Settings) bool { return s.NotificationsEnabled }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := adjustSetting(s, tc.field, tc.dir)
			if !tc.check(got) {
				t.Fatalf("unexpected settings: %+v", got)
			}
		})
	}

	high := s
	high.ArticlesPerPage = api.MaxArticlesPerPage
	if got := adjustSetting(high, view.FieldPerPage, 1); got.ArticlesPerPage != api.MaxArticlesPerPage {
		t.Fatalf("expected per page capped, got %d", got.ArticlesPerPage)
	}
}
