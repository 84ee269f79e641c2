package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/teletext-cli/internal/alert"
	"github.com/glabrego/teletext-cli/internal/keyboard"
	"github.com/glabrego/teletext-cli/internal/reader"
	"github.com/glabrego/teletext-cli/internal/store"
	tuiactions "github.com/glabrego/teletext-cli/internal/tui/actions"
	"github.com/glabrego/teletext-cli/internal/tui/platform"
	tuitheme "github.com/glabrego/teletext-cli/internal/tui/theme"
	"github.com/glabrego/teletext-cli/internal/tui/view"
)

const noticeTTL = 3 * time.Second

// autoRefreshSteps are the choices the settings dialog cycles through.
var autoRefreshSteps = []int{0, 30, 60, 120, 300, 600, 1800}

type digitTimeoutMsg struct {
	token int
}

type clockTickMsg time.Time

type autoRefreshMsg struct {
	gen int
}

type clearNoticeMsg struct {
	seq int
}

type inputMode int

const (
	inputNone inputMode = iota
	inputAddFeed
	inputDiscover
	inputKeywords
)

// Options wires a Model. Reader and Store are required; the rest fall back
// to working defaults.
type Options struct {
	Service    tuiactions.Service
	Reader     *reader.Reader
	Store      *store.Store
	Alerter    tuiactions.Alerter
	Logger     *slog.Logger
	Keys       *keyboard.KeyMap
	DigitDelay time.Duration
	OpenURL    func(string) error
	CopyURL    func(string) error
	Now        func() time.Time
}

// Model is the bubbletea program. The store is the source of truth; the model
// only holds terminal-side state and the last rendered frame.
type Model struct {
	service tuiactions.Service
	reader  *reader.Reader
	store   *store.Store
	alerter tuiactions.Alerter
	logger  *slog.Logger

	keys     keyboard.KeyMap
	keyboard *keyboard.Interpreter
	digits   string

	help    help.Model
	filter  textinput.Model
	input   textinput.Model
	inputOn inputMode
	spinner spinner.Model
	spinOn  bool
	detail  viewport.Model
	// detailURL is the article the viewport content was built for.
	detailURL string

	theme  tuitheme.Theme
	width  int
	height int
	now    time.Time

	settingsForm  view.SettingsForm
	feedCursor    int
	disabledFeeds map[string]struct{}

	autoRefreshGen  int
	autoRefreshSecs int
	permissionAsked bool
	noticeSeq       int

	openURLFn func(string) error
	copyURLFn func(string) error

	frame       view.Frame
	windowTitle string
	unsubscribe func()
}

func NewModel(opts Options) *Model {
	keys := keyboard.DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	openFn := opts.OpenURL
	if openFn == nil {
		openFn = platform.OpenURLInBrowser
	}
	copyFn := opts.CopyURL
	if copyFn == nil {
		copyFn = platform.CopyURLToClipboard
	}

	filter := textinput.New()
	filter.Prompt = "FILTER: "
	filter.Placeholder = "title, source or summary"
	filter.CharLimit = 120

	input := textinput.New()
	input.CharLimit = 500

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		service:         opts.Service,
		reader:          opts.Reader,
		store:           opts.Store,
		alerter:         opts.Alerter,
		logger:          logger,
		keys:            keys,
		keyboard:        keyboard.New(keys, opts.DigitDelay),
		help:            help.New(),
		filter:          filter,
		input:           input,
		spinner:         spin,
		detail:          viewport.New(80, 10),
		now:             nowFn(),
		openURLFn:       openFn,
		copyURLFn:       copyFn,
		autoRefreshSecs: -1,
	}
	m.theme = tuitheme.ForName(m.store.Get().Settings.Theme)
	m.unsubscribe = m.store.Subscribe(func(ev store.Event, st *store.ViewState) {
		m.onPatch(ev, st)
	})
	m.redraw()
	return m
}

func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{clockTickCmd(), m.armAutoRefresh(), m.requestPermission()}
	if m.service != nil {
		cmds = append(cmds, tuiactions.LoadSettingsCmd(m.service), m.refresh("init"))
	}
	cmds = append(cmds, m.afterUpdate()...)
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.syncDetail(true)
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	case clockTickMsg:
		m.now = time.Time(msg)
		cmds = append(cmds, clockTickCmd())
	case spinner.TickMsg:
		if !m.store.Get().Loading {
			m.spinOn = false
			break
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case digitTimeoutMsg:
		cmds = append(cmds, m.applyResult(m.keyboard.Fire(msg.token)))
	case autoRefreshMsg:
		if msg.gen != m.autoRefreshGen || m.autoRefreshSecs <= 0 {
			break
		}
		m.logger.Debug("auto refresh", "seconds", m.autoRefreshSecs)
		cmds = append(cmds, m.refresh("auto"), autoRefreshCmd(m.autoRefreshGen, m.autoRefreshSecs))
	case clearNoticeMsg:
		m.reader.ClearNotice(msg.seq)
	case tuiactions.RefreshSuccessMsg:
		matches := m.reader.ApplyFetch(msg.Response)
		m.logger.Info("articles fetched", "source", msg.Source, "count", len(msg.Response.Articles), "duration", msg.Duration, "alerts", len(matches))
		cmds = append(cmds, m.alert(matches))
	case tuiactions.RefreshErrorMsg:
		m.logger.Warn("fetch failed", "source", msg.Source, "err", msg.Err)
		m.reader.FailFetch(msg.Err)
	case tuiactions.SettingsLoadedMsg:
		if msg.Err != nil {
			m.logger.Warn("settings unavailable, using defaults", "err", msg.Err)
		}
		m.logger.Debug("settings loaded", "source", string(msg.Source))
		m.reader.UseSettings(msg.Settings)
		cmds = append(cmds, m.settingsChanged())
	case tuiactions.SettingsPushedMsg:
		if msg.Err != nil {
			m.logger.Warn("settings push failed", "err", msg.Err)
			m.reader.Notify("SETTINGS SAVED LOCALLY")
		} else {
			m.reader.Notify("SETTINGS SAVED")
		}
	case tuiactions.FeedsLoadedMsg:
		m.reader.SetFeeds(msg.Status.Feeds)
		m.reader.SetFeedHealth(msg.Status.Health)
		m.clampFeedCursor()
	case tuiactions.FeedsErrorMsg:
		m.logger.Warn("feeds unavailable", "err", msg.Err)
		m.reader.Notify("FEEDS UNAVAILABLE")
	case tuiactions.FeedActionSuccessMsg:
		m.reader.Notify(msg.Status)
		if m.service != nil {
			cmds = append(cmds, tuiactions.LoadFeedsCmd(m.service))
		}
	case tuiactions.FeedActionErrorMsg:
		m.logger.Warn("feed action failed", "err", msg.Err)
		m.reader.Notify("FEED ERROR: " + strings.ToUpper(msg.Err.Error()))
	case tuiactions.DiscoverSuccessMsg:
		m.reader.SetDiscovered(msg.Feeds)
		if len(msg.Feeds) == 0 {
			m.reader.Notify("NO FEEDS FOUND")
		} else {
			m.feedCursor = len(m.store.Get().Feeds)
		}
	case tuiactions.OpenURLSuccessMsg:
		m.reader.MarkRead(msg.URL)
		m.reader.Notify(msg.Status)
	case tuiactions.OpenURLErrorMsg:
		m.logger.Warn("open url failed", "err", msg.Err)
		m.reader.Notify("COULD NOT OPEN URL")
	case tuiactions.PermissionMsg:
		m.logger.Info("notification permission", "granted", msg.Granted)
		if !msg.Granted && m.store.Get().Settings.NotificationsEnabled {
			m.reader.Notify("NOTIFICATIONS UNAVAILABLE")
		}
	case tuiactions.AlertsSentMsg:
		m.logger.Debug("alerts delivered", "count", msg.Count)
	}

	cmds = append(cmds, m.afterUpdate()...)
	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	return m.frame.Body
}

func (m *Model) onPatch(ev store.Event, st *store.ViewState) {
	switch ev.Kind {
	case store.EventSettings:
		m.theme = tuitheme.ForName(st.Settings.Theme)
		m.syncDetail(true)
	default:
		m.syncDetail(false)
	}
	m.redraw()
}

// afterUpdate redraws for terminal-side changes and schedules follow-ups the
// new state needs: notice expiry, spinner ticks and the window title.
func (m *Model) afterUpdate() []tea.Cmd {
	m.redraw()
	st := m.store.Get()
	var cmds []tea.Cmd
	if st.Notice != "" && st.NoticeSeq != m.noticeSeq {
		m.noticeSeq = st.NoticeSeq
		cmds = append(cmds, clearNoticeCmd(st.NoticeSeq, noticeTTL))
	}
	if st.Loading && !m.spinOn {
		m.spinOn = true
		cmds = append(cmds, m.spinner.Tick)
	}
	if m.frame.Title != m.windowTitle {
		m.windowTitle = m.frame.Title
		cmds = append(cmds, tea.SetWindowTitle(m.windowTitle))
	}
	return cmds
}

func (m *Model) redraw() {
	m.frame = view.Render(m.store.Get(), m.renderContext())
}

func (m *Model) renderContext() view.Context {
	st := m.store.Get()
	ctx := view.Context{
		Width:     m.width,
		Height:    m.height,
		Now:       m.now,
		Theme:     m.theme,
		Digits:    m.digits,
		ShortHelp: m.help.ShortHelpView(m.keys.ShortHelp()),
		Settings:  m.settingsForm,
	}
	if st.Loading {
		ctx.Spinner = m.spinner.View()
	}
	if st.FilterMode {
		ctx.FilterInput = m.filter.View()
	}
	if st.View == store.ViewDetail && st.Modal == store.ModalNone {
		ctx.DetailBody = m.detail.View()
	}
	switch st.Modal {
	case store.ModalHelp:
		ctx.FullHelp = m.help.FullHelpView(m.keys.FullHelp())
	case store.ModalSettings:
		if m.inputOn == inputKeywords {
			ctx.Settings.Input = m.input.View()
		}
	case store.ModalFeeds:
		ctx.Feeds = view.FeedsForm{Cursor: m.feedCursor, Disabled: m.disabledFeeds}
		switch m.inputOn {
		case inputAddFeed:
			ctx.Feeds.Input, ctx.Feeds.InputLabel = m.input.View(), "ADD FEED"
		case inputDiscover:
			ctx.Feeds.Input, ctx.Feeds.InputLabel = m.input.View(), "DISCOVER FROM"
		}
	}
	return ctx
}

// syncDetail rebuilds the viewport content for the selected article. A new
// article or a resize starts from the top.
func (m *Model) syncDetail(resized bool) {
	st := m.store.Get()
	width := tuitheme.LayoutWidth(st.Settings.Layout, m.width)
	m.detail.Width = width
	m.detail.Height = view.DetailHeight(m.height, st.Notice != "")
	if st.View != store.ViewDetail || st.SelectedArticle == nil {
		m.detailURL = ""
		return
	}
	lines := view.DetailLines(*st.SelectedArticle, m.now, width, m.theme)
	m.detail.SetContent(strings.Join(lines, "\n"))
	if resized || st.SelectedArticle.URL != m.detailURL {
		m.detail.GotoTop()
	}
	m.detailURL = st.SelectedArticle.URL
}

// refresh starts a fetch. Overlapping fetches are allowed; the last response
// to arrive replaces the article set.
func (m *Model) refresh(source string) tea.Cmd {
	if m.service == nil {
		return nil
	}
	m.reader.BeginFetch()
	return tuiactions.RefreshCmd(m.service, source)
}

func (m *Model) alert(matches []alert.Match) tea.Cmd {
	if len(matches) == 0 {
		return nil
	}
	if len(matches) == 1 {
		m.reader.Notify("KEYWORD ALERT: " + strings.ToUpper(matches[0].Keyword))
	} else {
		m.reader.Notify(fmt.Sprintf("%d KEYWORD ALERTS", len(matches)))
	}
	if m.alerter == nil {
		return nil
	}
	return tuiactions.SendAlertsCmd(m.alerter, matches)
}

// settingsChanged re-derives everything that hangs off the current settings.
func (m *Model) settingsChanged() tea.Cmd {
	return tea.Batch(m.armAutoRefresh(), m.requestPermission())
}

// armAutoRefresh replaces the repeating refresh timer when the interval
// changed. Older timers are dropped by their generation.
func (m *Model) armAutoRefresh() tea.Cmd {
	secs := m.store.Get().Settings.AutoRefreshSeconds
	if secs == m.autoRefreshSecs {
		return nil
	}
	m.autoRefreshGen++
	m.autoRefreshSecs = secs
	if secs <= 0 {
		return nil
	}
	return autoRefreshCmd(m.autoRefreshGen, secs)
}

func (m *Model) requestPermission() tea.Cmd {
	if m.alerter == nil || m.permissionAsked || !m.store.Get().Settings.NotificationsEnabled {
		return nil
	}
	m.permissionAsked = true
	return tuiactions.RequestPermissionCmd(m.alerter)
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func autoRefreshCmd(gen, secs int) tea.Cmd {
	return tea.Tick(time.Duration(secs)*time.Second, func(time.Time) tea.Msg {
		return autoRefreshMsg{gen: gen}
	})
}

func clearNoticeCmd(seq int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

func digitTimeoutCmd(t *keyboard.Timer) tea.Cmd {
	token := t.Token
	return tea.Tick(t.Delay, func(time.Time) tea.Msg {
		return digitTimeoutMsg{token: token}
	})
}
