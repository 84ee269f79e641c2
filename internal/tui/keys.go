package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/teletext-cli/internal/api"
	"github.com/glabrego/teletext-cli/internal/keyboard"
	"github.com/glabrego/teletext-cli/internal/store"
	tuiactions "github.com/glabrego/teletext-cli/internal/tui/actions"
	"github.com/glabrego/teletext-cli/internal/tui/platform"
	tuistate "github.com/glabrego/teletext-cli/internal/tui/state"
	"github.com/glabrego/teletext-cli/internal/tui/view"
)

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	if m.inputOn != inputNone {
		return m.handleInputKey(msg)
	}
	st := m.store.Get()
	switch st.Modal {
	case store.ModalSettings:
		return m.handleSettingsKey(msg)
	case store.ModalFeeds:
		return m.handleFeedsKey(msg)
	case store.ModalHelp:
		switch msg.String() {
		case "esc", "?", "enter":
			m.reader.CloseModal()
			return nil
		case "q":
			return tea.Quit
		}
		return nil
	}

	filtering := st.FilterMode
	focus := keyboard.FocusNone
	if filtering {
		focus = keyboard.FocusFilterInput
		if msg.Type == tea.KeyEnter {
			m.filter.Blur()
			m.reader.ConfirmFilter()
			return nil
		}
	}
	cmd := m.applyResult(m.keyboard.HandleKey(keyboard.FromKeyMsg(msg), focus))
	if filtering && st.FilterMode && msg.Type != tea.KeyEsc {
		var inputCmd tea.Cmd
		m.filter, inputCmd = m.filter.Update(msg)
		if v := m.filter.Value(); v != st.FilterText {
			m.reader.SetFilter(v)
		}
		return tea.Batch(cmd, inputCmd)
	}
	return cmd
}

// applyResult mirrors the digit buffer and runs the interpreter's actions.
func (m *Model) applyResult(res keyboard.Result) tea.Cmd {
	if res.DigitsChanged {
		m.digits = res.Digits
	}
	cmds := make([]tea.Cmd, 0, len(res.Actions)+1)
	if res.Arm != nil {
		cmds = append(cmds, digitTimeoutCmd(res.Arm))
	}
	for _, a := range res.Actions {
		m.logger.Debug("key action", "action", a.String())
		cmds = append(cmds, m.dispatch(a))
	}
	return tea.Batch(cmds...)
}

func (m *Model) dispatch(a keyboard.Action) tea.Cmd {
	st := m.store.Get()
	switch a.Command {
	case keyboard.CmdNextPage:
		m.reader.NextPage()
	case keyboard.CmdPrevPage:
		m.reader.PrevPage()
	case keyboard.CmdRefresh:
		return m.refresh("manual")
	case keyboard.CmdToggleBookmark:
		m.reader.ToggleBookmark()
	case keyboard.CmdOpenSettings:
		m.settingsForm = view.SettingsForm{Draft: st.Settings}
		m.reader.OpenModal(store.ModalSettings)
	case keyboard.CmdOpenFeeds:
		m.feedCursor = 0
		m.disabledFeeds = m.reader.DisabledFeeds()
		m.reader.OpenModal(store.ModalFeeds)
		if m.service != nil {
			return tuiactions.LoadFeedsCmd(m.service)
		}
	case keyboard.CmdBack:
		switch {
		case st.Modal != store.ModalNone:
			m.reader.CloseModal()
		case st.View != store.ViewList:
			m.reader.Back()
		case st.FilterText != "":
			m.filter.SetValue("")
			m.reader.CloseFilter()
		}
	case keyboard.CmdMoveHighlight:
		if st.View == store.ViewDetail {
			m.detail.SetYOffset(m.detail.YOffset + a.Arg)
			return nil
		}
		m.reader.MoveHighlight(a.Arg)
	case keyboard.CmdOpenFilter:
		if st.View != store.ViewList {
			return nil
		}
		m.filter.SetValue(st.FilterText)
		m.filter.CursorEnd()
		m.reader.OpenFilter()
		return m.filter.Focus()
	case keyboard.CmdCloseFilter:
		m.filter.Blur()
		m.filter.SetValue("")
		m.reader.CloseFilter()
	case keyboard.CmdOpenInBrowser, keyboard.CmdCopyURL:
		art, ok := m.reader.Highlighted()
		if !ok {
			m.reader.Notify("NO ARTICLE SELECTED")
			return nil
		}
		url, err := platform.ValidateArticleURL(art.URL)
		if err != nil {
			m.reader.Notify("INVALID URL")
			return nil
		}
		if a.Command == keyboard.CmdCopyURL {
			return tuiactions.CopyURLCmd(url, m.copyURLFn)
		}
		return tuiactions.OpenURLCmd(url, m.openURLFn, m.copyURLFn)
	case keyboard.CmdToggleRead:
		if art, ok := m.reader.Highlighted(); ok {
			m.reader.ToggleReadFor(art.URL)
		}
	case keyboard.CmdHelp:
		m.reader.OpenModal(store.ModalHelp)
	case keyboard.CmdQuit:
		return tea.Quit
	case keyboard.CmdSelectHighlighted:
		m.reader.SelectHighlighted()
	case keyboard.CmdSelectArticle:
		if !m.reader.SelectArticle(a.Arg) {
			m.reader.Notify(fmt.Sprintf("ARTICLE %d NOT FOUND", a.Arg))
		}
	}
	return nil
}

func (m *Model) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	form := &m.settingsForm
	field := view.SettingsField(form.Cursor)
	switch msg.String() {
	case "esc":
		m.reader.CloseModal()
	case "up", "k":
		form.Cursor = tuistate.ClampCursor(form.Cursor-1, view.SettingsFieldCount)
	case "down", "j", "tab":
		form.Cursor = tuistate.ClampCursor(form.Cursor+1, view.SettingsFieldCount)
	case "left", "h", "-":
		form.Draft = adjustSetting(form.Draft, field, -1)
	case "right", "l", "+", " ":
		form.Draft = adjustSetting(form.Draft, field, 1)
	case "enter":
		switch field {
		case view.FieldKeywords:
			return m.startInput(inputKeywords, strings.Join(form.Draft.KeywordAlerts, ", "), "go, election")
		case view.FieldSave:
			return m.saveSettings()
		default:
			form.Draft = adjustSetting(form.Draft, field, 1)
		}
	case "q":
		return tea.Quit
	}
	return nil
}

func (m *Model) saveSettings() tea.Cmd {
	applied := m.reader.ApplySettings(m.settingsForm.Draft)
	m.reader.CloseModal()
	cmds := []tea.Cmd{m.settingsChanged()}
	if m.service != nil {
		cmds = append(cmds, tuiactions.PushSettingsCmd(m.service, applied))
	} else {
		m.reader.Notify("SETTINGS SAVED")
	}
	return tea.Batch(cmds...)
}

// adjustSetting steps one field of s forwards (dir > 0) or backwards.
func adjustSetting(s api.Settings, f view.SettingsField, dir int) api.Settings {
	switch f {
	case view.FieldTheme:
		s.Theme = step(api.Themes, s.Theme, dir)
	case view.FieldLayout:
		s.Layout = step(api.Layouts, s.Layout, dir)
	case view.FieldFont:
		s.Font = step(api.Fonts, s.Font, dir)
	case view.FieldPerPage:
		s.ArticlesPerPage = min(api.MaxArticlesPerPage, max(api.MinArticlesPerPage, api.ClampPerPage(s.ArticlesPerPage)+dir))
	case view.FieldInfiniteScroll:
		s.InfiniteScroll = !s.InfiniteScroll
	case view.FieldNotifications:
		s.NotificationsEnabled = !s.NotificationsEnabled
	case view.FieldAutoRefresh:
		s.AutoRefreshSeconds = stepInt(autoRefreshSteps, s.AutoRefreshSeconds, dir)
	}
	return s
}

func step(options []string, current string, dir int) string {
	if dir >= 0 {
		return api.Next(options, current)
	}
	for i, o := range options {
		if o == current {
			return options[(i-1+len(options))%len(options)]
		}
	}
	return options[0]
}

func stepInt(options []int, current, dir int) int {
	for i, o := range options {
		if o == current {
			return options[(i+dir+len(options))%len(options)]
		}
	}
	return options[0]
}

func (m *Model) handleFeedsKey(msg tea.KeyMsg) tea.Cmd {
	st := m.store.Get()
	total := len(st.Feeds) + len(st.DiscoveredFeeds)
	switch msg.String() {
	case "esc":
		m.reader.CloseModal()
	case "up", "k":
		m.feedCursor = tuistate.ClampCursor(m.feedCursor-1, total)
	case "down", "j":
		m.feedCursor = tuistate.ClampCursor(m.feedCursor+1, total)
	case " ":
		if m.feedCursor < len(st.Feeds) {
			m.reader.ToggleFeed(st.Feeds[m.feedCursor])
			m.disabledFeeds = m.reader.DisabledFeeds()
		}
	case "x":
		if m.feedCursor < len(st.Feeds) && m.service != nil {
			return tuiactions.RemoveFeedCmd(m.service, st.Feeds[m.feedCursor])
		}
	case "a":
		return m.startInput(inputAddFeed, "", "https://example.com/rss")
	case "d":
		return m.startInput(inputDiscover, "", "https://example.com")
	case "r":
		if m.service != nil {
			return tuiactions.LoadFeedsCmd(m.service)
		}
	case "enter":
		i := m.feedCursor - len(st.Feeds)
		if i >= 0 && i < len(st.DiscoveredFeeds) && m.service != nil {
			return tuiactions.AddFeedCmd(m.service, st.DiscoveredFeeds[i].URL)
		}
	case "q":
		return tea.Quit
	}
	return nil
}

func (m *Model) clampFeedCursor() {
	st := m.store.Get()
	m.feedCursor = tuistate.ClampCursor(m.feedCursor, len(st.Feeds)+len(st.DiscoveredFeeds))
}

func (m *Model) startInput(mode inputMode, value, placeholder string) tea.Cmd {
	m.inputOn = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) stopInput() {
	m.inputOn = inputNone
	m.input.Blur()
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.stopInput()
		return nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.inputOn
		m.stopInput()
		switch mode {
		case inputKeywords:
			m.settingsForm.Draft.KeywordAlerts = splitKeywords(value)
		case inputAddFeed:
			if value != "" && m.service != nil {
				return tuiactions.AddFeedCmd(m.service, value)
			}
		case inputDiscover:
			if value != "" && m.service != nil {
				return tuiactions.DiscoverFeedsCmd(m.service, value)
			}
		}
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
