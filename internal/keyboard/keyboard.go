// Package keyboard turns key presses into reader commands. It owns the
// "type a number to jump to an article" buffer and the single timer that
// commits it; the caller schedules that timer and reports back with Fire.
package keyboard

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const DefaultDigitDelay = 800 * time.Millisecond

type Command int

const (
	CmdNextPage Command = iota + 1
	CmdPrevPage
	CmdRefresh
	CmdToggleBookmark
	CmdOpenSettings
	CmdOpenFeeds
	CmdBack
	CmdMoveHighlight
	CmdOpenFilter
	CmdCloseFilter
	CmdOpenInBrowser
	CmdCopyURL
	CmdToggleRead
	CmdHelp
	CmdQuit
	CmdSelectHighlighted
	CmdSelectArticle
)

var commandNames = map[Command]string{
	CmdNextPage:          "next-page",
	CmdPrevPage:          "prev-page",
	CmdRefresh:           "refresh",
	CmdToggleBookmark:    "toggle-bookmark",
	CmdOpenSettings:      "open-settings",
	CmdOpenFeeds:         "open-feeds",
	CmdBack:              "back",
	CmdMoveHighlight:     "move-highlight",
	CmdOpenFilter:        "open-filter",
	CmdCloseFilter:       "close-filter",
	CmdOpenInBrowser:     "open-in-browser",
	CmdCopyURL:           "copy-url",
	CmdToggleRead:        "toggle-read",
	CmdHelp:              "help",
	CmdQuit:              "quit",
	CmdSelectHighlighted: "select-highlighted",
	CmdSelectArticle:     "select-article",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Action is one command to dispatch. Arg is the highlight delta for
// CmdMoveHighlight and the 1-based article number for CmdSelectArticle.
type Action struct {
	Command Command
	Arg     int
}

func (a Action) String() string {
	switch a.Command {
	case CmdMoveHighlight, CmdSelectArticle:
		return a.Command.String() + " " + strconv.Itoa(a.Arg)
	default:
		return a.Command.String()
	}
}

// Key is a normalized key press. Name uses bubbletea key names ("enter",
// "esc", "up", "n").
type Key struct {
	Name string
	Ctrl bool
	Alt  bool
}

func (k Key) String() string { return k.Name }

// FromKeyMsg converts a bubbletea key message. Single letters are folded to
// lower case so shifted letters trigger the same shortcut.
func FromKeyMsg(msg tea.KeyMsg) Key {
	name := msg.String()
	k := Key{Alt: msg.Alt}
	name = strings.TrimPrefix(name, "alt+")
	if strings.HasPrefix(name, "ctrl+") {
		k.Ctrl = true
	}
	if len(msg.Runes) == 1 && msg.Type == tea.KeyRunes {
		name = strings.ToLower(string(msg.Runes))
	}
	k.Name = name
	return k
}

// Focus describes where keyboard input is going.
type Focus int

const (
	FocusNone Focus = iota
	FocusFilterInput
	FocusTextInput
)

type Mode int

const (
	Idle Mode = iota
	Buffering
)

func (m Mode) String() string {
	if m == Buffering {
		return "buffering"
	}
	return "idle"
}

// Timer asks the caller to call Fire(Token) after Delay.
type Timer struct {
	Token int
	Delay time.Duration
}

// Result is what a key press or timer firing produced. When DigitsChanged is
// set the digit display should show Digits, or be hidden if Digits is empty.
type Result struct {
	Actions       []Action
	DigitsChanged bool
	Digits        string
	Arm           *Timer
}

// Interpreter is not safe for concurrent use.
type Interpreter struct {
	keys  KeyMap
	delay time.Duration
	mode  Mode
	buf   string
	gen   int
}

func New(keys KeyMap, delay time.Duration) *Interpreter {
	if delay <= 0 {
		delay = DefaultDigitDelay
	}
	return &Interpreter{keys: keys, delay: delay}
}

func (in *Interpreter) Mode() Mode     { return in.mode }
func (in *Interpreter) Buffer() string { return in.buf }

// HandleKey processes one key press under the given focus.
func (in *Interpreter) HandleKey(k Key, focus Focus) Result {
	switch focus {
	case FocusFilterInput:
		if k.Name == "esc" {
			return Result{Actions: []Action{{Command: CmdCloseFilter}}}
		}
		return Result{}
	case FocusTextInput:
		return Result{}
	}
	if k.Ctrl || k.Alt {
		return Result{}
	}

	if isDigit(k.Name) {
		in.mode = Buffering
		in.buf += k.Name
		in.gen++
		return Result{
			DigitsChanged: true,
			Digits:        in.buf,
			Arm:           &Timer{Token: in.gen, Delay: in.delay},
		}
	}

	if k.Name == "enter" {
		if in.mode == Buffering {
			return in.commit()
		}
		return Result{Actions: []Action{{Command: CmdSelectHighlighted}}}
	}

	var res Result
	if in.mode == Buffering {
		in.reset()
		res.DigitsChanged = true
	}
	if a, ok := in.dispatch(k); ok {
		res.Actions = []Action{a}
	}
	return res
}

// Fire commits the buffer if token belongs to the live timer. Stale tokens
// from cancelled or re-armed timers are ignored.
func (in *Interpreter) Fire(token int) Result {
	if in.mode != Buffering || token != in.gen {
		return Result{}
	}
	return in.commit()
}

func (in *Interpreter) commit() Result {
	n, err := strconv.Atoi(in.buf)
	in.reset()
	res := Result{DigitsChanged: true}
	if err == nil && n > 0 {
		res.Actions = []Action{{Command: CmdSelectArticle, Arg: n}}
	}
	return res
}

// reset clears the buffer and invalidates any pending timer.
func (in *Interpreter) reset() {
	in.mode = Idle
	in.buf = ""
	in.gen++
}

func (in *Interpreter) dispatch(k Key) (Action, bool) {
	switch {
	case key.Matches(k, in.keys.NextPage):
		return Action{Command: CmdNextPage}, true
	case key.Matches(k, in.keys.PrevPage):
		return Action{Command: CmdPrevPage}, true
	case key.Matches(k, in.keys.Refresh):
		return Action{Command: CmdRefresh}, true
	case key.Matches(k, in.keys.ToggleBookmark):
		return Action{Command: CmdToggleBookmark}, true
	case key.Matches(k, in.keys.Settings):
		return Action{Command: CmdOpenSettings}, true
	case key.Matches(k, in.keys.Feeds):
		return Action{Command: CmdOpenFeeds}, true
	case key.Matches(k, in.keys.Back):
		return Action{Command: CmdBack}, true
	case key.Matches(k, in.keys.Down):
		return Action{Command: CmdMoveHighlight, Arg: 1}, true
	case key.Matches(k, in.keys.Up):
		return Action{Command: CmdMoveHighlight, Arg: -1}, true
	case key.Matches(k, in.keys.Filter):
		return Action{Command: CmdOpenFilter}, true
	case key.Matches(k, in.keys.Open):
		return Action{Command: CmdOpenInBrowser}, true
	case key.Matches(k, in.keys.Copy):
		return Action{Command: CmdCopyURL}, true
	case key.Matches(k, in.keys.ToggleRead):
		return Action{Command: CmdToggleRead}, true
	case key.Matches(k, in.keys.Help):
		return Action{Command: CmdHelp}, true
	case key.Matches(k, in.keys.Quit):
		return Action{Command: CmdQuit}, true
	}
	return Action{}, false
}

func isDigit(name string) bool {
	return len(name) == 1 && name[0] >= '0' && name[0] <= '9'
}
