package keyboard

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestFromKeyMsg(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want Key
	}{
		{name: "letter", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}}, want: Key{Name: "n"}},
		{name: "shifted letter", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'N'}}, want: Key{Name: "n"}},
		{name: "digit", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'7'}}, want: Key{Name: "7"}},
		{name: "enter", msg: tea.KeyMsg{Type: tea.KeyEnter}, want: Key{Name: "enter"}},
		{name: "escape", msg: tea.KeyMsg{Type: tea.KeyEsc}, want: Key{Name: "esc"}},
		{name: "arrow", msg: tea.KeyMsg{Type: tea.KeyDown}, want: Key{Name: "down"}},
		{name: "alt letter", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}, Alt: true}, want: Key{Name: "n", Alt: true}},
		{name: "ctrl", msg: tea.KeyMsg{Type: tea.KeyCtrlR}, want: Key{Name: "ctrl+r", Ctrl: true}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := FromKeyMsg(tc.msg); got != tc.want {
				t.Fatalf("FromKeyMsg() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestHandleKey_DigitsThenEnterSelectsArticle(t *testing.T) {
	in := New(DefaultKeyMap(), 0)
	in.HandleKey(Key{Name: "4"}, FocusNone)
	res := in.HandleKey(Key{Name: "2"}, FocusNone)
	if res.Arm == nil || res.Arm.Delay != DefaultDigitDelay {
		t.Fatalf("expected timer armed with default delay, got %+v", res.Arm)
	}
	stale := res.Arm.Token

	res = in.HandleKey(Key{Name: "enter"}, FocusNone)
	if len(res.Actions) != 1 || res.Actions[0] != (Action{Command: CmdSelectArticle, Arg: 42}) {
		t.Fatalf("unexpected actions: %+v", res.Actions)
	}
	if !res.DigitsChanged || res.Digits != "" {
		t.Fatalf("expected digit display cleared, got %+v", res)
	}
	if got := in.Fire(stale); len(got.Actions) != 0 || got.DigitsChanged {
		t.Fatalf("expected cancelled timer to be ignored, got %+v", got)
	}
}

func TestHandleKey_CustomDelay(t *testing.T) {
	in := New(DefaultKeyMap(), 300*time.Millisecond)
	res := in.HandleKey(Key{Name: "1"}, FocusNone)
	if res.Arm == nil || res.Arm.Delay != 300*time.Millisecond {
		t.Fatalf("unexpected timer: %+v", res.Arm)
	}
}

func TestHandleKey_OverflowingBufferSelectsNothing(t *testing.T) {
	in := New(DefaultKeyMap(), 0)
	for i := 0; i < 30; i++ {
		in.HandleKey(Key{Name: "9"}, FocusNone)
	}
	res := in.HandleKey(Key{Name: "enter"}, FocusNone)
	if len(res.Actions) != 0 {
		t.Fatalf("expected no action for an out of range number, got %+v", res.Actions)
	}
	if in.Mode() != Idle {
		t.Fatalf("expected idle after commit, got %s", in.Mode())
	}
}

func TestHandleKey_DisabledBindingIsIgnored(t *testing.T) {
	keys := DefaultKeyMap()
	keys.Quit.SetEnabled(false)
	in := New(keys, 0)
	if res := in.HandleKey(Key{Name: "q"}, FocusNone); len(res.Actions) != 0 {
		t.Fatalf("expected disabled binding to be ignored, got %+v", res.Actions)
	}
}

func TestCommandString(t *testing.T) {
	if got := (Action{Command: CmdMoveHighlight, Arg: -1}).String(); got != "move-highlight -1" {
		t.Fatalf("unexpected action string: %q", got)
	}
	if got := Command(999).String(); got != "unknown" {
		t.Fatalf("unexpected command string: %q", got)
	}
}
