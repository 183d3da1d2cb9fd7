package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(m *model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func TestPickerWalksAllSteps(t *testing.T) {
	m := newModel(Selection{Persona: "standard", HostVoice: "alloy", GuestVoice: "echo"})
	press(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.selection.Persona != "debate" {
		t.Fatalf("expected debate persona after moving down, got %q", m.selection.Persona)
	}
	if m.step != stepHostVoice {
		t.Fatalf("expected host voice step, got %d", m.step)
	}

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.selection.HostVoice != "alloy" {
		t.Fatalf("expected preselected host voice kept, got %q", m.selection.HostVoice)
	}
	if !strings.Contains(m.View(), "host=alloy") {
		t.Fatalf("expected summary in view, got %q", m.View())
	}

	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.step != stepDone || m.selection.GuestVoice != "echo" {
		t.Fatalf("unexpected final state step=%d selection=%+v", m.step, m.selection)
	}
	if cmd == nil {
		t.Fatal("expected quit command after last step")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestPickerPreselectsCurrentValues(t *testing.T) {
	m := newModel(Selection{Persona: "eli5", HostVoice: "nova", GuestVoice: "onyx"})
	chosen := m.lists[stepHostVoice].SelectedItem().(item)
	if chosen.id != "nova" {
		t.Fatalf("expected nova preselected, got %q", chosen.id)
	}
	if got := m.lists[stepPersona].SelectedItem().(item).id; got != "eli5" {
		t.Fatalf("expected eli5 preselected, got %q", got)
	}
}

func TestPickerCancel(t *testing.T) {
	m := newModel(Selection{})
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !m.cancelled {
		t.Fatal("expected cancel on q")
	}
}
