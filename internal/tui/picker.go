// Package tui provides the interactive persona and voice picker.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/paper2pod/internal/appconfig"
)

// ErrCancelled is returned when the user quits the picker without choosing.
var ErrCancelled = errors.New("selection cancelled")

// Selection is the persona and voices chosen by the user.
type Selection struct {
	Persona    string
	HostVoice  string
	GuestVoice string
}

// pickerStep is the list currently shown.
type pickerStep int

const (
	stepPersona pickerStep = iota
	stepHostVoice
	stepGuestVoice
	stepDone
)

var (
	titleStyle   = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginLeft(2)
)

// item represents a selectable entry in a picker list.
type item struct {
	id    string
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

// model is the Bubble Tea model for the picker.
type model struct {
	step      pickerStep
	lists     [3]list.Model
	selection Selection
	cancelled bool
}

func newModel(current Selection) *model {
	personaItems := make([]list.Item, 0, len(appconfig.Personas()))
	for _, p := range appconfig.Personas() {
		personaItems = append(personaItems, item{id: p.Name, title: p.Label, desc: p.Description})
	}
	voiceItems := make([]list.Item, 0, len(appconfig.Voices()))
	for _, v := range appconfig.Voices() {
		voiceItems = append(voiceItems, item{id: v.ID, title: v.Label, desc: fmt.Sprintf("%s voice (%s)", v.Gender, v.ID)})
	}

	m := &model{selection: current}
	m.lists[stepPersona] = newList("Choose a podcast style", personaItems, current.Persona)
	m.lists[stepHostVoice] = newList("Choose the host voice", voiceItems, current.HostVoice)
	m.lists[stepGuestVoice] = newList("Choose the guest voice", voiceItems, current.GuestVoice)
	return m
}

func newList(title string, items []list.Item, selected string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.Styles.Title = titleStyle
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	for i, it := range items {
		if strings.EqualFold(it.(item).id, selected) {
			l.Select(i)
			break
		}
	}
	return l
}

// Init satisfies tea.Model.
func (m *model) Init() tea.Cmd { return nil }

// Update handles key presses and window resizing.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			chosen, ok := m.lists[m.step].SelectedItem().(item)
			if !ok {
				return m, nil
			}
			switch m.step {
			case stepPersona:
				m.selection.Persona = chosen.id
			case stepHostVoice:
				m.selection.HostVoice = chosen.id
			case stepGuestVoice:
				m.selection.GuestVoice = chosen.id
			}
			m.step++
			if m.step == stepDone {
				return m, tea.Quit
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		for i := range m.lists {
			m.lists[i].SetSize(msg.Width-2, msg.Height-4)
		}
	}

	if m.step == stepDone {
		return m, nil
	}
	var cmd tea.Cmd
	m.lists[m.step], cmd = m.lists[m.step].Update(msg)
	return m, cmd
}

// View renders the current list and the choices made so far.
func (m *model) View() string {
	if m.step == stepDone {
		return ""
	}
	summary := fmt.Sprintf("style=%s  host=%s  guest=%s", m.selection.Persona, m.selection.HostVoice, m.selection.GuestVoice)
	return m.lists[m.step].View() + "\n" + summaryStyle.Render(summary)
}

// Pick runs the picker, starting from current, and returns the user's choices.
func Pick(current Selection) (Selection, error) {
	m := newModel(current)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return Selection{}, fmt.Errorf("run picker: %w", err)
	}
	result, ok := final.(*model)
	if !ok || result.cancelled || result.step != stepDone {
		return Selection{}, ErrCancelled
	}
	return result.selection, nil
}
