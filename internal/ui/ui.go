package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunehost/internal/host"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	ResultView
)

var _ list.Item = actionItem{}

// actionItem wraps a [host.Action] to implement [list.Item].
type actionItem struct {
	location string
	action   *host.Action
}

func (i actionItem) FilterValue() string { return i.action.Text }
func (i actionItem) Title() string       { return i.action.Text }
func (i actionItem) Description() string {
	if !i.action.Enabled() {
		return fmt.Sprintf("%s • disabled", i.location)
	}
	return i.location
}

type actionDoneMsg struct {
	text string
	err  error
}

// MenuModel browses and triggers plugin menu actions.
type MenuModel struct {
	ctx     context.Context
	view    ViewState
	ui      *host.UserInterface
	width   int
	height  int
	actions list.Model
	last    *actionDoneMsg
	help    help.Model
	keys    keyMap
}

// NewMenuModel creates a model listing every action in ui, grouped by location.
func NewMenuModel(ctx context.Context, ui *host.UserInterface) *MenuModel {
	var items []list.Item
	for _, loc := range ui.Locations() {
		for _, a := range ui.MenuItems(loc) {
			items = append(items, actionItem{location: loc, action: a})
		}
	}

	actions := list.New(items, list.NewDefaultDelegate(), 0, 0)
	actions.Title = "Plugin Actions"
	actions.SetShowHelp(false)

	return &MenuModel{
		ctx:     ctx,
		view:    MenuView,
		ui:      ui,
		actions: actions,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init implements [tea.Model].
func (m *MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.actions.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MenuView:
			return m.handleMenuKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case actionDoneMsg:
		m.last = &msg
		m.view = ResultView
		return m, nil
	}

	var cmd tea.Cmd
	m.actions, cmd = m.actions.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *MenuModel) View() string {
	switch m.view {
	case ResultView:
		return m.renderResult()
	default:
		return m.renderMenu()
	}
}

func (m *MenuModel) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.actions.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.actions, cmd = m.actions.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.actions.SelectedItem().(actionItem); ok {
			return m, m.trigger(item.action)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.actions, cmd = m.actions.Update(msg)
	return m, cmd
}

func (m *MenuModel) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		m.view = MenuView
	}
	return m, nil
}

func (m *MenuModel) trigger(a *host.Action) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{text: a.Text, err: a.Trigger(m.ctx)}
	}
}

func (m *MenuModel) renderMenu() string {
	if len(m.actions.Items()) == 0 {
		return fmt.Sprintf("%s\n%s\n\n%s",
			styles.Title("Plugin Actions"),
			styles.Warn("No plugin added a menu action."),
			m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	}
	return fmt.Sprintf("%s\n\n%s", m.actions.View(), m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m *MenuModel) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	if m.last.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.Err(fmt.Sprintf("%s failed: %v", m.last.text, m.last.err)), helpView)
	}
	return fmt.Sprintf("%s\n\n%s", styles.OK(fmt.Sprintf("✓ %s", m.last.text)), helpView)
}
