// Package tui is the terminal front end of the duel.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/duelul-ideilor/internal/duel"
	"github.com/tatianab/duelul-ideilor/internal/models"
	"github.com/tatianab/duelul-ideilor/internal/report"
)

type screen int

const (
	screenDashboard screen = iota
	screenDuel
	screenChallenge
	screenGameOver
	screenRules
)

// Deps wires the UI to the oracle and the on-disk store.
type Deps struct {
	Oracle        duel.Oracle
	Store         *models.Store
	Logger        *slog.Logger
	CallTimeout   time.Duration
	ImageMinScore int
}

type model struct {
	deps   Deps
	screen screen
	back   screen

	theme  models.Theme
	styles styles

	settings models.Settings
	dash     dashboard

	session  *duel.Session
	snapshot duel.State
	cursor   int
	busy     bool
	notice   string
	err      error

	challenge challengeForm

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
}

// NewModel builds the UI in the dashboard screen with the saved theme.
func NewModel(deps Deps) model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	theme := models.ThemeDark
	if deps.Store != nil {
		if prefs, err := deps.Store.LoadPreferences(); err == nil {
			theme = prefs.Theme
		} else {
			deps.Logger.Warn("could not load preferences", "error", err)
		}
	}

	ti := textinput.New()
	ti.Placeholder = duel.DefaultDraft
	ti.CharLimit = 280
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		deps:     deps,
		screen:   screenDashboard,
		theme:    theme,
		styles:   newStyles(theme),
		settings: models.NewSettings(models.DefaultTier),
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// Results of session calls carry the session that issued them; a result
// for a session the player already left is dropped.

type turnDoneMsg struct {
	session *duel.Session
	err     error
}

type endDoneMsg struct {
	session *duel.Session
	err     error
}

type challengeDoneMsg struct {
	session *duel.Session
	record  *models.ChallengeRecord
	err     error
}

type explanationMsg struct {
	session *duel.Session
	id      string
	text    string
	err     error
}

type imageMsg struct {
	session *duel.Session
	ref     string
	err     error
}

type reportSavedMsg struct {
	path string
	err  error
}

type prefsSavedMsg struct{ err error }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.session != nil {
				m.session.Close()
			}
			return m, tea.Quit
		case "ctrl+t":
			m.theme = m.theme.Toggle()
			m.styles = newStyles(m.theme)
			m.refresh()
			return m, m.savePreferences()
		}
		switch m.screen {
		case screenDashboard:
			return m.updateDashboard(msg)
		case screenDuel:
			return m.updateDuel(msg)
		case screenChallenge:
			return m.updateChallenge(msg)
		case screenGameOver:
			return m.updateGameOver(msg)
		case screenRules:
			return m.updateRules(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = int(float64(msg.Width) * 0.72)
		m.viewport.Height = max(5, msg.Height-8)
		m.input.Width = max(20, m.viewport.Width-4)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case turnDoneMsg:
		if m.stale(msg.session) {
			return m, nil
		}
		m.busy = false
		m.handleSessionErr(msg.err)
		m.syncSession()
		m.cursor = max(0, len(models.DuelMessages(m.snapshot.History))-1)
		m.refresh()
		return m, nil

	case endDoneMsg:
		if m.stale(msg.session) {
			return m, nil
		}
		m.busy = false
		m.handleSessionErr(msg.err)
		m.syncSession()
		return m, nil

	case challengeDoneMsg:
		if m.stale(msg.session) {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			m.handleSessionErr(msg.err)
		} else if msg.record.Approved {
			m.notice = fmt.Sprintf("Contestația #%d a fost aprobată.", msg.record.Number)
		} else {
			m.notice = fmt.Sprintf("Contestația #%d a fost respinsă.", msg.record.Number)
		}
		m.challenge = challengeForm{}
		m = m.closeChallenge()
		return m, textinput.Blink

	case explanationMsg:
		if m.stale(msg.session) {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			m.handleSessionErr(msg.err)
		} else {
			m.notice = msg.text
		}
		m.syncSession()
		return m, nil

	case imageMsg:
		if m.stale(msg.session) {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			m.notice = fmt.Sprintf("Nu am putut genera imaginea: %v", msg.err)
		} else {
			m.notice = "Imagine salvată în " + msg.ref
		}
		m.syncSession()
		return m, nil

	case reportSavedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Raportul nu a putut fi salvat: %v", msg.err)
		} else {
			m.notice = "Raport salvat în " + msg.path
		}
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.deps.Logger.Warn("could not save preferences", "error", msg.err)
		}
		return m, nil
	}

	if m.screen == screenDuel || m.screen == screenChallenge {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	var s string
	switch m.screen {
	case screenDashboard:
		s = m.viewDashboard()
	case screenDuel:
		s = m.viewDuel()
	case screenChallenge:
		s = m.viewChallenge()
	case screenGameOver:
		s = m.viewGameOver()
	case screenRules:
		s = lipgloss.JoinVertical(lipgloss.Left,
			m.styles.title.Render("REGULAMENT"),
			m.viewport.View(),
			m.styles.help.Render("↑/↓ derulare • esc înapoi"),
		)
	}
	return "\n" + s + "\n"
}

func (m model) updateRules(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "ctrl+r":
		m.screen = m.back
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) showRules() {
	m.back = m.screen
	m.screen = screenRules
	m.viewport.SetContent(m.styles.text.Width(m.viewport.Width).Render(models.Rulebook()))
	m.viewport.GotoTop()
}

// syncSession refreshes the cached snapshot and follows the session into
// the game-over screen.
func (m *model) syncSession() {
	if m.session == nil {
		return
	}
	m.snapshot = m.session.Snapshot()
	if m.snapshot.Mode == duel.ModeEnded && m.screen != screenGameOver {
		m.screen = screenGameOver
		m.input.Blur()
	}
	if n := len(models.DuelMessages(m.snapshot.History)); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	m.refresh()
}

func (m *model) refresh() {
	switch m.screen {
	case screenDuel:
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
	case screenGameOver:
		m.viewport.SetContent(m.renderGameOver())
	}
}

func (m model) stale(s *duel.Session) bool {
	if s != m.session {
		m.deps.Logger.Debug("dropping result of a closed duel")
		return true
	}
	return false
}

func (m *model) handleSessionErr(err error) {
	if err == nil {
		m.err = nil
		return
	}
	m.deps.Logger.Warn("session intent failed", "error", err)
	m.err = err
}

func (m model) startDuel() (model, tea.Cmd) {
	images := duel.ImageStore(nil)
	if m.deps.Store != nil {
		images = m.deps.Store
	}
	s, err := duel.NewSession(m.deps.Oracle, m.settings, duel.Options{
		Logger:        m.deps.Logger,
		CallTimeout:   m.deps.CallTimeout,
		ImageMinScore: m.deps.ImageMinScore,
		Images:        images,
	})
	if err != nil {
		m.err = err
		return m, nil
	}
	m.session = s
	m.cursor = 0
	m.notice = ""
	m.err = nil
	m.screen = screenDuel
	m.input.SetValue(duel.DefaultDraft)
	m.input.CursorEnd()
	m.input.Focus()
	m.syncSession()
	return m, textinput.Blink
}

func (m model) leaveDuel() model {
	if m.session != nil {
		m.session.Close()
	}
	m.session = nil
	m.snapshot = duel.State{}
	m.busy = false
	m.notice = ""
	m.err = nil
	m.input.Blur()
	m.screen = screenDashboard
	return m
}

func (m model) savePreferences() tea.Cmd {
	store, theme := m.deps.Store, m.theme
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return prefsSavedMsg{store.SavePreferences(&models.Preferences{Theme: theme})}
	}
}

func (m model) saveReport() tea.Cmd {
	store := m.deps.Store
	st, settings := m.snapshot, m.session.Settings()
	return func() tea.Msg {
		if store == nil {
			return reportSavedMsg{err: fmt.Errorf("no save directory configured")}
		}
		path, err := store.SaveReport(report.FileName(time.Now()), report.Build(st, settings))
		return reportSavedMsg{path, err}
	}
}

// Run starts the interactive UI and blocks until the player quits.
func Run(deps Deps) error {
	p := tea.NewProgram(NewModel(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// call runs fn as a tea.Cmd with a background context; the session applies
// its own per-call timeout.
func call(fn func(context.Context) tea.Msg) tea.Cmd {
	return func() tea.Msg { return fn(context.Background()) }
}
