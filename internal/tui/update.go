package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/averyross/scorecard/internal/models"
	"github.com/averyross/scorecard/internal/utils"
)

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.state == StateEditDay || m.state == StateEditStructure {
			if msg.String() == "esc" {
				m.state = m.browseState()
				m.form = nil
				return m, nil
			}
			return m.updateForm(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
			if m.state == StateDay {
				m.state = StateWeek
			} else {
				m.state = StateDay
			}
			m.status = ""
		case key.Matches(msg, m.keys.Prev):
			m.shift(-1)
		case key.Matches(msg, m.keys.Next):
			m.shift(1)
		case key.Matches(msg, m.keys.Today):
			m.date = utils.Today(m.now)
			m.weekMonday, _ = utils.WeekMonday(m.date)
			m.status = ""
		case key.Matches(msg, m.keys.Edit):
			if m.state == StateDay {
				m.buildDayForm()
				m.state = StateEditDay
				return m, m.form.Init()
			}
		case key.Matches(msg, m.keys.Structure):
			if m.state == StateWeek {
				m.buildStructureForm()
				m.state = StateEditStructure
				return m, m.form.Init()
			}
		}
		return m, nil
	}

	if m.state == StateEditDay || m.state == StateEditStructure {
		return m.updateForm(msg)
	}
	return m, nil
}

// browseState maps an edit state back to the tab it was opened from.
func (m Model) browseState() SessionState {
	if m.state == StateEditStructure {
		return StateWeek
	}
	return StateDay
}

// shift moves the shown day (day tab) or week (week tab).
func (m *Model) shift(direction int) {
	m.status = ""
	if m.state == StateWeek {
		if monday, err := utils.AddDays(m.weekMonday, 7*direction); err == nil {
			m.weekMonday = monday
		}
		return
	}
	if date, err := utils.AddDays(m.date, direction); err == nil {
		m.date = date
		m.weekMonday, _ = utils.WeekMonday(date)
	}
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		switch m.state {
		case StateEditDay:
			if _, err := m.store.Save(m.date, m.collectDayForm()); err != nil {
				m.status, m.statusOK = err.Error(), false
			} else {
				m.status, m.statusOK = "Saved "+m.date+".", true
			}
			m.state = StateDay
		case StateEditStructure:
			st := models.WeekStructure{
				PrioritiesDefined: m.structVals.PrioritiesDefined,
				TwoCompleted:      m.structVals.TwoCompleted,
				WeeklyReviewDone:  m.structVals.WeeklyReviewDone,
			}
			if err := m.store.SetWeekStructure(m.weekMonday, st); err != nil {
				m.status, m.statusOK = err.Error(), false
			} else {
				m.status, m.statusOK = "Week structure saved.", true
			}
			m.state = StateWeek
		}
		m.form = nil
		return m, nil
	}
	if m.form.State == huh.StateAborted {
		m.state = m.browseState()
		m.form = nil
		return m, nil
	}
	return m, cmd
}
