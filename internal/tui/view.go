package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/averyross/scorecard/internal/codec"
	"github.com/averyross/scorecard/internal/models"
	"github.com/averyross/scorecard/internal/summary"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateDay:
		content = docStyle.Render(m.viewDay())
	case StateWeek:
		content = docStyle.Render(m.viewWeek())
	case StateEditDay, StateEditStructure:
		if m.form != nil {
			content = m.form.View()
		}
	}

	sections := []string{m.viewTabs(), content}
	if m.status != "" && (m.state == StateDay || m.state == StateWeek) {
		style := statusStyle
		if !m.statusOK {
			style = errorStyle
		}
		sections = append(sections, docStyle.Render(style.Render(m.status)))
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Day", "Week"} {
		if m.browseState() == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewDay() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Scorecard, "+m.date) + "\n\n")

	entry, logged := m.store.Get(m.date)
	if !logged {
		b.WriteString(mutedStyle.Render("Not logged yet. Press e to fill in the day.") + "\n")
	}

	group := ""
	for _, def := range m.cat.ResolveActive(m.date) {
		if def.Group != group {
			group = def.Group
			b.WriteString(groupStyle.Render(group) + "\n")
		}
		value := "—"
		if logged {
			if s := codec.Format(def, entry.MetricValue(def.MetricID, nil)); s != "" {
				value = s
				if def.Unit != "" {
					value += " " + def.Unit
				}
			}
		}
		b.WriteString(fmt.Sprintf("  %-34s %s\n", def.Label, value))
	}
	return b.String()
}

func (m Model) viewWeek() string {
	sum, err := summary.Summarize(m.cat, m.store.Scorecard(), m.weekMonday, m.now)
	if err != nil {
		return errorStyle.Render(err.Error())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Week %s to %s", sum.Week.StartMonday, sum.Week.EndSunday)) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d of 7 days logged", sum.Summary.DaysLogged)) + "\n\n")

	for _, id := range summary.MetricOrder(sum.Summary.Metrics) {
		agg := sum.Summary.Metrics[id]
		b.WriteString(fmt.Sprintf("  %-24s %-14s %s\n", id, agg.Aggregation, renderAggregate(agg)))
	}

	st := sum.Summary.Structure
	b.WriteString("\n" + groupStyle.Render(fmt.Sprintf("Structure %d/3", st.Score)) + "\n")
	b.WriteString("  " + flag(st.PrioritiesDefined) + " priorities defined\n")
	b.WriteString("  " + flag(st.TwoCompleted) + " two completed\n")
	b.WriteString("  " + flag(st.WeeklyReviewDone) + " weekly review done\n")
	b.WriteString("\n" + mutedStyle.Render("Press s to edit the week structure.") + "\n")
	return b.String()
}

func renderAggregate(agg models.MetricAggregate) string {
	switch v := agg.Value.(type) {
	case nil:
		return mutedStyle.Render("—")
	case float64:
		return fmt.Sprintf("%v (n=%d)", v, agg.ValueCount)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func flag(b bool) string {
	if b {
		return statusStyle.Render("✓")
	}
	return mutedStyle.Render("✗")
}
