package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	paramStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	paramActiveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	paramChosenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	valueStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	valueCursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42"))
	valueSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	resolvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pscan"))
	b.WriteString(statusStyle.Render(fmt.Sprintf("  %d records", m.snap.Index.Len())))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(m.paramPane()),
		paneStyle.Render(m.valuePane()),
	))
	b.WriteString("\n")

	switch {
	case m.resolved != "":
		b.WriteString(resolvedStyle.Render("→ " + m.resolved))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	default:
		b.WriteString(statusStyle.Render("select a value for every parameter"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// paramPane lists parameters with their chosen values.
func (m Model) paramPane() string {
	if len(m.params) == 0 {
		return statusStyle.Render("(no parameters)")
	}

	var lines []string
	for i, param := range m.params {
		label := param
		if v, ok := m.selection[param]; ok {
			label = fmt.Sprintf("%s = %s", param, paramChosenStyle.Render(v))
		} else {
			label = param + " = ?"
		}
		if i == m.paramCursor {
			lines = append(lines, paramActiveStyle.Render("▸ "+label))
		} else {
			lines = append(lines, paramStyle.Render("  "+label))
		}
	}
	return strings.Join(lines, "\n")
}

// valuePane lists the valid values for the highlighted parameter.
func (m Model) valuePane() string {
	if len(m.values) == 0 {
		return statusStyle.Render("(no valid values)")
	}

	chosen := ""
	if len(m.params) > 0 {
		chosen = m.selection[m.params[m.paramCursor]]
	}

	var lines []string
	for i, v := range m.values {
		marker := "  "
		style := valueStyle
		if v == chosen {
			marker = "✓ "
			style = valueSelectedStyle
		}
		if i == m.valueCursor {
			lines = append(lines, valueCursorStyle.Render("▸ "+v))
			continue
		}
		lines = append(lines, style.Render(marker+v))
	}
	return strings.Join(lines, "\n")
}
