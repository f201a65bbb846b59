package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/taluka/internal/master"
)

const confirmPrompt = "Are you sure you want to delete this taluka? (y/n)"

func (m Model) View() string {
	var b strings.Builder

	title := titleStyle.Render("Taluka Master")
	if m.screen.Busy(master.OpLoad) {
		title += "  " + mutedStyle.Render("loading…")
	}
	b.WriteString(title + "\n")
	b.WriteString(m.viewForm() + "\n")

	if m.screen.Search().Mode == master.SearchVisible {
		b.WriteString(" " + m.search.View() + "\n")
	}

	b.WriteString(tableHeader() + "\n")
	b.WriteString(m.list.View() + "\n")

	b.WriteString(m.viewNotice() + "\n")
	b.WriteString(m.viewHelp())
	return b.String()
}

func (m Model) viewForm() string {
	title, button := m.formTitle()

	fields := []string{"State", "District", "Taluka Name"}
	cols := make([]string, 0, len(fields)+1)
	for i, label := range fields {
		l := labelStyle.Render(label)
		if m.focus == focusForm && m.field == i {
			l = accentStyle.Bold(true).Render(label)
		}
		cols = append(cols, lipgloss.JoinVertical(lipgloss.Left, l, m.inputs[i].View()))
	}

	btn := buttonStyle.Render(button)
	if m.focus == focusForm && m.field == fieldSubmit {
		btn = buttonFocused.Render(button)
	}
	if m.screen.Busy(master.OpSubmit) {
		btn = buttonStyle.Faint(true).Render(button + "…")
	}
	cols = append(cols, lipgloss.JoinVertical(lipgloss.Left, "", btn))

	row := lipgloss.JoinHorizontal(lipgloss.Top, interleave(cols, "  ")...)
	body := lipgloss.JoinVertical(lipgloss.Left, accentStyle.Render(title), row)

	style := panelStyle
	if m.focus == focusForm {
		style = focusedPanelStyle
	}
	return style.Render(body)
}

func (m Model) viewNotice() string {
	if m.focus == focusConfirm {
		if r, ok := m.screen.Find(m.confirmID); ok && r.TalukaName != "" {
			return errorStyle.Render(confirmPrompt) + " " + mutedStyle.Render(r.TalukaName)
		}
		return errorStyle.Render(confirmPrompt)
	}
	if m.notice == nil {
		return ""
	}
	if m.notice.IsError() {
		return errorStyle.Render("✗ " + m.notice.Text)
	}
	return successStyle.Render("✓ " + m.notice.Text)
}

func (m Model) viewHelp() string {
	var bindings []key.Binding
	switch m.focus {
	case focusForm:
		bindings = m.keys.formHelp()
	case focusSearch:
		bindings = m.keys.searchHelp()
	case focusConfirm:
		bindings = m.keys.confirmHelp()
	default:
		bindings = m.keys.listHelp()
	}
	return helpStyle.Render(m.help.ShortHelpView(bindings))
}

func interleave(parts []string, sep string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, p)
	}
	return out
}
