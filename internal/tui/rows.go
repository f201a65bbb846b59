package tui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/taluka/internal/model"
)

const (
	colID     = 7
	colName   = 26
	colStatus = 10
)

// rowItem adapts a Taluka to bubbles/list.Item
type rowItem struct {
	model.Taluka
}

func (i rowItem) Title() string       { return i.TalukaName }
func (i rowItem) Description() string { return i.District + ", " + i.StateName }
func (i rowItem) FilterValue() string { return i.TalukaName }

func toItems(rs []model.Taluka) []list.Item {
	out := make([]list.Item, 0, len(rs))
	for _, r := range rs {
		out = append(out, rowItem{r})
	}
	return out
}

// statusText is the coloured status cell.
func statusText(s model.Status) string {
	if s == model.StatusActive {
		return activeStyle.Render(string(s))
	}
	return inactiveStyle.Render(string(s))
}

// actionHint names what toggling the row would do.
func actionHint(s model.Status) string {
	return "mark " + string(s.Toggle())
}

func cell(s string, w int) string {
	return lipgloss.NewStyle().Width(w).MaxWidth(w).Render(s)
}

// tableHeader lines up with rowDelegate's columns.
func tableHeader() string {
	return "  " + headerStyle.Render(
		cell("Sr No", colID-1)+cell("Taluka Name", colName)+cell("Status", colStatus)+"Actions",
	)
}

// Custom delegate to render each record as one table row.
type rowDelegate struct{}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(rowItem)
	if !ok {
		return
	}
	name := it.TalukaName
	if name == "" {
		name = mutedStyle.Render("(unnamed)")
	}
	line := cell(strconv.FormatInt(it.ID, 10), colID) +
		cell(name, colName) +
		cell(statusText(it.Status), colStatus) +
		mutedStyle.Render(fmt.Sprintf("[t] %s  [e] edit  [d] delete", actionHint(it.Status)))

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render(">") + " "
	}
	fmt.Fprint(w, prefix+line)
}
