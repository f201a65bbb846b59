package ui

import (
	"strings"

	"github.com/idilsaglam/taluka/internal/model"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Inactive string
	SymActive, SymInactive                         string
	CornerTL, CornerTR, CornerBL, CornerBR         string
	H, V                                           string
	Bar, BarEmpty                                  string
}

var current = classic()

// SetTheme switches palette; unknown names fall back to classic.
func SetTheme(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "neon":
		current = Theme{
			Title: "\033[95m", // bright magenta
			Muted: fgGray, Accent: "\033[96m",
			Success: "\033[92m", Error: "\033[91m", Inactive: "\033[31m",
			SymActive: "◼", SymInactive: "◻",
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
			Bar: "█", BarEmpty: "░",
		}
	case "mono":
		disableColor = true
		current = Theme{
			SymActive: "[x]", SymInactive: "[ ]",
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
			Bar: "#", BarEmpty: ".",
		}
	default:
		current = classic()
	}
}

func classic() Theme {
	return Theme{
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Inactive: fgRed,
		SymActive: "●", SymInactive: "○",
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		H: "─", V: "│",
		Bar: "█", BarEmpty: "░",
	}
}

// Current exposes what renderers need.
func Current() Theme { return current }

// StatusLabel is the coloured status cell: green Active, red Inactive.
func StatusLabel(s model.Status) string {
	if s == model.StatusActive {
		return C(current.Success, current.SymActive+" "+string(s))
	}
	return C(current.Inactive, current.SymInactive+" "+string(s))
}
