package master

import (
	"strings"

	"github.com/idilsaglam/taluka/internal/model"
)

// SearchMode is whether the search box is shown.
type SearchMode int

const (
	SearchHidden SearchMode = iota
	SearchVisible
)

func (m SearchMode) String() string {
	if m == SearchVisible {
		return "visible"
	}
	return "hidden"
}

// Search is the search box state.
type Search struct {
	Mode SearchMode
	Term string
}

// Filter keeps records whose taluka name contains term, ignoring case.
// Only the name is searched. An empty term keeps everything; a record
// without a name never matches a non-empty term.
func Filter(records []model.Taluka, term string) []model.Taluka {
	if term == "" {
		return append([]model.Taluka(nil), records...)
	}
	needle := strings.ToLower(term)
	out := make([]model.Taluka, 0, len(records))
	for _, r := range records {
		if r.TalukaName == "" {
			continue
		}
		if strings.Contains(strings.ToLower(r.TalukaName), needle) {
			out = append(out, r)
		}
	}
	return out
}
