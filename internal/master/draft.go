package master

import (
	"errors"
	"strings"

	"github.com/idilsaglam/taluka/internal/model"
)

// ErrFieldsRequired is returned when a draft is missing state, district or name.
var ErrFieldsRequired = errors.New("all fields are required")

// Draft is the unsaved form: a new taluka, or edits to an existing one.
type Draft struct {
	StateName  string
	District   string
	TalukaName string
	Status     model.Status

	editingID int64
	editing   bool
}

// NewDraft returns an empty create-mode draft. New talukas start Inactive.
func NewDraft() Draft {
	return Draft{Status: model.StatusInactive}
}

// draftFrom copies r into an update-mode draft addressed at r.ID.
func draftFrom(r model.Taluka) Draft {
	status := r.Status
	if !status.Valid() {
		status = model.StatusInactive
	}
	return Draft{
		StateName:  r.StateName,
		District:   r.District,
		TalukaName: r.TalukaName,
		Status:     status,
		editingID:  r.ID,
		editing:    true,
	}
}

// EditingID reports the id being edited; ok is false in create mode.
func (d Draft) EditingID() (id int64, ok bool) {
	return d.editingID, d.editing
}

// Validate checks the three required text fields.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.StateName) == "" ||
		strings.TrimSpace(d.District) == "" ||
		strings.TrimSpace(d.TalukaName) == "" {
		return ErrFieldsRequired
	}
	return nil
}

// Input is the request body for this draft, with fields trimmed.
func (d Draft) Input() model.TalukaInput {
	status := d.Status
	if !status.Valid() {
		status = model.StatusInactive
	}
	return model.TalukaInput{
		StateName:  strings.TrimSpace(d.StateName),
		District:   strings.TrimSpace(d.District),
		TalukaName: strings.TrimSpace(d.TalukaName),
		Status:     status,
	}
}

// withFields returns d with the text fields replaced, keeping mode and status.
func (d Draft) withFields(state, district, name string) Draft {
	d.StateName, d.District, d.TalukaName = state, district, name
	return d
}
