// Package master holds the state of the Taluka Master screen: the record
// list, the form draft, the search box and the lifecycle of each backend
// operation. It does no I/O itself; callers send the requests it hands out
// through a Service and feed the results back in.
//
// Every Begin* call pairs with exactly one Finish* call. A Begin* for an
// operation that is still in flight fails with ErrBusy.
package master

import (
	"context"
	"errors"
	"fmt"

	"github.com/idilsaglam/taluka/internal/api"
	"github.com/idilsaglam/taluka/internal/model"
)

// ErrBusy is returned when the same kind of operation is already in flight.
var ErrBusy = errors.New("another request is already in progress")

// Service is the backend the screen's requests are sent to. *api.Client
// implements it.
type Service interface {
	List(ctx context.Context) ([]model.Taluka, error)
	Create(ctx context.Context, in model.TalukaInput) (model.Taluka, error)
	Update(ctx context.Context, id int64, in model.TalukaInput) (model.Taluka, error)
	SetStatus(ctx context.Context, id int64, status model.Status) error
	Delete(ctx context.Context, id int64) error
}

var _ Service = (*api.Client)(nil)

// Op names a backend operation the screen can run.
type Op int

const (
	OpLoad Op = iota
	OpSubmit
	OpDelete
	OpToggle
	opCount
)

func (o Op) String() string {
	switch o {
	case OpLoad:
		return "load"
	case OpSubmit:
		return "submit"
	case OpDelete:
		return "delete"
	case OpToggle:
		return "toggle"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Phase is where an operation is in its lifecycle.
type Phase int

const (
	Idle Phase = iota
	InFlight
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Outcome is what finishing an operation asks of the caller.
type Outcome struct {
	Notice *Notice // nil when there is nothing to tell the user
	Reload bool    // fetch the list again
}

// Screen is the state container. It is not safe for concurrent use; the
// TUI only touches it from its update loop.
type Screen struct {
	records []model.Taluka
	draft   Draft
	search  Search
	phases  [opCount]Phase
}

// NewScreen returns an empty screen in create mode with search hidden.
func NewScreen() *Screen {
	return &Screen{draft: NewDraft()}
}

// ---------------------------------------------------
// Reads
// ---------------------------------------------------

// Records returns the full list as last loaded.
func (s *Screen) Records() []model.Taluka {
	return append([]model.Taluka(nil), s.records...)
}

// Visible returns the records matching the current search term.
func (s *Screen) Visible() []model.Taluka {
	return Filter(s.records, s.search.Term)
}

// Find looks id up in the local list.
func (s *Screen) Find(id int64) (model.Taluka, bool) {
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return model.Taluka{}, false
}

func (s *Screen) Draft() Draft      { return s.draft }
func (s *Screen) Search() Search    { return s.search }
func (s *Screen) Phase(op Op) Phase { return s.phases[op] }
func (s *Screen) Busy(op Op) bool   { return s.phases[op] == InFlight }

// ---------------------------------------------------
// Draft and search transitions
// ---------------------------------------------------

// SetFields replaces the draft's text fields, keeping its mode and status.
func (s *Screen) SetFields(stateName, district, talukaName string) {
	s.draft = s.draft.withFields(stateName, district, talukaName)
}

// EnterEdit copies the local record id into the draft and switches to update
// mode. It reports false, leaving the draft alone, if id isn't in the list.
func (s *Screen) EnterEdit(id int64) bool {
	r, ok := s.Find(id)
	if !ok {
		return false
	}
	s.draft = draftFrom(r)
	return true
}

// ClearDraft resets the form to an empty create-mode draft.
func (s *Screen) ClearDraft() {
	s.draft = NewDraft()
}

func (s *Screen) ToggleSearch() {
	if s.search.Mode == SearchVisible {
		s.search.Mode = SearchHidden
		return
	}
	s.search.Mode = SearchVisible
}

// ResetSearch clears the term and hides the box, whatever the prior state.
func (s *Screen) ResetSearch() {
	s.search = Search{Mode: SearchHidden}
}

func (s *Screen) SetSearchTerm(term string) {
	s.search.Term = term
}

// ---------------------------------------------------
// Load
// ---------------------------------------------------

func (s *Screen) BeginLoad() error {
	return s.begin(OpLoad)
}

// FinishLoad replaces the list on success. On failure the old list stays.
func (s *Screen) FinishLoad(records []model.Taluka, err error) Outcome {
	if err != nil {
		s.phases[OpLoad] = Failed
		return Outcome{Notice: errorNotice(err)}
	}
	s.phases[OpLoad] = Done
	s.records = append([]model.Taluka(nil), records...)
	return Outcome{}
}

// ---------------------------------------------------
// Submit (create or update)
// ---------------------------------------------------

// SubmitRequest is a create, or an update when Update is set.
type SubmitRequest struct {
	Update bool
	ID     int64
	Input  model.TalukaInput
}

// Send issues the request.
func (r SubmitRequest) Send(ctx context.Context, svc Service) error {
	if r.Update {
		_, err := svc.Update(ctx, r.ID, r.Input)
		return err
	}
	_, err := svc.Create(ctx, r.Input)
	return err
}

// BeginSubmit validates the draft and returns the request to send. Invalid
// drafts fail with ErrFieldsRequired and nothing is marked in flight.
func (s *Screen) BeginSubmit() (SubmitRequest, error) {
	if err := s.draft.Validate(); err != nil {
		return SubmitRequest{}, err
	}
	if err := s.begin(OpSubmit); err != nil {
		return SubmitRequest{}, err
	}
	id, editing := s.draft.EditingID()
	return SubmitRequest{Update: editing, ID: id, Input: s.draft.Input()}, nil
}

// FinishSubmit clears the draft and asks for a reload on success. On failure
// the draft is kept so the user can retry.
func (s *Screen) FinishSubmit(req SubmitRequest, err error) Outcome {
	if err != nil {
		s.phases[OpSubmit] = Failed
		return Outcome{Notice: errorNotice(err)}
	}
	s.phases[OpSubmit] = Done
	s.ClearDraft()
	text := "Taluka added successfully!"
	if req.Update {
		text = "Taluka updated successfully!"
	}
	return Outcome{Notice: successNotice(text), Reload: true}
}

// ---------------------------------------------------
// Delete
// ---------------------------------------------------

type DeleteRequest struct {
	ID int64
}

func (r DeleteRequest) Send(ctx context.Context, svc Service) error {
	return svc.Delete(ctx, r.ID)
}

// BeginDelete is called once the user has confirmed.
func (s *Screen) BeginDelete(id int64) (DeleteRequest, error) {
	if err := s.begin(OpDelete); err != nil {
		return DeleteRequest{}, err
	}
	return DeleteRequest{ID: id}, nil
}

// FinishDelete drops the record locally on success, then asks for a reload
// like every other mutation. A failed delete leaves the list alone; if the
// response was lost the reload finds out whether it happened.
func (s *Screen) FinishDelete(req DeleteRequest, err error) Outcome {
	if err != nil {
		s.phases[OpDelete] = Failed
		return Outcome{Notice: errorNotice(err), Reload: api.NoResponse(err)}
	}
	s.phases[OpDelete] = Done
	kept := s.records[:0:0]
	for _, r := range s.records {
		if r.ID != req.ID {
			kept = append(kept, r)
		}
	}
	s.records = kept
	if id, ok := s.draft.EditingID(); ok && id == req.ID {
		s.ClearDraft()
	}
	return Outcome{Notice: successNotice("Taluka deleted successfully!"), Reload: true}
}

// ---------------------------------------------------
// Status toggle
// ---------------------------------------------------

// ToggleRequest sets Status on record ID.
type ToggleRequest struct {
	ID     int64
	Status model.Status
}

func (r ToggleRequest) Send(ctx context.Context, svc Service) error {
	return svc.SetStatus(ctx, r.ID, r.Status)
}

// BeginToggle asks for the inverse of current. Nothing changes locally until
// the server confirms.
func (s *Screen) BeginToggle(id int64, current model.Status) (ToggleRequest, error) {
	if err := s.begin(OpToggle); err != nil {
		return ToggleRequest{}, err
	}
	return ToggleRequest{ID: id, Status: current.Toggle()}, nil
}

func (s *Screen) FinishToggle(req ToggleRequest, err error) Outcome {
	if err != nil {
		s.phases[OpToggle] = Failed
		return Outcome{Notice: errorNotice(err)}
	}
	s.phases[OpToggle] = Done
	text := fmt.Sprintf("Taluka status updated to %s successfully!", req.Status)
	return Outcome{Notice: successNotice(text), Reload: true}
}

func (s *Screen) begin(op Op) error {
	if s.phases[op] == InFlight {
		return ErrBusy
	}
	s.phases[op] = InFlight
	return nil
}
