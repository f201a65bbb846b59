package master

import (
	"errors"

	"github.com/idilsaglam/taluka/internal/api"
)

// NoticeKind is the colour of a notice.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

// Notice is a short message for the user, shown once and then dropped.
type Notice struct {
	Kind NoticeKind
	Text string
}

func (n Notice) IsError() bool { return n.Kind == NoticeError }

func successNotice(text string) *Notice {
	return &Notice{Kind: NoticeSuccess, Text: text}
}

func errorNotice(err error) *Notice {
	return &Notice{Kind: NoticeError, Text: api.Describe(err)}
}

// Rejected is the notice for a Begin* call that refused to start.
func Rejected(err error) Notice {
	switch {
	case errors.Is(err, ErrFieldsRequired):
		return Notice{Kind: NoticeError, Text: "All fields are required!"}
	case errors.Is(err, ErrBusy):
		return Notice{Kind: NoticeError, Text: "Another request is already in progress."}
	}
	return *errorNotice(err)
}
