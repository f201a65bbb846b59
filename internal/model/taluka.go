package model

import (
	"fmt"
	"strings"
)

// Status is the two-valued lifecycle flag of a taluka.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Toggle returns the other status. Anything that isn't Active flips to Active.
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// ParseStatus accepts the two wire values, case-insensitively.
func ParseStatus(v string) (Status, error) {
	switch {
	case strings.EqualFold(v, string(StatusActive)):
		return StatusActive, nil
	case strings.EqualFold(v, string(StatusInactive)):
		return StatusInactive, nil
	}
	return "", fmt.Errorf("invalid status %q", v)
}

// Taluka is the domain model for a taluka master record.
// ID is always assigned by the backend.
type Taluka struct {
	ID         int64  `json:"id"`
	StateName  string `json:"stateName"`
	District   string `json:"district"`
	TalukaName string `json:"talukaName"`
	Status     Status `json:"status"`
}

// TalukaInput is the body of POST /api/talukas and PUT /api/talukas/{id}.
type TalukaInput struct {
	StateName  string `json:"stateName"`
	District   string `json:"district"`
	TalukaName string `json:"talukaName"`
	Status     Status `json:"status"`
}

// StatusInput is the body of PUT /api/talukas/{id}/status.
type StatusInput struct {
	Status Status `json:"status"`
}
