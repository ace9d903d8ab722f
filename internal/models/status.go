package models

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state shared by activities, plans and checkpoints.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// Statuses lists every valid Status in display order.
var Statuses = []Status{StatusPending, StatusCompleted}

// legacyStatuses maps values written by the previous system onto the enum.
var legacyStatuses = map[string]Status{
	"pendente":  StatusPending,
	"concluído": StatusCompleted,
	"concluido": StatusCompleted,
}

// ParseStatus converts user input into a Status. Matching is case-insensitive
// and accepts the legacy Portuguese labels. An empty string is rejected.
func ParseStatus(s string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, st := range Statuses {
		if v == strings.ToLower(string(st)) {
			return st, nil
		}
	}
	if st, ok := legacyStatuses[v]; ok {
		return st, nil
	}
	return "", fmt.Errorf("invalid status %q (want one of %s, %s)", s, StatusPending, StatusCompleted)
}

// Valid reports whether s is a member of the enumeration.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

func (s Status) String() string { return string(s) }
