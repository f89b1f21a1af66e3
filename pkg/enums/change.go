package enums

import "fmt"

// ChangeAction is the mutation a pending change proposes.
type ChangeAction string

const (
	ChangeActionCreate       ChangeAction = "create"
	ChangeActionUpdate       ChangeAction = "update"
	ChangeActionDelete       ChangeAction = "delete"
	ChangeActionStatusChange ChangeAction = "status_change"
)

var validChangeActions = []ChangeAction{
	ChangeActionCreate,
	ChangeActionUpdate,
	ChangeActionDelete,
	ChangeActionStatusChange,
}

// String implements fmt.Stringer.
func (a ChangeAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ChangeAction.
func (a ChangeAction) IsValid() bool {
	for _, candidate := range validChangeActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseChangeAction converts raw input into a ChangeAction.
func ParseChangeAction(value string) (ChangeAction, error) {
	for _, candidate := range validChangeActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change action %q", value)
}

// ChangeStatus maps to the change_status enum in Postgres.
type ChangeStatus string

const (
	ChangeStatusPending  ChangeStatus = "pending"
	ChangeStatusApproved ChangeStatus = "approved"
	ChangeStatusRejected ChangeStatus = "rejected"
)

var validChangeStatuses = []ChangeStatus{
	ChangeStatusPending,
	ChangeStatusApproved,
	ChangeStatusRejected,
}

// String implements fmt.Stringer.
func (s ChangeStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ChangeStatus.
func (s ChangeStatus) IsValid() bool {
	for _, candidate := range validChangeStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s ChangeStatus) IsTerminal() bool {
	return s == ChangeStatusApproved || s == ChangeStatusRejected
}

// ChangeCollection names the collection a pending change targets.
type ChangeCollection string

const (
	ChangeCollectionAgents ChangeCollection = "agents"
)

// IsValid reports whether the collection accepts moderated changes.
func (c ChangeCollection) IsValid() bool {
	return c == ChangeCollectionAgents
}

// String implements fmt.Stringer.
func (c ChangeCollection) String() string {
	return string(c)
}
