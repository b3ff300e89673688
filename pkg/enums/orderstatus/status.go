package orderstatus

import (
	"strings"
)

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	parts := strings.Split(s.Name, "-")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

// Terminal reports whether no further transition may leave this status.
func (s Status) Terminal() bool {
	return s == Statuses.Served || s == Statuses.Cancelled
}

type Enum struct {
	Pending   Status
	Confirmed Status
	Preparing Status
	Ready     Status
	Served    Status
	Cancelled Status
}

var Statuses = Enum{
	Pending:   Status{Name: "pending"},
	Confirmed: Status{Name: "confirmed"},
	Preparing: Status{Name: "preparing"},
	Ready:     Status{Name: "ready"},
	Served:    Status{Name: "served"},
	Cancelled: Status{Name: "cancelled"},
}

var All = []Status{
	Statuses.Pending,
	Statuses.Confirmed,
	Statuses.Preparing,
	Statuses.Ready,
	Statuses.Served,
	Statuses.Cancelled,
}

// forward holds the single legal forward edge of each non-terminal status.
var forward = map[Status]Status{
	Statuses.Pending:   Statuses.Confirmed,
	Statuses.Confirmed: Statuses.Preparing,
	Statuses.Preparing: Statuses.Ready,
	Statuses.Ready:     Statuses.Served,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// Next returns the forward successor of s, if any.
func Next(s Status) (Status, bool) {
	next, ok := forward[s]
	return next, ok
}

// CanTransition allows the immediate forward step, or cancellation from
// any non-terminal status. Backward moves, skips and self-loops are refused.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == Statuses.Cancelled {
		return true
	}
	next, ok := forward[from]
	return ok && next == to
}
