package paymentstatus

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

type Enum struct {
	Pending  Status
	Paid     Status
	Failed   Status
	Refunded Status
}

var Statuses = Enum{
	Pending:  Status{Name: "pending"},
	Paid:     Status{Name: "paid"},
	Failed:   Status{Name: "failed"},
	Refunded: Status{Name: "refunded"},
}

var All = []Status{
	Statuses.Pending,
	Statuses.Paid,
	Statuses.Failed,
	Statuses.Refunded,
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
