package models

// RegistrationFilter narrows already-fetched events by the user's registrations
type RegistrationFilter string

const (
	FilterAll           RegistrationFilter = "all"
	FilterRegistered    RegistrationFilter = "registered"
	FilterNotRegistered RegistrationFilter = "not-registered"
)

// Valid reports whether f is one of the known filters; empty means all
func (f RegistrationFilter) Valid() bool {
	switch f {
	case "", FilterAll, FilterRegistered, FilterNotRegistered:
		return true
	}
	return false
}

// Label is the toggle text of the filter
func (f RegistrationFilter) Label() string {
	switch f {
	case FilterRegistered:
		return "Registered"
	case FilterNotRegistered:
		return "Not Registered"
	default:
		return "All Events"
	}
}

// ApplyRegistrationFilter keeps event order and never queries anything
func ApplyRegistrationFilter(events []Event, registrations []Registration, filter RegistrationFilter) []Event {
	if filter == "" || filter == FilterAll || !filter.Valid() {
		return events
	}

	registered := make(map[string]struct{}, len(registrations))
	for _, r := range registrations {
		registered[r.EventID] = struct{}{}
	}

	result := make([]Event, 0, len(events))
	for _, e := range events {
		_, ok := registered[e.ID]
		if (filter == FilterRegistered && ok) || (filter == FilterNotRegistered && !ok) {
			result = append(result, e)
		}
	}
	return result
}
