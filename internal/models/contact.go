package models

import "strings"

// ContactStatus is the pipeline stage of a CRM lead.
type ContactStatus string

const (
	ContactNew         ContactStatus = "Novo"
	ContactNegotiating ContactStatus = "Em Negociação"
	ContactClosed      ContactStatus = "Fechado"
	ContactLost        ContactStatus = "Perdido"
)

// Valid reports whether s is one of the known pipeline stages.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactNegotiating, ContactClosed, ContactLost:
		return true
	}
	return false
}

// Contact is a lead in the political CRM.
type Contact struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Role   string        `json:"role"`
	City   string        `json:"city"`
	Status ContactStatus `json:"status"`

	// LastContact is an ISO date (YYYY-MM-DD).
	LastContact string `json:"lastContact"`
}

// Competitor is static market fixture data.
type Competitor struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Weakness string `json:"weakness"`
	Strength string `json:"strength"`
}

// SearchContacts returns the contacts whose name or city contains term,
// ignoring case. A blank term matches everything.
func SearchContacts(contacts []Contact, term string) []Contact {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if term == "" ||
			strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.City), term) {
			out = append(out, c)
		}
	}
	return out
}
