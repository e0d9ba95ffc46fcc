package models

// Level is one tier of customers in the revenue roadmap (e.g. "Vereador").
type Level struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Ticket is the monthly subscription price.
	Ticket float64 `json:"ticket"`

	// Implantation is the one-off onboarding fee per client.
	Implantation float64 `json:"implantation"`

	Clients int `json:"clients"`

	// Goal is the target client count, nil when the tier has none.
	Goal *int `json:"goal,omitempty"`
}
