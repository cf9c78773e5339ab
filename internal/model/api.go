package model

// SubmitRequest represents the body of a lookup submission
type SubmitRequest struct {
	City string `json:"city"`
}

// SuggestRequest represents the parameters for a city suggestion lookup
type SuggestRequest struct {
	Query string
	Limit int
}

// SuggestResponse represents the response for city suggestions
type SuggestResponse struct {
	Results []CitySuggestion `json:"results"`
}

// CitySuggestion is a single entry in the suggestion list
type CitySuggestion struct {
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	Query       string `json:"query"`
}

// StateResponse wraps the presenter state for API consumers
type StateResponse struct {
	State   State  `json:"state"`
	IconURL string `json:"icon_url,omitempty"`
}
