package models

type InitializeResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type ChatResponse struct {
	Answer  string           `json:"answer"`
	Sources []SourceDocument `json:"sources"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Initialized bool   `json:"initialized"`
	Stale       bool   `json:"stale"`
}
