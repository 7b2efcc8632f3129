package models

// Record is a structured user-data record eligible for sync.
//
// Fields is free-form JSON-compatible data; nested objects are
// map[string]any.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}
