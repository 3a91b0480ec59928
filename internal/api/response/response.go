package response

import (
	"encoding/json"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the body of every plain error.
type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// IssuesResponse is the body of a rejected draft or request: a summary plus
// the individual issues.
type IssuesResponse struct {
	Error  string `json:"error"`
	Issues any    `json:"issues"`
}

// WriteIssues writes an error body that carries structured issues.
func WriteIssues(w http.ResponseWriter, status int, message string, issues any) {
	WriteJSON(w, status, IssuesResponse{Error: message, Issues: issues})
}

// ListResponse wraps a list so the top-level JSON value is always an object.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

func WriteList(w http.ResponseWriter, status int, items any, count int) {
	WriteJSON(w, status, ListResponse{Items: items, Count: count})
}

// PaginatedResponse wraps a list with pagination metadata.
type PaginatedResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// WritePaginated writes a paginated JSON response.
func WritePaginated(w http.ResponseWriter, status int, items any, nextCursor string, hasMore bool) {
	WriteJSON(w, status, PaginatedResponse{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}
