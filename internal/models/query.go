package models

// StatusSuccess is the only query status treated as a successful response
const StatusSuccess = "success"

// DefaultMaxTurns is the turn limit sent with every query unless configured otherwise
const DefaultMaxTurns = 20

// QueryRequest is the body POSTed to the query endpoint
type QueryRequest struct {
	Prompt   string `json:"prompt"`
	MaxTurns int    `json:"max_turns"`
}

// QueryResult is the decoded body of a query response.
// The backend reports application failures in-band through Status and Error.
type QueryResult struct {
	Status   string
	Response string
	Error    string
}

// Succeeded reports whether the backend processed the query
func (r *QueryResult) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}
