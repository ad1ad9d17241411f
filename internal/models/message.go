// Package models contains the data types exchanged with the agent backend.
package models

// Role identifies who produced a message in the chat log
type Role string

const (
	RoleUser           Role = "user"
	RoleAssistant      Role = "assistant"
	RoleAssistantError Role = "assistant-error"
)

// Message represents a chat message for display
type Message struct {
	Role    Role
	Content string
}

// IsError reports whether the message is an error-flagged assistant message
func (m Message) IsError() bool {
	return m.Role == RoleAssistantError
}

// FileEntry is a generated artifact the backend makes available for download
type FileEntry struct {
	Filename string `json:"filename"`
}
