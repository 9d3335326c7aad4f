package models

// UserIdentity is the verified subject behind a bearer token.
type UserIdentity struct {
	SubjectID string `json:"user_id"`
	Email     string `json:"email,omitempty"`
}
