package entity

// UserPayload identifies the authenticated user carried in the session token.
type UserPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
