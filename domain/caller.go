package domain

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID string
	Email  string
}

// Valid reports whether the caller carries an email identity.
func (c Caller) Valid() bool {
	return c.Email != ""
}
