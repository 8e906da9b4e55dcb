package user

import "time"

// User is a donor account.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	PostalCode     string    `json:"postal_code"`
	Address        string    `json:"address"`
	PasswordHash   []byte    `json:"password_hash"`
	CreatedAt      time.Time `json:"created_at"`
	EmailConfirmed bool      `json:"email_confirmed"`
}
