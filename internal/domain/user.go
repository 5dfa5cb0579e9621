package domain

import "time"

// User is a storefront account. Accounts are issued elsewhere; this service
// reads them for order ownership and writes them only when seeding.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Role is the role claim issued for the user.
func (u *User) Role() string {
	if u.IsAdmin {
		return "admin"
	}
	return "customer"
}
