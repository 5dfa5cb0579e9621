package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a single user's rating of a product. Reviews are immutable.
type Review struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewReview stamps a review with an id and creation time. name is the
// author's display name at the time of writing.
func NewReview(userID, name string, rating int, comment string) Review {
	return Review{
		ID:        uuid.NewString(),
		User:      userID,
		Name:      name,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
}
