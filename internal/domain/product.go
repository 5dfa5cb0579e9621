package domain

import (
	"time"
)

// Product is a catalog entry with its reviews embedded. Rating and
// NumReviews are derived from Reviews and only change through AddReview.
type Product struct {
	ID           string    `json:"_id"`
	User         string    `json:"user"`
	Name         string    `json:"name"`
	Image        string    `json:"image"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	CountInStock int       `json:"countInStock"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"numReviews"`
	Reviews      []Review  `json:"reviews"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewSampleProduct returns the placeholder an admin creates before editing.
func NewSampleProduct(ownerID string) *Product {
	return &Product{
		User:         ownerID,
		Name:         "Sample product",
		Image:        "/images/sample.jpg",
		Brand:        "Sample brand",
		Category:     "Sample product",
		Description:  "Sample product",
		Price:        0,
		CountInStock: 0,
		NumReviews:   0,
		Reviews:      []Review{},
	}
}

// HasReviewFrom reports whether userID already reviewed the product.
func (p *Product) HasReviewFrom(userID string) bool {
	for _, r := range p.Reviews {
		if r.User == userID {
			return true
		}
	}
	return false
}

// AddReview appends r and recomputes the aggregates. A second review by the
// same user fails with ErrAlreadyReviewed and leaves p unchanged.
func (p *Product) AddReview(r Review) error {
	if p.HasReviewFrom(r.User) {
		return ErrAlreadyReviewed
	}
	p.Reviews = append(p.Reviews, r)
	p.NumReviews = len(p.Reviews)
	p.Rating = MeanRating(p.Reviews)
	return nil
}

// MeanRating is the arithmetic mean of the ratings, 0 for no reviews.
// The value is not rounded.
func MeanRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// ProductPatch carries the admin-editable fields. Nil fields are left alone.
type ProductPatch struct {
	Name         *string
	Price        *float64
	Image        *string
	Brand        *string
	Category     *string
	CountInStock *int
	Description  *string
}

// Empty reports whether the patch changes nothing.
func (pp ProductPatch) Empty() bool {
	return pp.Name == nil && pp.Price == nil && pp.Image == nil && pp.Brand == nil &&
		pp.Category == nil && pp.CountInStock == nil && pp.Description == nil
}

// Apply writes the supplied fields onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Image != nil {
		p.Image = *pp.Image
	}
	if pp.Brand != nil {
		p.Brand = *pp.Brand
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.CountInStock != nil {
		p.CountInStock = *pp.CountInStock
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
}

// ProductFilter selects a page of the catalog.
type ProductFilter struct {
	Keyword string
	Limit   int
	Offset  int
}

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}
