package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nicofzzn/ecommerce/internal/domain"
	"github.com/nicofzzn/ecommerce/pkg/database"
)

// UserRepository writes storefront accounts. Only the seeder creates users.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u and fills in its ID and creation time.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO users (id, name, email, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	ctx, end := database.TraceQuery(ctx, "CreateUser", query)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt); err != nil {
		return database.Classify(fmt.Sprintf("insert user %s", u.Email), err)
	}
	return nil
}
