// Package seed loads the sample storefront catalog and accounts.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/nicofzzn/ecommerce/internal/domain"
	"github.com/nicofzzn/ecommerce/internal/repository/postgres"
	"github.com/nicofzzn/ecommerce/pkg/database"
)

// Seeder replaces the contents of the users, products and orders tables.
// Every run happens in a single transaction.
type Seeder struct {
	db     database.DBTX
	hash   func(password string) (string, error)
	logger *slog.Logger
}

// New creates a seeder writing through db.
func New(db database.DBTX, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, hash: hashPassword, logger: logger}
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Import wipes all data, then creates the sample users and the sample
// catalog owned by the first (admin) user.
func (s *Seeder) Import(ctx context.Context) error {
	return s.inTx(ctx, func(tx database.DBTX) error {
		if err := destroy(ctx, tx); err != nil {
			return err
		}

		users := postgres.NewUserRepository(tx)
		var owner string
		for i, su := range sampleUsers {
			hash, err := s.hash(DefaultPassword)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", su.Email, err)
			}
			u := &domain.User{Name: su.Name, Email: su.Email, PasswordHash: hash, IsAdmin: su.IsAdmin}
			if err := users.Create(ctx, u); err != nil {
				return err
			}
			if i == 0 {
				owner = u.ID
			}
		}

		products := postgres.NewProductRepository(tx)
		catalog := sampleProducts()
		for i := range catalog {
			catalog[i].User = owner
			if err := products.Create(ctx, &catalog[i]); err != nil {
				return err
			}
		}

		s.logger.InfoContext(ctx, "data imported",
			slog.Int("users", len(sampleUsers)),
			slog.Int("products", len(catalog)),
		)
		return nil
	})
}

// Destroy deletes all orders, products and users.
func (s *Seeder) Destroy(ctx context.Context) error {
	return s.inTx(ctx, func(tx database.DBTX) error {
		if err := destroy(ctx, tx); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "data destroyed")
		return nil
	})
}

// destroy empties the tables children first.
func destroy(ctx context.Context, db database.DBTX) error {
	for _, table := range []string{"orders", "products", "users"} {
		if _, err := db.Exec(ctx, "DELETE FROM "+table); err != nil {
			return database.Classify("delete "+table, err)
		}
	}
	return nil
}

func (s *Seeder) inTx(ctx context.Context, fn func(tx database.DBTX) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return database.Classify("begin seed tx", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return database.Classify("commit seed tx", err)
	}
	return nil
}
