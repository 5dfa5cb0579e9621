package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nicofzzn/ecommerce/internal/domain"
	"github.com/nicofzzn/ecommerce/pkg/database"
)

const productColumns = `id, user_id, name, image, brand, category, description, price,
	count_in_stock, rating, num_reviews, reviews, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
// Reviews live in a JSONB column on the product row.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// escapeLike makes every character of s match literally inside LIKE.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List returns a page of products and the total number of matches.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) (_ []domain.Product, _ int, err error) {
	where := ""
	var args []any
	if filter.Keyword != "" {
		where = "WHERE name ILIKE $1"
		args = append(args, "%"+escapeLike(filter.Keyword)+"%")
	}

	countQuery := "SELECT count(*) FROM products " + where
	ctx, end := database.TraceQuery(ctx, "ListProducts", countQuery)
	defer func() { end(err) }()

	var total int
	if err = r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, database.Classify("count products", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM products %s
		ORDER BY created_at ASC, id ASC
		LIMIT $%d OFFSET $%d`, productColumns, where, n+1, n+2)
	args = append(args, filter.Limit, filter.Offset)

	products, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, 0, database.Classify("list products", err)
	}
	return products, total, nil
}

// Top returns the best rated products. Equal ratings keep insertion order.
func (r *ProductRepository) Top(ctx context.Context, limit int) (_ []domain.Product, err error) {
	query := fmt.Sprintf(`SELECT %s FROM products
		ORDER BY rating DESC, created_at ASC, id ASC
		LIMIT $1`, productColumns)
	ctx, end := database.TraceQuery(ctx, "TopProducts", query)
	defer func() { end(err) }()

	products, err := r.queryProducts(ctx, query, limit)
	if err != nil {
		return nil, database.Classify("top products", err)
	}
	return products, nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	ctx, end := database.TraceQuery(ctx, "GetProduct", query)
	defer func() { end(err) }()

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, database.Classify("get product", err)
	}
	return p, nil
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	reviews, err := json.Marshal(p.Reviews)
	if err != nil {
		return fmt.Errorf("marshal reviews: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO products (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`, productColumns)
	ctx, end := database.TraceQuery(ctx, "CreateProduct", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		p.ID, p.User, p.Name, p.Image, p.Brand, p.Category, p.Description, p.Price,
		p.CountInStock, p.Rating, p.NumReviews, reviews, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return database.Classify("insert product", err)
	}
	return nil
}

// Update applies the non-nil patch fields in one statement.
func (r *ProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (_ *domain.Product, err error) {
	query := fmt.Sprintf(`UPDATE products SET
			name = COALESCE($1, name),
			price = COALESCE($2, price),
			image = COALESCE($3, image),
			brand = COALESCE($4, brand),
			category = COALESCE($5, category),
			count_in_stock = COALESCE($6, count_in_stock),
			description = COALESCE($7, description),
			updated_at = $8
		WHERE id = $9
		RETURNING %s`, productColumns)
	ctx, end := database.TraceQuery(ctx, "UpdateProduct", query)
	defer func() { end(err) }()

	p, err := scanProduct(r.db.QueryRow(ctx, query,
		patch.Name, patch.Price, patch.Image, patch.Brand, patch.Category,
		patch.CountInStock, patch.Description, time.Now().UTC(), id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, database.Classify("update product", err)
	}
	return p, nil
}

// Delete removes a product from the database by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	const query = `DELETE FROM products WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "DeleteProduct", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return database.Classify("delete product", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Modify runs fn on the locked product row and writes back its reviews.
func (r *ProductRepository) Modify(ctx context.Context, id string, fn func(*domain.Product) error) (_ *domain.Product, err error) {
	selectQuery := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1 FOR UPDATE`, productColumns)
	ctx, end := database.TraceQuery(ctx, "ModifyProduct", selectQuery)
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, database.Classify("begin product tx", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	p, err := scanProduct(tx.QueryRow(ctx, selectQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, database.Classify("lock product", err)
	}

	if err = fn(p); err != nil {
		return nil, err
	}

	reviews, err := json.Marshal(p.Reviews)
	if err != nil {
		return nil, fmt.Errorf("marshal reviews: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx, `UPDATE products
		SET reviews = $1, num_reviews = $2, rating = $3, updated_at = $4
		WHERE id = $5`,
		reviews, p.NumReviews, p.Rating, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return nil, database.Classify("store product reviews", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, database.Classify("commit product tx", err)
	}
	return p, nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p       domain.Product
		reviews []byte
	)
	if err := row.Scan(
		&p.ID, &p.User, &p.Name, &p.Image, &p.Brand, &p.Category, &p.Description, &p.Price,
		&p.CountInStock, &p.Rating, &p.NumReviews, &reviews, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Reviews = []domain.Review{}
	if len(reviews) > 0 {
		if err := json.Unmarshal(reviews, &p.Reviews); err != nil {
			return nil, fmt.Errorf("unmarshal reviews: %w", err)
		}
	}
	return &p, nil
}
