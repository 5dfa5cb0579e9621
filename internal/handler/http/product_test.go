package http

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nicofzzn/ecommerce/internal/domain"
	apperrors "github.com/nicofzzn/ecommerce/pkg/errors"
)

func TestListProducts_DefaultsAndKeyword(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("List", mock.Anything, domain.ProductFilter{Keyword: "phone", Limit: 5, Offset: 0}).
		Return([]domain.Product{{ID: productID, Name: "iPhone 11 Pro"}}, 6, nil)

	rec := env.do(t, http.MethodGet, "/api/products?keyword=phone&pageNumber=abc", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "public")
	page := decodeBody[domain.ProductPage](t, rec)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Products, 1)
	assert.Equal(t, productID, page.Products[0].ID)
}

func TestListProducts_SecondPage(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("List", mock.Anything, domain.ProductFilter{Limit: 5, Offset: 5}).
		Return([]domain.Product{}, 6, nil)

	rec := env.do(t, http.MethodGet, "/api/products?pageNumber=2", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":[],"page":2,"pages":2}`, rec.Body.String())
}

func TestListProducts_HugePageNumberIsClamped(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("List", mock.Anything, domain.ProductFilter{Limit: 5, Offset: 2147483645}).
		Return([]domain.Product{}, 6, nil)

	rec := env.do(t, http.MethodGet, "/api/products?pageNumber=3689348814741910324", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[domain.ProductPage](t, rec)
	assert.Equal(t, 429496730, page.Page)
	assert.Empty(t, page.Products)
}

func TestListProducts_StoreUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("List", mock.Anything, mock.Anything).
		Return(nil, 0, apperrors.ServiceUnavailable("data store unavailable", errors.New("dial tcp")))

	rec := env.do(t, http.MethodGet, "/api/products", "", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTopProducts(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Top", mock.Anything, 3).
		Return([]domain.Product{{ID: "a", Rating: 5}, {ID: "b", Rating: 4.5}}, nil)

	rec := env.do(t, http.MethodGet, "/api/products/top", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[[]domain.Product](t, rec)
	assert.Len(t, got, 2)
	env.products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("GetByID", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Name: "Airpods", Reviews: []domain.Review{}}, nil)

	rec := env.do(t, http.MethodGet, "/api/products/"+productID, "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, productID, body["_id"])
	assert.Equal(t, "Airpods", body["name"])
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("GetByID", mock.Anything, productID).Return(nil, domain.ErrProductNotFound)

	rec := env.do(t, http.MethodGet, "/api/products/"+productID, "", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeBody[messageBody](t, rec).Message)
}

func TestGetProduct_MalformedID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products/not-an-id", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCreateProduct_Authorization(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"bad token", "garbage", http.StatusUnauthorized},
		{"customer", customerToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodPost, "/api/products", tt.token, nil)
			assert.Equal(t, tt.want, rec.Code)
			env.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateProduct_Admin(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.User == adminID && p.Name == "Sample product"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Product).ID = productID
	}).Return(nil)

	rec := env.do(t, http.MethodPost, "/api/products", adminToken, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, productID, body["_id"])
	assert.Equal(t, "Sample brand", body["brand"])
	assert.Equal(t, "/images/sample.jpg", body["image"])
	env.products.AssertExpectations(t)
}

func TestUpdateProduct_OnlySuppliedFields(t *testing.T) {
	env := newTestEnv(t)
	name, stock := "Airpods Pro", 7
	env.products.On("Update", mock.Anything, productID, domain.ProductPatch{Name: &name, CountInStock: &stock}).
		Return(&domain.Product{ID: productID, Name: name, CountInStock: stock, Brand: "Apple"}, nil)

	rec := env.do(t, http.MethodPut, "/api/products/"+productID, adminToken,
		map[string]any{"name": name, "countInStock": stock, "numReviews": 99})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Apple", body["brand"])
	env.products.AssertExpectations(t)
}

func TestUpdateProduct_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/products/"+productID, adminToken, map[string]any{"price": -1})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[messageBody](t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Contains(t, body.Fields, "price")
}

func TestUpdateProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Update", mock.Anything, productID, mock.Anything).Return(nil, domain.ErrProductNotFound)

	rec := env.do(t, http.MethodPut, "/api/products/"+productID, adminToken, map[string]any{"name": "x"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Delete", mock.Anything, productID).Return(nil)

	rec := env.do(t, http.MethodDelete, "/api/products/"+productID, adminToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Product removed"}`, rec.Body.String())
}

func TestDeleteProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Delete", mock.Anything, productID).Return(domain.ErrProductNotFound)

	rec := env.do(t, http.MethodDelete, "/api/products/"+productID, adminToken, nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeBody[messageBody](t, rec).Message)
}

func TestAddReview(t *testing.T) {
	env := newTestEnv(t)
	product := &domain.Product{ID: productID, Reviews: []domain.Review{}}
	env.products.On("Modify", mock.Anything, productID).Return(product, nil)

	rec := env.do(t, http.MethodPut, "/api/products/"+productID+"/reviews", customerToken,
		map[string]any{"rating": 4, "comment": "Great sound"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Review added"}`, rec.Body.String())
	require.Len(t, product.Reviews, 1)
	assert.Equal(t, customerID, product.Reviews[0].User)
	assert.Equal(t, "John Doe", product.Reviews[0].Name)
	assert.Equal(t, 1, product.NumReviews)
	assert.InDelta(t, 4.0, product.Rating, 1e-9)
}

func TestAddReview_PostAlsoAccepted(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Modify", mock.Anything, productID).Return(&domain.Product{ID: productID}, nil)

	rec := env.do(t, http.MethodPost, "/api/products/"+productID+"/reviews", customerToken,
		map[string]any{"rating": 5, "comment": "ok"})

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAddReview_RatingWithoutComment(t *testing.T) {
	env := newTestEnv(t)
	product := &domain.Product{ID: productID, Reviews: []domain.Review{}}
	env.products.On("Modify", mock.Anything, productID).Return(product, nil)

	rec := env.do(t, http.MethodPost, "/api/products/"+productID+"/reviews", customerToken,
		map[string]any{"rating": 3})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, product.Reviews, 1)
	assert.Equal(t, 3, product.Reviews[0].Rating)
	assert.Empty(t, product.Reviews[0].Comment)
}

func TestAddReview_AlreadyReviewed(t *testing.T) {
	env := newTestEnv(t)
	product := &domain.Product{ID: productID, Reviews: []domain.Review{{User: customerID, Rating: 3}}, NumReviews: 1, Rating: 3}
	env.products.On("Modify", mock.Anything, productID).Return(product, nil)

	rec := env.do(t, http.MethodPut, "/api/products/"+productID+"/reviews", customerToken,
		map[string]any{"rating": 5, "comment": "again"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Product already reviewed", decodeBody[messageBody](t, rec).Message)
	assert.Len(t, product.Reviews, 1)
}

func TestAddReview_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		token string
		body  map[string]any
		want  int
	}{
		{"anonymous", "", map[string]any{"rating": 5, "comment": "x"}, http.StatusUnauthorized},
		{"rating too high", customerToken, map[string]any{"rating": 6, "comment": "x"}, http.StatusBadRequest},
		{"rating missing", customerToken, map[string]any{"comment": "x"}, http.StatusBadRequest},
		{"comment too long", customerToken, map[string]any{"rating": 3, "comment": strings.Repeat("a", 2001)}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodPut, "/api/products/"+productID+"/reviews", tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code)
			env.products.AssertNotCalled(t, "Modify", mock.Anything, mock.Anything)
		})
	}
}

func TestAddReview_ProductNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Modify", mock.Anything, productID).Return(nil, domain.ErrProductNotFound)

	rec := env.do(t, http.MethodPut, "/api/products/"+productID+"/reviews", customerToken,
		map[string]any{"rating": 5, "comment": "x"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
