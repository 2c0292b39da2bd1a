package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tonimelisma/storefront-go/internal/model"
)

const productsPath = "/v1/products"

// Sort directions accepted by list endpoints.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ProductQuery filters and pages the product list. Zero values are left
// out of the query so the server applies its defaults.
type ProductQuery struct {
	Page       int // 0-based
	PageSize   int
	Name       string
	CategoryID string
	Featured   *bool
	SortBy     string
	SortDir    string
	MinPrice   *float64
	MaxPrice   *float64
	Rating     int
}

// Values encodes q as URL query parameters.
func (q ProductQuery) Values() url.Values {
	v := url.Values{}

	if q.Page > 0 {
		v.Set("pageNo", strconv.Itoa(q.Page))
	}

	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	if q.Name != "" {
		v.Set("name", q.Name)
	}

	if q.CategoryID != "" {
		v.Set("categoryId", q.CategoryID)
	}

	if q.Featured != nil {
		v.Set("featured", strconv.FormatBool(*q.Featured))
	}

	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}

	if q.SortDir != "" {
		v.Set("sortDir", q.SortDir)
	}

	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}

	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}

	if q.Rating > 0 {
		v.Set("rating", strconv.Itoa(q.Rating))
	}

	return v
}

// FeaturedQuery is the home page selection: the twelve best-rated featured
// products.
func FeaturedQuery() ProductQuery {
	featured := true

	return ProductQuery{
		PageSize: 12,
		Featured: &featured,
		SortBy:   "avgRating",
		SortDir:  SortDesc,
	}
}

// Products wraps the catalog endpoints.
type Products struct {
	r Requester
}

// List returns one page of products matching q.
func (p *Products) List(ctx context.Context, q ProductQuery) (*model.Page[model.Product], error) {
	path := withQuery(productsPath, q.Values())

	return getJSON[model.Page[model.Product]](ctx, p.r, path)
}

// Get returns a product with its reviews.
func (p *Products) Get(ctx context.Context, id int64) (*model.ProductDetail, error) {
	return getJSON[model.ProductDetail](ctx, p.r, productPath(id))
}

// Create adds a product. Validation happens server-side.
func (p *Products) Create(ctx context.Context, form model.ProductForm) (*model.ProductDetail, error) {
	resp, err := p.r.Post(ctx, productsPath, form, nil)
	if err != nil {
		return nil, fmt.Errorf("storefront: creating product: %w", err)
	}

	return decode[model.ProductDetail](resp, productsPath)
}

// Update replaces a product.
func (p *Products) Update(ctx context.Context, id int64, form model.ProductForm) (*model.ProductDetail, error) {
	path := productPath(id)

	resp, err := p.r.Put(ctx, path, form, nil)
	if err != nil {
		return nil, fmt.Errorf("storefront: updating product %d: %w", id, err)
	}

	return decode[model.ProductDetail](resp, path)
}

// Delete removes a product.
func (p *Products) Delete(ctx context.Context, id int64) error {
	if _, err := p.r.Delete(ctx, productPath(id), nil); err != nil {
		return fmt.Errorf("storefront: deleting product %d: %w", id, err)
	}

	return nil
}

// SetFeatured marks or unmarks a product as featured.
func (p *Products) SetFeatured(ctx context.Context, id int64, featured bool) (*model.ProductDetail, error) {
	path := fmt.Sprintf("%s/featured=%t", productPath(id), featured)

	resp, err := p.r.Put(ctx, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("storefront: featuring product %d: %w", id, err)
	}

	return decode[model.ProductDetail](resp, path)
}

func productPath(id int64) string {
	return productsPath + "/" + strconv.FormatInt(id, 10)
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}

	return path + "?" + v.Encode()
}
