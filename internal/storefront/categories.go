package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tonimelisma/storefront-go/internal/model"
)

const categoriesPath = "/v1/categories"

// Categories wraps the category hierarchy endpoints.
type Categories struct {
	r Requester
}

// Parents returns the top-level categories.
func (c *Categories) Parents(ctx context.Context) ([]model.Category, error) {
	list, err := getJSON[[]model.Category](ctx, c.r, categoriesPath+"/parents")
	if err != nil {
		return nil, err
	}

	return *list, nil
}

// Children returns the direct children of parentID.
func (c *Categories) Children(ctx context.Context, parentID int64) ([]model.Category, error) {
	v := url.Values{"parentId": {strconv.FormatInt(parentID, 10)}}

	list, err := getJSON[[]model.Category](ctx, c.r, withQuery(categoriesPath, v))
	if err != nil {
		return nil, err
	}

	return *list, nil
}

// Tree returns the full hierarchy.
func (c *Categories) Tree(ctx context.Context) ([]model.CategoryTree, error) {
	tree, err := getJSON[[]model.CategoryTree](ctx, c.r, categoriesPath+"/tree")
	if err != nil {
		return nil, err
	}

	return *tree, nil
}

// Get returns one category.
func (c *Categories) Get(ctx context.Context, id int64) (*model.Category, error) {
	return getJSON[model.Category](ctx, c.r, categoryPath(id))
}

// Create adds a category.
func (c *Categories) Create(ctx context.Context, form model.CategoryForm) (*model.Category, error) {
	resp, err := c.r.Post(ctx, categoriesPath, form, nil)
	if err != nil {
		return nil, fmt.Errorf("storefront: creating category: %w", err)
	}

	return decode[model.Category](resp, categoriesPath)
}

// Update replaces a category.
func (c *Categories) Update(ctx context.Context, id int64, form model.CategoryForm) (*model.Category, error) {
	path := categoryPath(id)

	resp, err := c.r.Put(ctx, path, form, nil)
	if err != nil {
		return nil, fmt.Errorf("storefront: updating category %d: %w", id, err)
	}

	return decode[model.Category](resp, path)
}

// Delete removes an empty category. The server refuses with 409 when the
// category still has children or products; use ForceDelete for that.
func (c *Categories) Delete(ctx context.Context, id int64) error {
	if _, err := c.r.Delete(ctx, categoryPath(id), nil); err != nil {
		return fmt.Errorf("storefront: deleting category %d: %w", id, err)
	}

	return nil
}

// ForceDelete removes a category and everything under it.
func (c *Categories) ForceDelete(ctx context.Context, id int64) error {
	if _, err := c.r.Delete(ctx, categoryPath(id)+"/force", nil); err != nil {
		return fmt.Errorf("storefront: force-deleting category %d: %w", id, err)
	}

	return nil
}

func categoryPath(id int64) string {
	return categoriesPath + "/" + strconv.FormatInt(id, 10)
}
