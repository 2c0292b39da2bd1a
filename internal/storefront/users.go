package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tonimelisma/storefront-go/internal/model"
)

const usersPath = "/v1/users"

// UserQuery pages the account list, optionally filtered by email.
type UserQuery struct {
	Page     int // 0-based
	PageSize int
	Email    string
}

// Values encodes q as URL query parameters.
func (q UserQuery) Values() url.Values {
	v := url.Values{}

	if q.Page > 0 {
		v.Set("pageNo", strconv.Itoa(q.Page))
	}

	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	if q.Email != "" {
		v.Set("email", q.Email)
	}

	return v
}

// Users wraps the admin account endpoints.
type Users struct {
	r Requester
}

// List returns one page of accounts.
func (u *Users) List(ctx context.Context, q UserQuery) (*model.Page[model.UserDetail], error) {
	return getJSON[model.Page[model.UserDetail]](ctx, u.r, withQuery(usersPath, q.Values()))
}

// Delete removes an account.
func (u *Users) Delete(ctx context.Context, id int64) error {
	if _, err := u.r.Delete(ctx, userPath(id), nil); err != nil {
		return fmt.Errorf("storefront: deleting user %d: %w", id, err)
	}

	return nil
}

// UpdateByAdmin edits another user's account.
func (u *Users) UpdateByAdmin(ctx context.Context, id int64, form model.CustomerForm) error {
	if _, err := u.r.Put(ctx, userPath(id)+"/by-admin", form, nil); err != nil {
		return fmt.Errorf("storefront: updating user %d: %w", id, err)
	}

	return nil
}

func userPath(id int64) string {
	return usersPath + "/" + strconv.FormatInt(id, 10)
}
