package storefront

import (
	"context"
	"fmt"

	"github.com/tonimelisma/storefront-go/internal/model"
)

const ratingsPath = "/v1/ratings"

// Ratings wraps the review endpoint.
type Ratings struct {
	r Requester
}

// Create posts a review.
func (rt *Ratings) Create(ctx context.Context, form model.RatingForm) (*model.Rating, error) {
	resp, err := rt.r.Post(ctx, ratingsPath, form, nil)
	if err != nil {
		return nil, fmt.Errorf("storefront: posting rating: %w", err)
	}

	return decode[model.Rating](resp, ratingsPath)
}
