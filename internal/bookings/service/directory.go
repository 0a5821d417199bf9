package service

import (
	"context"
	"errors"
	"fmt"

	bookingerrors "rentmate/internal/bookings/errors"
	"rentmate/pkg/client"
	"rentmate/pkg/model"
)

type listingGetter interface {
	GetByID(ctx context.Context, id string) (*model.Listing, error)
}

// ListingDirectory resolves listings through the listings service.
type ListingDirectory struct {
	listings listingGetter
}

func NewListingDirectory(listings listingGetter) *ListingDirectory {
	return &ListingDirectory{listings: listings}
}

func (d *ListingDirectory) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := d.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, client.ErrListingNotFound) {
			return nil, fmt.Errorf("%w: %s", bookingerrors.ErrListingNotFound, id)
		}
		return nil, err
	}
	return listing, nil
}
