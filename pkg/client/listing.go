package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"rentmate/pkg/model"
)

var ErrListingNotFound = errors.New("listing not found")

// ListingClient reads listings from the listings service.
type ListingClient struct {
	httpClient *HttpClient
}

func NewListingClient(baseUrl string) *ListingClient {
	return &ListingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *ListingClient) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	path := "/api/v1/listings/id/" + url.PathEscape(id)
	resp, err := c.httpClient.GET(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing %s: %w", id, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrListingNotFound, id)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("listings service returned %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}

	var listing model.Listing
	if err := resp.DecodeData(&listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *ListingClient) Ping(ctx context.Context) error {
	resp, err := c.httpClient.GET(ctx, "/health", nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("listings service health returned %d", resp.StatusCode)
	}
	return nil
}

// WaitForHealthy blocks until the listings service answers its health check
// or maxWait passes.
func (c *ListingClient) WaitForHealthy(ctx context.Context, maxWait time.Duration) error {
	return c.httpClient.WaitForHealthy(ctx, maxWait)
}
