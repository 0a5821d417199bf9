package validator

import (
	"errors"
	"testing"

	"rentmate/pkg/logger"
	"rentmate/pkg/model"
	"rentmate/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validListing() *model.Listing {
	return &model.Listing{
		OwnerID:   "owner-1",
		Name:      "Sea View Loft",
		Address:   "12 Herzl St, Haifa",
		Price:     120,
		PhotoURLs: []string{"https://cdn.example.com/a.jpg"},
		Features: model.ListingFeatures{
			HasWifi:           true,
			NumberOfRooms:     2,
			NumberOfBathrooms: 1,
		},
	}
}

func fields(t *testing.T, err error) []string {
	t.Helper()
	var verrs validation.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(l *model.Listing)
		wantField string
	}{
		{"valid", func(*model.Listing) {}, ""},
		{"missing owner", func(l *model.Listing) { l.OwnerID = "" }, "owner_id"},
		{"short name", func(l *model.Listing) { l.Name = "A" }, "name"},
		{"missing address", func(l *model.Listing) { l.Address = "" }, "address"},
		{"zero price", func(l *model.Listing) { l.Price = 0 }, "price"},
		{"bad photo url", func(l *model.Listing) { l.PhotoURLs = []string{"not a url"} }, "photo_urls[0]"},
		{"too many rooms", func(l *model.Listing) { l.Features.NumberOfRooms = 51 }, "features.number_of_rooms"},
		{"duplicate photos", func(l *model.Listing) {
			l.PhotoURLs = []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"}
		}, "photo_urls"},
		{"bathrooms exceed rooms", func(l *model.Listing) { l.Features.NumberOfBathrooms = 5 }, "features.number_of_bathrooms"},
	}

	v := NewListingValidator(logger.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validListing()
			tt.mutate(l)

			err := v.Validate(l)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			assert.Contains(t, fields(t, err), tt.wantField)
		})
	}
}

func TestValidateReview(t *testing.T) {
	v := NewListingValidator(logger.NewNop())

	assert.NoError(t, v.ValidateReview(&model.ReviewRequest{Rating: 5, Comment: "Lovely"}))
	assert.Equal(t, []string{"rating"}, fields(t, v.ValidateReview(&model.ReviewRequest{Rating: 0})))
	assert.Equal(t, []string{"rating"}, fields(t, v.ValidateReview(&model.ReviewRequest{Rating: 6})))
}
