package model

import "time"

type Review struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ListingID string    `json:"listing_id" bson:"listing_id" validate:"required,mongodb"`
	AuthorID  string    `json:"author_id" bson:"author_id" validate:"required,min=1,max=128"`
	Rating    int       `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" bson:"comment" validate:"omitempty,max=1000"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ReviewRequest is the body of a new review. Listing and author come from
// the route and the caller.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}
