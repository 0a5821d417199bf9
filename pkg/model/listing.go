package model

import "time"

type ListingFeatures struct {
	HasWifi            bool `json:"has_wifi" bson:"has_wifi"`
	HasParking         bool `json:"has_parking" bson:"has_parking"`
	NumberOfRooms      int  `json:"number_of_rooms" bson:"number_of_rooms" validate:"min=0,max=50"`
	NumberOfBathrooms  int  `json:"number_of_bathrooms" bson:"number_of_bathrooms" validate:"min=0,max=50"`
	HasAirConditioning bool `json:"has_air_conditioning" bson:"has_air_conditioning"`
	HasKitchen         bool `json:"has_kitchen" bson:"has_kitchen"`
}

type Listing struct {
	ID          string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID     string          `json:"owner_id" bson:"owner_id" validate:"required,min=1,max=128"`
	Name        string          `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Address     string          `json:"address" bson:"address" validate:"required,min=2,max=200"`
	Description string          `json:"description" bson:"description" validate:"omitempty,max=2000"`
	Price       float64         `json:"price" bson:"price" validate:"required,gt=0"`
	PhotoURLs   []string        `json:"photo_urls" bson:"photo_urls" validate:"omitempty,max=20,dive,url"`
	Features    ListingFeatures `json:"features" bson:"features"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
}

type ListingUpdate struct {
	Name        string           `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Address     string           `json:"address,omitempty" validate:"omitempty,min=2,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       *float64         `json:"price,omitempty" validate:"omitempty,gt=0"`
	PhotoURLs   *[]string        `json:"photo_urls,omitempty" validate:"omitempty,max=20,dive,url"`
	Features    *ListingFeatures `json:"features,omitempty"`
}
