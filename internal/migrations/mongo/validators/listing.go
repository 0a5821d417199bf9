package validators

import "go.mongodb.org/mongo-driver/bson"

var ListingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"name",
			"address",
			"price",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"price": bson.M{
				"bsonType":         []string{"double", "int", "long"},
				"minimum":          0,
				"exclusiveMinimum": true,
			},

			"photo_urls": bson.M{
				"bsonType": []string{"array", "null"},
				"maxItems": 20,
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"features": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"has_wifi":             bson.M{"bsonType": "bool"},
					"has_parking":          bson.M{"bsonType": "bool"},
					"has_air_conditioning": bson.M{"bsonType": "bool"},
					"has_kitchen":          bson.M{"bsonType": "bool"},
					"number_of_rooms": bson.M{
						"bsonType": []string{"int", "long"},
						"minimum":  0,
						"maximum":  50,
					},
					"number_of_bathrooms": bson.M{
						"bsonType": []string{"int", "long"},
						"minimum":  0,
						"maximum":  50,
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var ReviewValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"listing_id",
			"author_id",
			"rating",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"listing_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"author_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"rating": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  5,
			},

			"comment": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var ListingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"owner",
			"expires_at",
		},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"owner": bson.M{
				"bsonType": "string",
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
