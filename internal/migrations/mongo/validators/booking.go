package validators

import "go.mongodb.org/mongo-driver/bson"

// Dates are stored as yyyy-MM-dd strings so that lexical order is
// chronological order.
const datePattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"listing_id",
			"renter_id",
			"start_date",
			"end_date",
			"status",
			"is_paid",
			"total_price",
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

			"renter_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"start_date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"end_date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"confirmed",
					"cancelled",
				},
			},

			"is_paid": bson.M{
				"bsonType": "bool",
			},

			"total_price": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"payment_ref": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
