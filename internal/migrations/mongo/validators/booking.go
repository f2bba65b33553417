package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"player_id",
			"venue_id",
			"sport",
			"date",
			"start_time",
			"end_time",
			"status",
			"total_amount",
			"payments",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"player_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"venue_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"coach_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"sport": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 40,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"enum": []string{
					"PENDING_PAYMENT",
					"CONFIRMED",
					"IN_PROGRESS",
					"COMPLETED",
					"CANCELLED",
				},
			},

			"hold_expires_at": bson.M{
				"bsonType": "date",
			},

			"total_amount": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"discount_amount": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"payments": bson.M{
				"bsonType": "array",
				"maxItems": 2,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"id", "payee_type", "payee_id", "amount", "status"},
					"properties": bson.M{
						"payee_type": bson.M{
							"enum": []string{"VENUE", "COACH"},
						},
						"amount": bson.M{
							"bsonType": "long",
							"minimum":  0,
						},
						"status": bson.M{
							"enum": []string{"PENDING", "PAID", "FAILED", "REFUNDED"},
						},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
