package validators

import "go.mongodb.org/mongo-driver/bson"

var PromoCodeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"discount_type",
			"discount_value",
			"applicable_to",
			"valid_from",
			"valid_until",
			"is_active",
			"usage_count",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 32,
				"pattern":   "^[A-Z0-9]+$",
			},

			"discount_type": bson.M{
				"enum": []string{"PERCENTAGE", "FIXED_AMOUNT"},
			},

			"discount_value": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"max_discount_amount": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"min_booking_amount": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"applicable_to": bson.M{
				"enum": []string{"ALL", "VENUE_ONLY", "COACH_ONLY"},
			},

			"valid_from": bson.M{
				"bsonType": "date",
			},

			"valid_until": bson.M{
				"bsonType": "date",
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"usage_count": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},
		},
	},
}

var PromoRedemptionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"code",
			"user_id",
			"booking_id",
			"discount_applied",
			"redeemed_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"code": bson.M{
				"bsonType": "string",
			},

			"user_id": bson.M{
				"bsonType": "string",
			},

			"booking_id": bson.M{
				"bsonType": "string",
			},

			"discount_applied": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"redeemed_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
