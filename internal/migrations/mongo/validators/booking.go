package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user",
			"car_type",
			"car_number",
			"charger_type",
			"location",
			"station_id",
			"charging_slot",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"user": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"car_type": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"car_number": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 32,
			},

			"charger_type": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 32,
			},

			"location": pointSchema,

			"nearest_location": pointSchema,

			"station_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"charging_slot": bson.M{
				"bsonType": "object",
				"required": []string{"start_time", "end_time"},
				"properties": bson.M{
					"start_time": bson.M{
						"bsonType": "date",
					},
					"end_time": bson.M{
						"bsonType": "date",
					},
				},
			},

			"distance_km": bson.M{
				"bsonType": "double",
				"minimum":  0,
			},

			"status": bson.M{
				"enum": []string{"confirmed", "cancelled"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"cancelled_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
