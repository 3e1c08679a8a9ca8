package validators

import "go.mongodb.org/mongo-driver/bson"

var StationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"charger_type",
			"latitude",
			"longitude",
			"location",
			"active",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"charger_type": bson.M{
				"enum": []string{"ac_slow", "ac_fast", "dc_fast"},
			},

			"latitude": bson.M{
				"bsonType": "double",
				"minimum":  -90,
				"maximum":  90,
			},

			"longitude": bson.M{
				"bsonType": "double",
				"minimum":  -180,
				"maximum":  180,
			},

			"location": pointSchema,

			"active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

// pointSchema matches a GeoJSON Point stored as [longitude, latitude].
var pointSchema = bson.M{
	"bsonType": "object",
	"required": []string{"type", "coordinates"},
	"properties": bson.M{
		"type": bson.M{
			"enum": []string{"Point"},
		},
		"coordinates": bson.M{
			"bsonType": "array",
			"minItems": 2,
			"maxItems": 2,
			"items": bson.M{
				"bsonType": "double",
			},
		},
	},
}
