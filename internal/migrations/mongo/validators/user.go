package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"username",
			"email",
			"password_hash",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"username": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType": "string",
				"pattern":  "^[^@\\s]+@[^@\\s]+$",
			},

			"password_hash": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"contact_number": bson.M{
				"bsonType": "string",
				"pattern":  "^\\+[1-9][0-9]{6,14}$",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
