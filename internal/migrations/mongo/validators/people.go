package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = schema(
	[]string{"username", "email", "password_hash", "first_name", "last_name", "role", "is_active", "created_at"},
	bson.M{
		"username":      str(3, 30),
		"email":         str(3, 254),
		"password_hash": str(1, 100),
		"first_name":    str(1, 50),
		"last_name":     str(1, 50),
		"role":          enum("admin", "veterinarian", "staff"),
		"is_active":     bson.M{"bsonType": "bool"},
		"last_login":    bson.M{"bsonType": "date"},
		"created_at":    bson.M{"bsonType": "date"},
	},
)

var OwnerValidator = schema(
	[]string{"first_name", "last_name", "email", "phone", "is_active", "created_at"},
	bson.M{
		"first_name": str(1, 50),
		"last_name":  str(1, 50),
		"email":      str(3, 254),
		"phone": bson.M{
			"bsonType": "string",
			"pattern":  `^\+[1-9][0-9]{6,14}$`,
		},
		"address": bson.M{"bsonType": "object"},
		"emergency_contact": bson.M{
			"bsonType": "object",
		},
		"is_active":  bson.M{"bsonType": "bool"},
		"created_at": bson.M{"bsonType": "date"},
	},
)

var PetValidator = schema(
	[]string{"name", "species", "gender", "owner_id", "is_active", "created_at"},
	bson.M{
		"name":     str(1, 50),
		"species":  enum("Dog", "Cat", "Bird", "Rabbit", "Other"),
		"gender":   enum("Male", "Female"),
		"age":      bson.M{"bsonType": "number", "minimum": 0, "maximum": 100},
		"weight":   bson.M{"bsonType": "number", "minimum": 0, "maximum": 1000},
		"owner_id": objectIDString,
		"medical_history": bson.M{
			"bsonType": "array",
			"items": bson.M{
				"bsonType": "object",
				"required": []string{"date", "condition", "treatment"},
				"properties": bson.M{
					"date":      bson.M{"bsonType": "date"},
					"condition": str(1, 200),
					"treatment": str(1, 500),
				},
			},
		},
		"is_active":  bson.M{"bsonType": "bool"},
		"created_at": bson.M{"bsonType": "date"},
	},
)
