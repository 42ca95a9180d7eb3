package validators

import (
	"petcare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

var AppointmentValidator = schema(
	[]string{"pet_owner_id", "pet_id", "veterinarian_id", "appointment_date", "appointment_time", "reason", "status", "created_at"},
	bson.M{
		"pet_owner_id":     objectIDString,
		"pet_id":           objectIDString,
		"veterinarian_id":  objectIDString,
		"appointment_date": bson.M{"bsonType": "date"},
		"appointment_time": enum(model.Slots...),
		"reason":           enum(model.AppointmentReasons...),
		"notes":            str(0, 1000),
		"status":           enum(model.AppointmentStatuses...),
		"duration":         bson.M{"bsonType": "number", "minimum": 15, "maximum": 120},
		"notification_email": bson.M{
			"bsonType": "object",
			"properties": bson.M{
				"sent":    bson.M{"bsonType": "bool"},
				"sent_at": bson.M{"bsonType": "date"},
			},
		},
		"created_at": bson.M{"bsonType": "date"},
	},
)

var CartValidator = schema(
	[]string{"user_id", "items", "total_items", "total_price", "status"},
	bson.M{
		"user_id": objectIDString,
		"items": bson.M{
			"bsonType": "array",
			"items": bson.M{
				"bsonType": "object",
				"required": []string{"product_id", "quantity", "price"},
				"properties": bson.M{
					"product_id": objectIDString,
					"quantity":   number(1),
					"price":      number(0),
				},
			},
		},
		"total_items": number(0),
		"total_price": number(0),
		"status":      enum(model.CartActive, model.CartOrdered, model.CartAbandoned),
		"version":     number(0),
	},
)

var SessionValidator = schema(
	[]string{"expires_at"},
	bson.M{
		"_id":        bson.M{"bsonType": "string"},
		"expires_at": bson.M{"bsonType": "date"},
	},
)
