package validators

import (
	"petcare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

var ServiceValidator = schema(
	[]string{"name", "description", "category", "price", "duration", "veterinarian_required", "is_active"},
	bson.M{
		"name":                  str(1, 100),
		"description":           str(1, 2000),
		"category":              enum(model.ServiceCategories...),
		"price":                 number(0),
		"duration":              bson.M{"bsonType": "number", "minimum": 15, "maximum": 1440},
		"available_for":         bson.M{"bsonType": "array", "items": enum(model.ServicePetTypes...)},
		"veterinarian_required": enum(model.VeterinarianLevels...),
		"is_active":             bson.M{"bsonType": "bool"},
		"popularity_score":      number(0),
	},
)

var ProductValidator = schema(
	[]string{"name", "description", "category", "price", "stock", "in_stock", "is_active"},
	bson.M{
		"name":          str(1, 200),
		"description":   str(1, 2000),
		"category":      enum(model.ProductCategories...),
		"price":         number(0),
		"stock":         number(0),
		"available_for": bson.M{"bsonType": "array", "items": enum(model.ProductPetTypes...)},
		"rating":        bson.M{"bsonType": "number", "minimum": 0, "maximum": 5},
		"review_count":  number(0),
		"tags":          bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
		"in_stock":      bson.M{"bsonType": "bool"},
		"is_active":     bson.M{"bsonType": "bool"},
	},
)
