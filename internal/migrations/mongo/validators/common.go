package validators

import "go.mongodb.org/mongo-driver/bson"

// objectIDString matches the hex ids used for references between collections.
var objectIDString = bson.M{
	"bsonType": "string",
	"pattern":  "^[0-9a-fA-F]{24}$",
}

func str(minLen, maxLen int) bson.M {
	return bson.M{
		"bsonType":  "string",
		"minLength": minLen,
		"maxLength": maxLen,
	}
}

func enum(values ...string) bson.M {
	return bson.M{
		"bsonType": "string",
		"enum":     values,
	}
}

func number(min float64) bson.M {
	return bson.M{
		"bsonType": "number",
		"minimum":  min,
	}
}

func schema(required []string, properties bson.M) bson.M {
	if _, ok := properties["_id"]; !ok {
		properties["_id"] = bson.M{"bsonType": "objectId"}
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":             "object",
			"required":             required,
			"additionalProperties": true,
			"properties":           properties,
		},
	}
}
