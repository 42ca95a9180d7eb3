package model

import "time"

var (
	Species = []string{"Dog", "Cat", "Bird", "Rabbit", "Other"}
	Genders = []string{"Male", "Female"}
)

type MedicalRecord struct {
	Date      time.Time `json:"date" bson:"date" validate:"required"`
	Condition string    `json:"condition" bson:"condition" validate:"required,max=200"`
	Treatment string    `json:"treatment" bson:"treatment" validate:"required,max=500"`
	Notes     string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"max=1000"`
}

type Pet struct {
	ID             string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name           string          `json:"name" bson:"name" validate:"required,max=50"`
	Species        string          `json:"species" bson:"species" validate:"required,oneof=Dog Cat Bird Rabbit Other"`
	Breed          string          `json:"breed,omitempty" bson:"breed,omitempty" validate:"max=50"`
	Age            float64         `json:"age" bson:"age" validate:"min=0,max=100"`
	Weight         float64         `json:"weight" bson:"weight" validate:"min=0,max=1000"`
	Color          string          `json:"color,omitempty" bson:"color,omitempty" validate:"max=50"`
	Gender         string          `json:"gender" bson:"gender" validate:"required,oneof=Male Female"`
	OwnerID        string          `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	MedicalHistory []MedicalRecord `json:"medical_history" bson:"medical_history" validate:"dive"`
	IsActive       bool            `json:"is_active" bson:"is_active"`
	CreatedAt      time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" bson:"updated_at"`
}

// PetWithOwner is a list row with the owner's display name resolved.
type PetWithOwner struct {
	*Pet
	OwnerName string
}
