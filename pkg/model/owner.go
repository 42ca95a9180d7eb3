package model

import "time"

type Address struct {
	Street  string `json:"street" bson:"street" validate:"max=200"`
	City    string `json:"city" bson:"city" validate:"max=100"`
	State   string `json:"state" bson:"state" validate:"max=100"`
	ZipCode string `json:"zip_code" bson:"zip_code" validate:"max=20"`
}

func (a Address) IsZero() bool {
	return a.Street == "" && a.City == "" && a.State == "" && a.ZipCode == ""
}

type EmergencyContact struct {
	Name         string `json:"name" bson:"name" validate:"max=100"`
	Phone        string `json:"phone" bson:"phone" validate:"omitempty,e164"`
	Relationship string `json:"relationship" bson:"relationship" validate:"max=50"`
}

type Owner struct {
	ID               string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FirstName        string           `json:"first_name" bson:"first_name" validate:"required,max=50"`
	LastName         string           `json:"last_name" bson:"last_name" validate:"required,max=50"`
	Email            string           `json:"email" bson:"email" validate:"required,email,max=254"`
	Phone            string           `json:"phone" bson:"phone" validate:"required,e164"`
	Address          Address          `json:"address" bson:"address"`
	EmergencyContact EmergencyContact `json:"emergency_contact" bson:"emergency_contact"`
	IsActive         bool             `json:"is_active" bson:"is_active"`
	CreatedAt        time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" bson:"updated_at"`
}

func (o *Owner) FullName() string {
	return o.FirstName + " " + o.LastName
}
