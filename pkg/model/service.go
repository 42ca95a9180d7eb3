package model

import (
	"fmt"
	"time"
)

var (
	ServiceCategories = []string{
		"General Care",
		"Emergency Services",
		"Surgery",
		"Dental Care",
		"Grooming",
		"Vaccination",
		"Diagnostic",
		"Wellness",
		"Specialty Care",
	}

	ServicePetTypes = []string{"Dog", "Cat", "Bird", "Rabbit", "All"}

	VeterinarianLevels = []string{"Any", "Specialist", "Senior"}
)

const DefaultServiceIcon = "fas fa-stethoscope"

type Service struct {
	ID                      string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name                    string    `json:"name" bson:"name" validate:"required,max=100"`
	Description             string    `json:"description" bson:"description" validate:"required,max=2000"`
	Category                string    `json:"category" bson:"category" validate:"required,service_category"`
	Price                   float64   `json:"price" bson:"price" validate:"min=0"`
	Duration                int       `json:"duration" bson:"duration" validate:"min=15,max=1440"`
	AvailableFor            []string  `json:"available_for" bson:"available_for" validate:"dive,service_pet_type"`
	RequiresAppointment     bool      `json:"requires_appointment" bson:"requires_appointment"`
	IsEmergencyService      bool      `json:"is_emergency_service" bson:"is_emergency_service"`
	PreparationInstructions string    `json:"preparation_instructions,omitempty" bson:"preparation_instructions,omitempty" validate:"max=2000"`
	FollowUpRequired        bool      `json:"follow_up_required" bson:"follow_up_required"`
	VeterinarianRequired    string    `json:"veterinarian_required" bson:"veterinarian_required" validate:"required,oneof=Any Specialist Senior"`
	Icon                    string    `json:"icon" bson:"icon" validate:"max=100"`
	IsActive                bool      `json:"is_active" bson:"is_active"`
	PopularityScore         int       `json:"popularity_score" bson:"popularity_score" validate:"min=0"`
	CreatedAt               time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt               time.Time `json:"updated_at" bson:"updated_at"`
}

// FormattedDuration renders minutes as "45 min", "2 hr" or "1h 30m".
func (s *Service) FormattedDuration() string {
	return FormatDuration(s.Duration)
}

func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	rest := minutes % 60
	if rest == 0 {
		return fmt.Sprintf("%d hr", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, rest)
}
