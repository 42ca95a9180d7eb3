package model

import (
	"slices"
	"time"
)

const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"

	DefaultAppointmentDuration = 30

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	AppointmentStatuses = []string{StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow}

	// ActiveStatuses occupy a slot. The partial unique index filters on the same set.
	ActiveStatuses = []string{StatusScheduled, StatusConfirmed}

	AppointmentReasons = []string{"checkup", "vaccination", "grooming", "illness", "emergency", "surgery", "consultation"}

	// Slots are the bookable 30-minute starts of a clinic day.
	Slots = []string{
		"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
		"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
	}
)

type NotificationEmail struct {
	Sent   bool       `json:"sent" bson:"sent"`
	SentAt *time.Time `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
}

type Appointment struct {
	ID                string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PetOwnerID        string            `json:"pet_owner_id" bson:"pet_owner_id" validate:"required,mongodb"`
	PetID             string            `json:"pet_id" bson:"pet_id" validate:"required,mongodb"`
	VeterinarianID    string            `json:"veterinarian_id" bson:"veterinarian_id" validate:"required,mongodb"`
	AppointmentDate   time.Time         `json:"appointment_date" bson:"appointment_date" validate:"required"`
	AppointmentTime   string            `json:"appointment_time" bson:"appointment_time" validate:"required,slot_time"`
	Reason            string            `json:"reason" bson:"reason" validate:"required,oneof=checkup vaccination grooming illness emergency surgery consultation"`
	Notes             string            `json:"notes,omitempty" bson:"notes,omitempty" validate:"max=1000"`
	Status            string            `json:"status" bson:"status" validate:"required,oneof=scheduled confirmed completed cancelled no-show"`
	NotificationEmail NotificationEmail `json:"notification_email" bson:"notification_email"`
	Duration          int               `json:"duration" bson:"duration" validate:"min=15,max=120"`
	CreatedBy         string            `json:"created_by,omitempty" bson:"created_by,omitempty" validate:"omitempty,mongodb"`
	CreatedAt         time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" bson:"updated_at"`
}

func (a *Appointment) IsActive() bool {
	return IsActiveStatus(a.Status)
}

func (a *Appointment) DateString() string {
	return a.AppointmentDate.UTC().Format(DateLayout)
}

type AppointmentUpdate struct {
	Status string `validate:"required,oneof=scheduled confirmed completed cancelled no-show"`
	Reason string `validate:"omitempty,oneof=checkup vaccination grooming illness emergency surgery consultation"`
	Notes  *string
}

// AppointmentView is an appointment with display names resolved for lists and the dashboard.
type AppointmentView struct {
	*Appointment
	PetName          string
	PetSpecies       string
	OwnerName        string
	VeterinarianName string
}

func IsActiveStatus(status string) bool {
	return slices.Contains(ActiveStatuses, status)
}

func IsSlot(t string) bool {
	return slices.Contains(Slots, t)
}

// ParseDate reads a YYYY-MM-DD value as UTC midnight, the form appointment dates are stored in.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AvailableSlots returns Slots minus booked, keeping slot order.
func AvailableSlots(booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	available := make([]string, 0, len(Slots))
	for _, slot := range Slots {
		if _, ok := taken[slot]; !ok {
			available = append(available, slot)
		}
	}
	return available
}
