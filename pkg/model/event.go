package model

import "time"

const (
	EventAppointmentCreated       = "appointment.created"
	EventAppointmentStatusChanged = "appointment.status_changed"
)

// AppointmentEvent is the payload published on the appointments topic.
type AppointmentEvent struct {
	Type            string    `json:"type"`
	AppointmentID   string    `json:"appointment_id"`
	VeterinarianID  string    `json:"veterinarian_id"`
	PetID           string    `json:"pet_id"`
	PetOwnerID      string    `json:"pet_owner_id"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	Reason          string    `json:"reason"`
	Status          string    `json:"status"`
	PreviousStatus  string    `json:"previous_status,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func NewAppointmentEvent(eventType string, a *Appointment) AppointmentEvent {
	return AppointmentEvent{
		Type:            eventType,
		AppointmentID:   a.ID,
		VeterinarianID:  a.VeterinarianID,
		PetID:           a.PetID,
		PetOwnerID:      a.PetOwnerID,
		AppointmentDate: a.DateString(),
		AppointmentTime: a.AppointmentTime,
		Reason:          a.Reason,
		Status:          a.Status,
		OccurredAt:      time.Now().UTC(),
	}
}
