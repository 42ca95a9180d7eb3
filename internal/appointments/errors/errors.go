package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	// ErrSlotTaken is the partial unique index on (veterinarian_id, appointment_date,
	// appointment_time) rejecting a second active appointment.
	ErrSlotTaken = errors.New("time slot already booked")
)
