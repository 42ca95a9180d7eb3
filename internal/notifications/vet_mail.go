package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	autherrors "petcare/internal/auth/errors"
	ownererrors "petcare/internal/owners/errors"
	peterrors "petcare/internal/pets/errors"
	"petcare/pkg/logger"
	"petcare/pkg/mailer"
	"petcare/pkg/model"
)

type VetFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type PetFinder interface {
	FindByID(ctx context.Context, id string) (*model.Pet, error)
}

type OwnerFinder interface {
	FindByID(ctx context.Context, id string) (*model.Owner, error)
}

// NotificationRecorder flags an appointment once its vet has actually been emailed.
type NotificationRecorder interface {
	MarkNotified(ctx context.Context, id string, at time.Time) error
}

// ErrMissingRecord means the event refers to a vet, pet or owner that no longer exists.
var ErrMissingRecord = errors.New("appointment references a missing record")

// VetMailer emails the veterinarian assigned to a new appointment.
// The appointment is marked sent only after the mailer accepted the message.
type VetMailer struct {
	vets     VetFinder
	pets     PetFinder
	owners   OwnerFinder
	recorder NotificationRecorder
	mailer   mailer.Mailer
	clinic   string
	baseURL  string
	log      *logger.Logger
	now      func() time.Time
}

func NewVetMailer(vets VetFinder, pets PetFinder, owners OwnerFinder, recorder NotificationRecorder, m mailer.Mailer, baseURL string, log *logger.Logger) *VetMailer {
	return &VetMailer{
		vets:     vets,
		pets:     pets,
		owners:   owners,
		recorder: recorder,
		mailer:   m,
		clinic:   "PetCare Veterinary Clinic",
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log,
		now:      time.Now,
	}
}

func (v *VetMailer) Notify(ctx context.Context, event model.AppointmentEvent) error {
	vet, err := v.vets.FindByID(ctx, event.VeterinarianID)
	if err != nil {
		return lookupError("veterinarian", event.VeterinarianID, err)
	}
	pet, err := v.pets.FindByID(ctx, event.PetID)
	if err != nil {
		return lookupError("pet", event.PetID, err)
	}
	owner, err := v.owners.FindByID(ctx, event.PetOwnerID)
	if err != nil {
		return lookupError("owner", event.PetOwnerID, err)
	}

	if err := v.mailer.Send(ctx, v.bookingMessage(vet, pet, owner, event)); err != nil {
		return err
	}

	// A failed write is logged, not returned: retrying would email the vet twice.
	if err := v.recorder.MarkNotified(ctx, event.AppointmentID, v.now()); err != nil {
		v.log.Error("Failed to record notification",
			"appointment_id", event.AppointmentID,
			"error", err,
		)
	}
	return nil
}

var missing = []error{
	autherrors.ErrNotFound, autherrors.ErrInvalidID,
	peterrors.ErrNotFound, peterrors.ErrInvalidID,
	ownererrors.ErrNotFound, ownererrors.ErrInvalidID,
}

func lookupError(kind, id string, err error) error {
	for _, target := range missing {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %s %s", ErrMissingRecord, kind, id)
		}
	}
	return fmt.Errorf("failed to load %s %s: %w", kind, id, err)
}

func (v *VetMailer) bookingMessage(vet *model.User, pet *model.Pet, owner *model.Owner, event model.AppointmentEvent) mailer.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello Dr. %s,\n\n", vet.LastName)
	b.WriteString("A new appointment has been booked with you.\n\n")
	fmt.Fprintf(&b, "Date:   %s\n", event.AppointmentDate)
	fmt.Fprintf(&b, "Time:   %s\n", event.AppointmentTime)
	fmt.Fprintf(&b, "Reason: %s\n\n", event.Reason)

	fmt.Fprintf(&b, "Pet:    %s (%s", pet.Name, pet.Species)
	if pet.Breed != "" {
		fmt.Fprintf(&b, ", %s", pet.Breed)
	}
	b.WriteString(")\n")
	fmt.Fprintf(&b, "Owner:  %s\n", owner.FullName())
	fmt.Fprintf(&b, "Phone:  %s\n", owner.Phone)
	fmt.Fprintf(&b, "Email:  %s\n\n", owner.Email)

	if v.baseURL != "" && event.AppointmentID != "" {
		fmt.Fprintf(&b, "Details: %s/appointments/%s\n\n", v.baseURL, event.AppointmentID)
	}
	b.WriteString(v.clinic + "\n")

	return mailer.Message{
		To:      []string{vet.Email},
		Subject: fmt.Sprintf("New Appointment: %s on %s at %s", pet.Name, event.AppointmentDate, event.AppointmentTime),
		Text:    b.String(),
	}
}
