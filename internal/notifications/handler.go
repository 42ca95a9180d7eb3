package notifications

import (
	"context"
	"errors"
	"fmt"

	"petcare/pkg/kafka"
	"petcare/pkg/logger"
	"petcare/pkg/model"
)

// NewEventHandler returns the consumer handler for the appointments topic. Missing
// records and unknown schema versions are permanent failures and go straight to
// the DLQ; anything else is retried. Messages without a version header are read as v1.
func NewEventHandler(vets *VetMailer, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		if v := msg.GetSchemaVersion(); v != "" && v != EventSchemaVersion {
			return kafka.NewPermanentError("unsupported event schema", fmt.Errorf("schema version %q", v))
		}

		var event model.AppointmentEvent
		if err := msg.DecodeValue(&event); err != nil {
			return err
		}

		switch event.Type {
		case model.EventAppointmentCreated:
			if err := vets.Notify(ctx, event); err != nil {
				if errors.Is(err, ErrMissingRecord) {
					return kafka.NewPermanentError("cannot notify veterinarian", err)
				}
				return kafka.NewTransientError("failed to notify veterinarian", err)
			}
			log.Info("Veterinarian notified",
				"appointment_id", event.AppointmentID,
				"veterinarian_id", event.VeterinarianID,
			)
		case model.EventAppointmentStatusChanged:
			log.Info("Appointment status changed",
				"appointment_id", event.AppointmentID,
				"from", event.PreviousStatus,
				"to", event.Status,
			)
		default:
			log.Warn("Ignoring unknown appointment event", "type", event.Type, "event_id", msg.GetEventID())
		}
		return nil
	}
}
