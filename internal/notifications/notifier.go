package notifications

import (
	"context"
	"fmt"

	"petcare/pkg/kafka"
	"petcare/pkg/logger"
	"petcare/pkg/model"
)

const (
	eventSource = "petcare-web"

	// EventSchemaVersion is bumped whenever AppointmentEvent changes incompatibly.
	EventSchemaVersion = "1"
)

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaNotifier publishes appointment events keyed by appointment ID, so every
// event for one appointment lands on the same partition.
type KafkaNotifier struct {
	publisher Publisher
}

func NewKafkaNotifier(publisher Publisher) *KafkaNotifier {
	return &KafkaNotifier{publisher: publisher}
}

func (n *KafkaNotifier) AppointmentCreated(ctx context.Context, a *model.Appointment) error {
	return n.publish(ctx, model.NewAppointmentEvent(model.EventAppointmentCreated, a))
}

func (n *KafkaNotifier) AppointmentStatusChanged(ctx context.Context, a *model.Appointment, previousStatus string) error {
	event := model.NewAppointmentEvent(model.EventAppointmentStatusChanged, a)
	event.PreviousStatus = previousStatus
	return n.publish(ctx, event)
}

func (n *KafkaNotifier) publish(ctx context.Context, event model.AppointmentEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.AppointmentID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		WithSource(eventSource).
		WithSchemaVersion(EventSchemaVersion).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", event.Type, err)
	}

	if err := n.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// MailNotifier emails the vet in-process. Used when no Kafka brokers are configured.
type MailNotifier struct {
	vets *VetMailer
	log  *logger.Logger
}

func NewMailNotifier(vets *VetMailer, log *logger.Logger) *MailNotifier {
	return &MailNotifier{vets: vets, log: log}
}

func (n *MailNotifier) AppointmentCreated(ctx context.Context, a *model.Appointment) error {
	return n.vets.Notify(ctx, model.NewAppointmentEvent(model.EventAppointmentCreated, a))
}

func (n *MailNotifier) AppointmentStatusChanged(ctx context.Context, a *model.Appointment, previousStatus string) error {
	n.log.WithRequestID(ctx).Info("Appointment status changed",
		"id", a.ID,
		"from", previousStatus,
		"to", a.Status,
	)
	return nil
}
