package service

import (
	"context"
	"errors"
	"time"

	appterrors "petcare/internal/appointments/errors"
	"petcare/internal/appointments/repository"
	"petcare/internal/appointments/validator"
	"petcare/pkg/config"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/model"
	"petcare/pkg/sanitizer"
	"petcare/pkg/validation"

	"golang.org/x/sync/errgroup"
)

const (
	MsgRequiredFields = "Please fill in all required fields"
	MsgInvalidVet     = "Please select a valid veterinarian"
	MsgInvalidOwner   = "Please select a valid owner"
	MsgInvalidPet     = "The selected pet does not belong to this owner"
	MsgInvalidDate    = "Please enter a valid date"
	MsgInvalidSlot    = "Please select a valid time slot"
	MsgSlotTaken      = "This time slot is already booked. Please select another time."
	MsgSlotAvailable  = "Time slot is available"

	UnknownPet   = "Unknown Pet"
	UnknownOwner = "Unknown Owner"
	UnknownVet   = "Unknown Vet"
)

type OwnerFinder interface {
	FindByID(ctx context.Context, id string) (*model.Owner, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Owner, error)
	FindActive(ctx context.Context, search string) ([]*model.Owner, error)
}

type PetFinder interface {
	FindByID(ctx context.Context, id string) (*model.Pet, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Pet, error)
	FindActiveByOwner(ctx context.Context, ownerID string) ([]*model.Pet, error)
}

type VetFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	FindVeterinarians(ctx context.Context) ([]*model.User, error)
}

// Notifier is told about bookings and status changes. Failures never undo the change.
type Notifier interface {
	AppointmentCreated(ctx context.Context, a *model.Appointment) error
	AppointmentStatusChanged(ctx context.Context, a *model.Appointment, previousStatus string) error
}

// BookingRequest is the raw booking form.
type BookingRequest struct {
	OwnerID        string
	PetID          string
	VeterinarianID string
	Date           string
	Time           string
	Reason         string
	Notes          string
	Duration       int
	CreatedBy      string
}

type Availability struct {
	Date      string
	Available []string
	Booked    []string
}

type FormOptions struct {
	Owners        []*model.Owner
	Pets          []*model.Pet
	Veterinarians []*model.User
	Slots         []string
	Reasons       []string
}

type AppointmentService interface {
	Book(ctx context.Context, req BookingRequest) (*model.Appointment, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	GetView(ctx context.Context, id string) (*model.AppointmentView, error)
	List(ctx context.Context, filter repository.AppointmentFilter) ([]*model.AppointmentView, error)
	Recent(ctx context.Context, limit int64) ([]*model.AppointmentView, error)
	Update(ctx context.Context, id string, upd model.AppointmentUpdate) (*model.Appointment, error)
	Cancel(ctx context.Context, id string) error
	Availability(ctx context.Context, vetID string, date string) (*Availability, error)
	CheckSlot(ctx context.Context, vetID string, date string, slot string) (bool, string, error)
	FormOptions(ctx context.Context, ownerID string) (*FormOptions, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	owners    OwnerFinder
	pets      PetFinder
	vets      VetFinder
	notifier  Notifier
	validator *validator.AppointmentValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	owners OwnerFinder,
	pets PetFinder,
	vets VetFinder,
	notifier Notifier,
	validator *validator.AppointmentValidator,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		owners:    owners,
		pets:      pets,
		vets:      vets,
		notifier:  notifier,
		validator: validator,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *appointmentService) Book(ctx context.Context, req BookingRequest) (*model.Appointment, error) {
	req.OwnerID = sanitizer.TrimAndNormalize(req.OwnerID)
	req.PetID = sanitizer.TrimAndNormalize(req.PetID)
	req.VeterinarianID = sanitizer.TrimAndNormalize(req.VeterinarianID)
	req.Date = sanitizer.TrimAndNormalize(req.Date)
	req.Time = sanitizer.TrimAndNormalize(req.Time)
	req.Reason = sanitizer.TrimAndNormalize(req.Reason)
	req.Notes = sanitizer.NormalizeText(req.Notes)

	if req.OwnerID == "" || req.PetID == "" || req.VeterinarianID == "" ||
		req.Date == "" || req.Time == "" || req.Reason == "" {
		return nil, apperrors.Validation(MsgRequiredFields, nil)
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.Validation(MsgInvalidDate, map[string]any{"field": "appointment_date"})
	}
	if !model.IsSlot(req.Time) {
		return nil, apperrors.Validation(MsgInvalidSlot, map[string]any{"field": "appointment_time"})
	}

	if err := s.checkParticipants(ctx, req); err != nil {
		return nil, err
	}

	duration := req.Duration
	if duration == 0 {
		duration = model.DefaultAppointmentDuration
	}
	a := &model.Appointment{
		PetOwnerID:      req.OwnerID,
		PetID:           req.PetID,
		VeterinarianID:  req.VeterinarianID,
		AppointmentDate: date,
		AppointmentTime: req.Time,
		Reason:          req.Reason,
		Notes:           req.Notes,
		Status:          model.StatusScheduled,
		Duration:        duration,
		CreatedBy:       req.CreatedBy,
	}

	if err := s.validator.Validate(a); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return nil, apperrors.Validation(validation.Message(err), map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.ensureSlotFree(ctx, a, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, appterrors.ErrSlotTaken) {
			s.cfg.Log.Warn("Slot taken at insert",
				"veterinarian_id", a.VeterinarianID,
				"date", a.DateString(),
				"time", a.AppointmentTime,
			)
			return nil, apperrors.Conflict(MsgSlotTaken)
		}
		s.cfg.Log.Error("Failed to create appointment", "error", err)
		return nil, apperrors.Internal("Failed to create appointment", err)
	}

	s.cfg.Log.Info("Appointment booked successfully",
		"id", a.ID,
		"veterinarian_id", a.VeterinarianID,
		"date", a.DateString(),
		"time", a.AppointmentTime,
	)

	s.notifyCreated(ctx, a)
	return a, nil
}

// checkParticipants verifies the vet can be booked and the pet belongs to the owner.
func (s *appointmentService) checkParticipants(ctx context.Context, req BookingRequest) error {
	if !s.validator.IsObjectID(req.VeterinarianID) {
		return apperrors.Validation(MsgInvalidVet, map[string]any{"field": "veterinarian_id"})
	}
	vet, err := s.vets.FindByID(ctx, req.VeterinarianID)
	if err != nil || !vet.IsActive || !vet.CanTreat() {
		return apperrors.Validation(MsgInvalidVet, map[string]any{"field": "veterinarian_id"})
	}

	owner, err := s.owners.FindByID(ctx, req.OwnerID)
	if err != nil || !owner.IsActive {
		return apperrors.Validation(MsgInvalidOwner, map[string]any{"field": "pet_owner_id"})
	}

	pet, err := s.pets.FindByID(ctx, req.PetID)
	if err != nil || !pet.IsActive || pet.OwnerID != owner.ID {
		return apperrors.Validation(MsgInvalidPet, map[string]any{"field": "pet_id"})
	}
	return nil
}

func (s *appointmentService) ensureSlotFree(ctx context.Context, a *model.Appointment, excludeID string) error {
	taken, err := s.repo.SlotTaken(ctx, a.VeterinarianID, a.AppointmentDate, a.AppointmentTime, excludeID)
	if err != nil {
		s.cfg.Log.Error("Failed to check slot", "error", err)
		return apperrors.Internal("Failed to check availability", err)
	}
	if taken {
		return apperrors.Conflict(MsgSlotTaken)
	}
	return nil
}

// notifyCreated hands the booking to the notifier. The notification flag is
// set by whoever delivers the email, never here.
func (s *appointmentService) notifyCreated(ctx context.Context, a *model.Appointment) {
	if err := s.notifier.AppointmentCreated(ctx, a); err != nil {
		s.cfg.Log.Warn("Appointment notification failed", "id", a.ID, "error", err)
	}
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve appointment")
	}
	return a, nil
}

func (s *appointmentService) GetView(ctx context.Context, id string) (*model.AppointmentView, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	views, err := s.resolve(ctx, []*model.Appointment{a})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *appointmentService) List(ctx context.Context, filter repository.AppointmentFilter) ([]*model.AppointmentView, error) {
	filter.Today = s.now()

	appointments, err := s.repo.Find(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list appointments", "type", filter.Type, "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointments", err)
	}
	return s.resolve(ctx, appointments)
}

func (s *appointmentService) Recent(ctx context.Context, limit int64) ([]*model.AppointmentView, error) {
	appointments, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		s.cfg.Log.Error("Failed to load recent appointments", "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointments", err)
	}
	return s.resolve(ctx, appointments)
}

// resolve attaches pet, owner and vet names, falling back to the Unknown* labels
// for references that no longer resolve.
func (s *appointmentService) resolve(ctx context.Context, appointments []*model.Appointment) ([]*model.AppointmentView, error) {
	petIDs := make([]string, 0, len(appointments))
	ownerIDs := make([]string, 0, len(appointments))
	vetIDs := make([]string, 0, len(appointments))
	for _, a := range appointments {
		petIDs = append(petIDs, a.PetID)
		ownerIDs = append(ownerIDs, a.PetOwnerID)
		vetIDs = append(vetIDs, a.VeterinarianID)
	}

	var (
		pets   []*model.Pet
		owners []*model.Owner
		vets   []*model.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pets, err = s.pets.FindByIDs(gctx, petIDs)
		return err
	})
	g.Go(func() error {
		var err error
		owners, err = s.owners.FindByIDs(gctx, ownerIDs)
		return err
	})
	g.Go(func() error {
		var err error
		vets, err = s.vets.FindByIDs(gctx, vetIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to resolve appointment references", "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointments", err)
	}

	petByID := make(map[string]*model.Pet, len(pets))
	for _, p := range pets {
		petByID[p.ID] = p
	}
	ownerNames := make(map[string]string, len(owners))
	for _, o := range owners {
		ownerNames[o.ID] = o.FullName()
	}
	vetNames := make(map[string]string, len(vets))
	for _, v := range vets {
		vetNames[v.ID] = v.FullName()
	}

	views := make([]*model.AppointmentView, 0, len(appointments))
	for _, a := range appointments {
		view := &model.AppointmentView{
			Appointment:      a,
			PetName:          UnknownPet,
			OwnerName:        UnknownOwner,
			VeterinarianName: UnknownVet,
		}
		if p, ok := petByID[a.PetID]; ok {
			view.PetName = p.Name
			view.PetSpecies = p.Species
		}
		if name, ok := ownerNames[a.PetOwnerID]; ok {
			view.OwnerName = name
		}
		if name, ok := vetNames[a.VeterinarianID]; ok {
			view.VeterinarianName = name
		}
		views = append(views, view)
	}
	return views, nil
}

// Update changes status, reason and notes. An active result re-checks the slot,
// ignoring the appointment itself.
func (s *appointmentService) Update(ctx context.Context, id string, upd model.AppointmentUpdate) (*model.Appointment, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	upd.Status = sanitizer.TrimAndNormalize(upd.Status)
	upd.Reason = sanitizer.TrimAndNormalize(upd.Reason)
	if err := s.validator.ValidateUpdate(&upd); err != nil {
		return nil, apperrors.Validation(validation.Message(err), map[string]any{
			"error": err.Error(),
		})
	}

	previousStatus := existing.Status
	updated := *existing
	updated.Status = upd.Status
	if upd.Reason != "" {
		updated.Reason = upd.Reason
	}
	if upd.Notes != nil {
		updated.Notes = sanitizer.NormalizeText(*upd.Notes)
	}

	if updated.IsActive() {
		if err := s.ensureSlotFree(ctx, &updated, id); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, id, &updated); err != nil {
		return nil, s.mapRepoError(err, id, "Failed to update appointment")
	}

	s.cfg.Log.Info("Appointment updated successfully",
		"id", id,
		"status", updated.Status,
		"previous_status", previousStatus,
	)

	if updated.Status != previousStatus {
		if err := s.notifier.AppointmentStatusChanged(ctx, &updated, previousStatus); err != nil {
			s.cfg.Log.Warn("Status change notification failed", "id", id, "error", err)
		}
	}
	return &updated, nil
}

// Cancel frees the slot by moving the appointment to cancelled.
func (s *appointmentService) Cancel(ctx context.Context, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == model.StatusCancelled {
		return nil
	}

	_, err = s.Update(ctx, id, model.AppointmentUpdate{Status: model.StatusCancelled})
	return err
}

func (s *appointmentService) parseSlotQuery(vetID, date string) (time.Time, error) {
	if !s.validator.IsObjectID(vetID) {
		return time.Time{}, apperrors.InvalidInput("Invalid veterinarian ID")
	}
	day, err := model.ParseDate(date)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("Invalid date format. Use YYYY-MM-DD")
	}
	return day, nil
}

func (s *appointmentService) Availability(ctx context.Context, vetID string, date string) (*Availability, error) {
	day, err := s.parseSlotQuery(vetID, date)
	if err != nil {
		return nil, err
	}

	booked, err := s.repo.BookedTimes(ctx, vetID, day)
	if err != nil {
		s.cfg.Log.Error("Failed to load booked times", "veterinarian_id", vetID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	return &Availability{
		Date:      day.Format(model.DateLayout),
		Available: model.AvailableSlots(booked),
		Booked:    booked,
	}, nil
}

// CheckSlot answers whether a booking for vet, date and slot would pass the slot check.
func (s *appointmentService) CheckSlot(ctx context.Context, vetID string, date string, slot string) (bool, string, error) {
	if vetID == "" || date == "" || slot == "" {
		return false, MsgRequiredFields, nil
	}

	day, err := s.parseSlotQuery(vetID, date)
	if err != nil {
		return false, "", err
	}
	if !model.IsSlot(slot) {
		return false, MsgInvalidSlot, nil
	}

	taken, err := s.repo.SlotTaken(ctx, vetID, day, slot, "")
	if err != nil {
		s.cfg.Log.Error("Failed to check slot", "error", err)
		return false, "", apperrors.Internal("Failed to check availability", err)
	}
	if taken {
		return false, MsgSlotTaken, nil
	}
	return true, MsgSlotAvailable, nil
}

// FormOptions loads the booking form dropdowns. Pets are only listed for a chosen owner.
func (s *appointmentService) FormOptions(ctx context.Context, ownerID string) (*FormOptions, error) {
	opts := &FormOptions{
		Pets:    []*model.Pet{},
		Slots:   model.Slots,
		Reasons: model.AppointmentReasons,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		owners, err := s.owners.FindActive(gctx, "")
		opts.Owners = owners
		return err
	})
	g.Go(func() error {
		vets, err := s.vets.FindVeterinarians(gctx)
		opts.Veterinarians = vets
		return err
	})
	if ownerID != "" {
		g.Go(func() error {
			pets, err := s.pets.FindActiveByOwner(gctx, ownerID)
			opts.Pets = pets
			return err
		})
	}

	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to load appointment form options", "error", err)
		return nil, apperrors.Internal("Failed to load form options", err)
	}
	return opts, nil
}

func (s *appointmentService) mapRepoError(err error, id string, message string) error {
	if errors.Is(err, appterrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Appointment", id)
	}
	if errors.Is(err, appterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid appointment ID format")
	}
	if errors.Is(err, appterrors.ErrSlotTaken) {
		return apperrors.Conflict(MsgSlotTaken)
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}
