package service

import (
	"context"
	"errors"
	"time"

	peterrors "petcare/internal/pets/errors"
	"petcare/internal/pets/repository"
	"petcare/internal/pets/validator"
	"petcare/pkg/config"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/model"
	"petcare/pkg/sanitizer"
	"petcare/pkg/validation"

	"golang.org/x/sync/errgroup"
)

const (
	MsgInvalidOwner      = "Please select a valid owner"
	MsgMedicalIncomplete = "Condition and treatment are required"
	UnknownOwner         = "Unknown Owner"

	recentAppointmentsLimit = 10
)

// OwnerFinder is the slice of the owners repository pets need.
type OwnerFinder interface {
	FindByID(ctx context.Context, id string) (*model.Owner, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Owner, error)
	FindActive(ctx context.Context, search string) ([]*model.Owner, error)
}

type AppointmentFinder interface {
	FindRecentByPet(ctx context.Context, petID string, limit int64) ([]*model.Appointment, error)
}

type PetDetails struct {
	Pet          *model.Pet
	Owner        *model.Owner
	Appointments []*model.Appointment
}

type PetService interface {
	Create(ctx context.Context, p *model.Pet) error
	GetByID(ctx context.Context, id string) (*model.Pet, error)
	GetDetails(ctx context.Context, id string) (*PetDetails, error)
	List(ctx context.Context, filter repository.PetFilter) ([]*model.PetWithOwner, error)
	ActiveOwners(ctx context.Context) ([]*model.Owner, error)
	Update(ctx context.Context, id string, p *model.Pet) error
	Delete(ctx context.Context, id string) error
	AddMedicalRecord(ctx context.Context, id string, rec *model.MedicalRecord) error
}

type petService struct {
	repo         repository.PetRepository
	owners       OwnerFinder
	appointments AppointmentFinder
	validator    *validator.PetValidator
	cfg          *config.Config
}

func NewPetService(
	repo repository.PetRepository,
	owners OwnerFinder,
	appointments AppointmentFinder,
	validator *validator.PetValidator,
	cfg *config.Config,
) PetService {
	return &petService{
		repo:         repo,
		owners:       owners,
		appointments: appointments,
		validator:    validator,
		cfg:          cfg,
	}
}

func (s *petService) Create(ctx context.Context, p *model.Pet) error {
	s.sanitize(p)
	p.IsActive = true

	if err := s.validate(ctx, p); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.cfg.Log.Error("Failed to create pet",
			"name", p.Name,
			"owner_id", p.OwnerID,
			"error", err,
		)
		return apperrors.Internal("Failed to create pet", err)
	}

	s.cfg.Log.Info("Pet created successfully",
		"id", p.ID,
		"name", p.Name,
		"owner_id", p.OwnerID,
	)
	return nil
}

func (s *petService) GetByID(ctx context.Context, id string) (*model.Pet, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Pet ID cannot be empty")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve pet")
	}
	return p, nil
}

// GetDetails loads a pet with its owner and its latest appointments, newest first.
// A missing owner leaves Owner nil.
func (s *petService) GetDetails(ctx context.Context, id string) (*PetDetails, error) {
	pet, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &PetDetails{Pet: pet}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		owner, err := s.owners.FindByID(gctx, pet.OwnerID)
		if err != nil {
			s.cfg.Log.Warn("Pet owner could not be loaded", "pet_id", id, "owner_id", pet.OwnerID, "error", err)
			return nil
		}
		details.Owner = owner
		return nil
	})
	g.Go(func() error {
		appts, err := s.appointments.FindRecentByPet(gctx, id, recentAppointmentsLimit)
		if err != nil {
			s.cfg.Log.Error("Failed to load pet appointments", "pet_id", id, "error", err)
			return apperrors.Internal("Failed to retrieve appointments", err)
		}
		details.Appointments = appts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

func (s *petService) List(ctx context.Context, filter repository.PetFilter) ([]*model.PetWithOwner, error) {
	filter.Species = sanitizer.TrimAndNormalize(filter.Species)
	filter.OwnerID = sanitizer.TrimAndNormalize(filter.OwnerID)

	pets, err := s.repo.FindActive(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list pets", "species", filter.Species, "owner_id", filter.OwnerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve pets", err)
	}

	ownerIDs := make([]string, 0, len(pets))
	for _, p := range pets {
		ownerIDs = append(ownerIDs, p.OwnerID)
	}
	owners, err := s.owners.FindByIDs(ctx, ownerIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to load pet owners", "error", err)
		return nil, apperrors.Internal("Failed to retrieve pets", err)
	}
	names := make(map[string]string, len(owners))
	for _, o := range owners {
		names[o.ID] = o.FullName()
	}

	rows := make([]*model.PetWithOwner, 0, len(pets))
	for _, p := range pets {
		name, ok := names[p.OwnerID]
		if !ok {
			name = UnknownOwner
		}
		rows = append(rows, &model.PetWithOwner{Pet: p, OwnerName: name})
	}
	return rows, nil
}

func (s *petService) ActiveOwners(ctx context.Context) ([]*model.Owner, error) {
	owners, err := s.owners.FindActive(ctx, "")
	if err != nil {
		s.cfg.Log.Error("Failed to list owners", "error", err)
		return nil, apperrors.Internal("Failed to retrieve owners", err)
	}
	return owners, nil
}

func (s *petService) Update(ctx context.Context, id string, p *model.Pet) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.sanitize(p)
	p.ID = existing.ID
	p.IsActive = existing.IsActive
	p.MedicalHistory = existing.MedicalHistory
	p.CreatedAt = existing.CreatedAt

	if err := s.validate(ctx, p); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, p); err != nil {
		return s.mapRepoError(err, id, "Failed to update pet")
	}

	s.cfg.Log.Info("Pet updated successfully", "id", id)
	return nil
}

func (s *petService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Pet ID cannot be empty")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete pet")
	}

	s.cfg.Log.Info("Pet deactivated", "id", id)
	return nil
}

// AddMedicalRecord appends rec to the pet's history. A zero date means now.
func (s *petService) AddMedicalRecord(ctx context.Context, id string, rec *model.MedicalRecord) error {
	rec.Condition = sanitizer.TrimAndNormalize(rec.Condition)
	rec.Treatment = sanitizer.NormalizeText(rec.Treatment)
	rec.Notes = sanitizer.NormalizeText(rec.Notes)
	if rec.Date.IsZero() {
		rec.Date = time.Now().UTC().Truncate(time.Millisecond)
	}

	if rec.Condition == "" || rec.Treatment == "" {
		return apperrors.Validation(MsgMedicalIncomplete, nil)
	}
	if err := s.validator.ValidateMedicalRecord(rec); err != nil {
		return apperrors.Validation(validation.Message(err), map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.AddMedicalRecord(ctx, id, *rec); err != nil {
		return s.mapRepoError(err, id, "Failed to add medical record")
	}

	s.cfg.Log.Info("Medical record added", "pet_id", id, "condition", rec.Condition)
	return nil
}

func (s *petService) validate(ctx context.Context, p *model.Pet) error {
	if err := s.validator.Validate(p); err != nil {
		s.cfg.Log.Warn("Pet validation failed",
			"name", p.Name,
			"error", err,
		)
		return apperrors.Validation(validation.Message(err), map[string]any{
			"error": err.Error(),
		})
	}

	owner, err := s.owners.FindByID(ctx, p.OwnerID)
	if err != nil || !owner.IsActive {
		return apperrors.Validation(MsgInvalidOwner, map[string]any{"field": "owner_id"})
	}
	return nil
}

func (s *petService) sanitize(p *model.Pet) {
	p.Name = sanitizer.NormalizeName(p.Name)
	p.Species = sanitizer.NormalizeTitle(p.Species)
	p.Breed = sanitizer.TrimAndNormalize(p.Breed)
	p.Color = sanitizer.TrimAndNormalize(p.Color)
	p.Gender = sanitizer.NormalizeTitle(p.Gender)
	p.OwnerID = sanitizer.TrimAndNormalize(p.OwnerID)
}

func (s *petService) mapRepoError(err error, id string, message string) error {
	if errors.Is(err, peterrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Pet", id)
	}
	if errors.Is(err, peterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid pet ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}
