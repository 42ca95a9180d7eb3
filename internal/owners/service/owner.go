package service

import (
	"context"
	"errors"

	ownererrors "petcare/internal/owners/errors"
	"petcare/internal/owners/repository"
	"petcare/internal/owners/validator"
	"petcare/pkg/config"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/model"
	"petcare/pkg/sanitizer"
	"petcare/pkg/validation"

	"golang.org/x/sync/errgroup"
)

const (
	MsgDuplicateEmail = "An owner with this email already exists"
	MsgInvalidPhone   = "Please enter a valid phone number"
)

// PetFinder is the slice of the pets repository an owner page needs.
type PetFinder interface {
	FindActiveByOwner(ctx context.Context, ownerID string) ([]*model.Pet, error)
}

type OwnerService interface {
	Create(ctx context.Context, o *model.Owner) error
	GetByID(ctx context.Context, id string) (*model.Owner, error)
	GetWithPets(ctx context.Context, id string) (*model.Owner, []*model.Pet, error)
	List(ctx context.Context, search string) ([]*model.Owner, error)
	Update(ctx context.Context, id string, o *model.Owner) error
	Delete(ctx context.Context, id string) error
}

type ownerService struct {
	repo      repository.OwnerRepository
	pets      PetFinder
	validator *validator.OwnerValidator
	cfg       *config.Config
}

func NewOwnerService(
	repo repository.OwnerRepository,
	pets PetFinder,
	validator *validator.OwnerValidator,
	cfg *config.Config,
) OwnerService {
	return &ownerService{
		repo:      repo,
		pets:      pets,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *ownerService) Create(ctx context.Context, o *model.Owner) error {
	if err := s.prepare(o); err != nil {
		return err
	}
	o.IsActive = true

	if err := s.checkEmailFree(ctx, o.Email, ""); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, o); err != nil {
		if errors.Is(err, ownererrors.ErrDuplicateEmail) {
			return apperrors.Conflict(MsgDuplicateEmail)
		}
		s.cfg.Log.Error("Failed to create owner",
			"email", o.Email,
			"error", err,
		)
		return apperrors.Internal("Failed to create owner", err)
	}

	s.cfg.Log.Info("Owner created successfully",
		"id", o.ID,
		"name", o.FullName(),
	)
	return nil
}

func (s *ownerService) GetByID(ctx context.Context, id string) (*model.Owner, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Owner ID cannot be empty")
	}

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve owner")
	}
	return o, nil
}

func (s *ownerService) GetWithPets(ctx context.Context, id string) (*model.Owner, []*model.Pet, error) {
	if id == "" {
		return nil, nil, apperrors.InvalidInput("Owner ID cannot be empty")
	}

	var owner *model.Owner
	var pets []*model.Pet

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o, err := s.repo.FindByID(gctx, id)
		if err != nil {
			return s.mapRepoError(err, id, "Failed to retrieve owner")
		}
		owner = o
		return nil
	})
	g.Go(func() error {
		p, err := s.pets.FindActiveByOwner(gctx, id)
		if err != nil {
			s.cfg.Log.Error("Failed to list owner pets", "owner_id", id, "error", err)
			return apperrors.Internal("Failed to retrieve pets", err)
		}
		pets = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return owner, pets, nil
}

func (s *ownerService) List(ctx context.Context, search string) ([]*model.Owner, error) {
	search = sanitizer.TrimAndNormalize(search)

	owners, err := s.repo.FindActive(ctx, search)
	if err != nil {
		s.cfg.Log.Error("Failed to list owners", "search", search, "error", err)
		return nil, apperrors.Internal("Failed to retrieve owners", err)
	}
	return owners, nil
}

func (s *ownerService) Update(ctx context.Context, id string, o *model.Owner) error {
	if id == "" {
		return apperrors.InvalidInput("Owner ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "Failed to check owner existence")
	}

	o.ID = existing.ID
	o.IsActive = existing.IsActive
	o.CreatedAt = existing.CreatedAt
	if err := s.prepare(o); err != nil {
		return err
	}

	if o.Email != existing.Email {
		if err := s.checkEmailFree(ctx, o.Email, id); err != nil {
			return err
		}
	}

	if err := s.repo.Update(ctx, id, o); err != nil {
		if errors.Is(err, ownererrors.ErrDuplicateEmail) {
			return apperrors.Conflict(MsgDuplicateEmail)
		}
		return s.mapRepoError(err, id, "Failed to update owner")
	}

	s.cfg.Log.Info("Owner updated successfully", "id", id)
	return nil
}

// Delete hides the owner from lists. Appointments keep referring to it.
func (s *ownerService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Owner ID cannot be empty")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete owner")
	}

	s.cfg.Log.Info("Owner deactivated", "id", id)
	return nil
}

// prepare sanitizes and validates o in place.
func (s *ownerService) prepare(o *model.Owner) error {
	rawPhone := o.Phone
	rawEmergencyPhone := o.EmergencyContact.Phone
	s.sanitize(o)

	if rawPhone != "" && o.Phone == "" {
		return apperrors.Validation(MsgInvalidPhone, map[string]any{"field": "phone"})
	}
	if sanitizer.TrimAndNormalize(rawEmergencyPhone) != "" && o.EmergencyContact.Phone == "" {
		return apperrors.Validation(MsgInvalidPhone, map[string]any{"field": "emergency_contact.phone"})
	}

	if err := s.validator.Validate(o); err != nil {
		s.cfg.Log.Warn("Owner validation failed",
			"email", o.Email,
			"error", err,
		)
		return apperrors.Validation(validation.Message(err), map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

func (s *ownerService) sanitize(o *model.Owner) {
	o.FirstName = sanitizer.NormalizeName(o.FirstName)
	o.LastName = sanitizer.NormalizeName(o.LastName)
	o.Email = sanitizer.NormalizeEmail(o.Email)
	o.Phone = sanitizer.NormalizePhone(o.Phone, s.cfg.DefaultPhoneRegion)
	o.Address.Street = sanitizer.TrimAndNormalize(o.Address.Street)
	o.Address.City = sanitizer.TrimAndNormalize(o.Address.City)
	o.Address.State = sanitizer.TrimAndNormalize(o.Address.State)
	o.Address.ZipCode = sanitizer.TrimAndNormalize(o.Address.ZipCode)
	o.EmergencyContact.Name = sanitizer.NormalizeName(o.EmergencyContact.Name)
	o.EmergencyContact.Phone = sanitizer.NormalizePhone(o.EmergencyContact.Phone, s.cfg.DefaultPhoneRegion)
	o.EmergencyContact.Relationship = sanitizer.TrimAndNormalize(o.EmergencyContact.Relationship)
}

func (s *ownerService) checkEmailFree(ctx context.Context, email string, selfID string) error {
	other, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ownererrors.ErrNotFound) {
			return nil
		}
		return apperrors.Internal("Failed to check owner email", err)
	}
	if other.ID != selfID {
		return apperrors.Conflict(MsgDuplicateEmail)
	}
	return nil
}

func (s *ownerService) mapRepoError(err error, id string, message string) error {
	if errors.Is(err, ownererrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Owner", id)
	}
	if errors.Is(err, ownererrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid owner ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}
