package service

import (
	"context"
	"errors"

	"petcare/internal/catalog"
	serviceerrors "petcare/internal/vetservices/errors"
	"petcare/internal/vetservices/repository"
	"petcare/internal/vetservices/validator"
	"petcare/pkg/config"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/model"
	"petcare/pkg/sanitizer"
	"petcare/pkg/validation"

	"golang.org/x/sync/errgroup"
)

const relatedServicesLimit = 3

type Listing struct {
	Services   []*model.Service
	Categories []string
}

type ServiceService interface {
	List(ctx context.Context, filter catalog.Filter) (*Listing, error)
	GetByID(ctx context.Context, id string) (*model.Service, error)
	GetWithRelated(ctx context.Context, id string) (*model.Service, []*model.Service, error)
	Create(ctx context.Context, s *model.Service) error
	Update(ctx context.Context, id string, s *model.Service) error
	Delete(ctx context.Context, id string) error
}

type serviceService struct {
	repo      repository.ServiceRepository
	validator *validator.ServiceValidator
	cfg       *config.Config
}

func NewServiceService(repo repository.ServiceRepository, validator *validator.ServiceValidator, cfg *config.Config) ServiceService {
	return &serviceService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *serviceService) List(ctx context.Context, filter catalog.Filter) (*Listing, error) {
	listing := &Listing{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		services, err := s.repo.Find(gctx, filter)
		if err != nil {
			return err
		}
		listing.Services = services
		return nil
	})
	g.Go(func() error {
		categories, err := s.repo.Categories(gctx)
		if err != nil {
			return err
		}
		listing.Categories = categories
		return nil
	})

	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to list services",
			"category", filter.Category,
			"search", filter.Search,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve services", err)
	}
	return listing, nil
}

func (s *serviceService) GetByID(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve service")
	}
	return svc, nil
}

// GetWithRelated returns an active service and up to three others from its category.
func (s *serviceService) GetWithRelated(ctx context.Context, id string) (*model.Service, []*model.Service, error) {
	svc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !svc.IsActive {
		return nil, nil, apperrors.NotFoundWithID("Service", id)
	}

	related, err := s.repo.FindRelated(ctx, svc, relatedServicesLimit)
	if err != nil {
		s.cfg.Log.Warn("Failed to load related services", "id", id, "error", err)
		related = []*model.Service{}
	}
	return svc, related, nil
}

func (s *serviceService) Create(ctx context.Context, svc *model.Service) error {
	s.sanitize(svc)
	svc.IsActive = true

	if err := s.validate(svc); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to create service", "name", svc.Name, "error", err)
		return apperrors.Internal("Failed to create service", err)
	}

	s.cfg.Log.Info("Service created successfully",
		"id", svc.ID,
		"name", svc.Name,
		"category", svc.Category,
	)
	return nil
}

func (s *serviceService) Update(ctx context.Context, id string, svc *model.Service) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.sanitize(svc)
	svc.ID = existing.ID
	svc.IsActive = existing.IsActive
	svc.CreatedAt = existing.CreatedAt

	if err := s.validate(svc); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, svc); err != nil {
		return s.mapRepoError(err, id, "Failed to update service")
	}

	s.cfg.Log.Info("Service updated successfully", "id", id)
	return nil
}

func (s *serviceService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Service ID cannot be empty")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete service")
	}

	s.cfg.Log.Info("Service deactivated", "id", id)
	return nil
}

func (s *serviceService) validate(svc *model.Service) error {
	if err := s.validator.Validate(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed",
			"name", svc.Name,
			"error", err,
		)
		return apperrors.Validation(validation.Message(err), map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

func (s *serviceService) sanitize(svc *model.Service) {
	svc.Name = sanitizer.TrimAndNormalize(svc.Name)
	svc.Description = sanitizer.NormalizeText(svc.Description)
	svc.Category = sanitizer.TrimAndNormalize(svc.Category)
	svc.AvailableFor = sanitizer.NormalizeList(svc.AvailableFor)
	svc.PreparationInstructions = sanitizer.NormalizeText(svc.PreparationInstructions)
	svc.VeterinarianRequired = sanitizer.TrimAndNormalize(svc.VeterinarianRequired)
	svc.Icon = sanitizer.TrimAndNormalize(svc.Icon)

	if len(svc.AvailableFor) == 0 {
		svc.AvailableFor = []string{catalog.PetTypeAll}
	}
	if svc.VeterinarianRequired == "" {
		svc.VeterinarianRequired = model.VeterinarianLevels[0]
	}
	if svc.Icon == "" {
		svc.Icon = model.DefaultServiceIcon
	}
}

func (s *serviceService) mapRepoError(err error, id string, message string) error {
	if errors.Is(err, serviceerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Service", id)
	}
	if errors.Is(err, serviceerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid service ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}
