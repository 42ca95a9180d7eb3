package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	ownererrors "petcare/internal/owners/errors"
	"petcare/internal/owners/validator"
	"petcare/pkg/config"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/logger"
	"petcare/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOwnerRepository struct {
	createFunc      func(ctx context.Context, o *model.Owner) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Owner, error)
	findByEmailFunc func(ctx context.Context, email string) (*model.Owner, error)
	findActiveFunc  func(ctx context.Context, search string) ([]*model.Owner, error)
	updateFunc      func(ctx context.Context, id string, o *model.Owner) error
	deactivateFunc  func(ctx context.Context, id string) error
}

func (m *mockOwnerRepository) Create(ctx context.Context, o *model.Owner) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, o)
	}
	o.ID = "64b0000000000000000000a1"
	return nil
}

func (m *mockOwnerRepository) FindByID(ctx context.Context, id string) (*model.Owner, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", ownererrors.ErrNotFound, id)
}

func (m *mockOwnerRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Owner, error) {
	return []*model.Owner{}, nil
}

func (m *mockOwnerRepository) FindByEmail(ctx context.Context, email string) (*model.Owner, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, fmt.Errorf("%w: %s", ownererrors.ErrNotFound, email)
}

func (m *mockOwnerRepository) FindActive(ctx context.Context, search string) ([]*model.Owner, error) {
	if m.findActiveFunc != nil {
		return m.findActiveFunc(ctx, search)
	}
	return []*model.Owner{}, nil
}

func (m *mockOwnerRepository) Update(ctx context.Context, id string, o *model.Owner) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, o)
	}
	return nil
}

func (m *mockOwnerRepository) Deactivate(ctx context.Context, id string) error {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, id)
	}
	return nil
}

func (m *mockOwnerRepository) CountActive(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockPetFinder struct {
	pets []*model.Pet
	err  error
}

func (m *mockPetFinder) FindActiveByOwner(_ context.Context, _ string) ([]*model.Pet, error) {
	return m.pets, m.err
}

func newTestService(repo *mockOwnerRepository, pets PetFinder) *ownerService {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	cfg := &config.Config{
		Log:                log,
		DefaultPhoneRegion: "IL",
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
	}

	if pets == nil {
		pets = &mockPetFinder{}
	}
	return &ownerService{
		repo:      repo,
		pets:      pets,
		validator: validator.NewOwnerValidator(log),
		cfg:       cfg,
	}
}

func newOwner() *model.Owner {
	return &model.Owner{
		FirstName: "  Dana ",
		LastName:  "Levi",
		Email:     " Dana.Levi@Example.COM ",
		Phone:     "054-123-4567",
		EmergencyContact: model.EmergencyContact{
			Name:  "Avi Levi",
			Phone: "+972 52 765 4321",
		},
	}
}

func TestCreate_SanitizesAndActivates(t *testing.T) {
	var stored *model.Owner
	svc := newTestService(&mockOwnerRepository{
		createFunc: func(_ context.Context, o *model.Owner) error {
			stored = o
			o.ID = "64b0000000000000000000a2"
			return nil
		},
	}, nil)

	owner := newOwner()
	require.NoError(t, svc.Create(context.Background(), owner))
	require.NotNil(t, stored)

	assert.Equal(t, "Dana", stored.FirstName)
	assert.Equal(t, "dana.levi@example.com", stored.Email)
	assert.Equal(t, "+972541234567", stored.Phone)
	assert.Equal(t, "+972527654321", stored.EmergencyContact.Phone)
	assert.True(t, stored.IsActive)
	assert.Equal(t, "64b0000000000000000000a2", owner.ID)
}

func TestCreate_InvalidPhone(t *testing.T) {
	svc := newTestService(&mockOwnerRepository{}, nil)

	owner := newOwner()
	owner.Phone = "call me"

	err := svc.Create(context.Background(), owner)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Equal(t, MsgInvalidPhone, apperrors.UserMessage(err))

	owner = newOwner()
	owner.Phone = ""
	err = svc.Create(context.Background(), owner)
	require.Error(t, err)
	assert.Equal(t, "phone is required", apperrors.UserMessage(err))
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc := newTestService(&mockOwnerRepository{
		findByEmailFunc: func(_ context.Context, email string) (*model.Owner, error) {
			return &model.Owner{ID: "64b0000000000000000000ff", Email: email}, nil
		},
	}, nil)

	err := svc.Create(context.Background(), newOwner())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Equal(t, MsgDuplicateEmail, apperrors.UserMessage(err))

	svc = newTestService(&mockOwnerRepository{
		createFunc: func(_ context.Context, o *model.Owner) error {
			return fmt.Errorf("%w: %s", ownererrors.ErrDuplicateEmail, o.Email)
		},
	}, nil)
	err = svc.Create(context.Background(), newOwner())
	assert.Equal(t, MsgDuplicateEmail, apperrors.UserMessage(err))
}

func TestUpdate_KeepsOwnEmail(t *testing.T) {
	const id = "64b0000000000000000000a1"
	existing := &model.Owner{ID: id, Email: "dana.levi@example.com", IsActive: true}

	var updated *model.Owner
	svc := newTestService(&mockOwnerRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.Owner, error) {
			o := *existing
			return &o, nil
		},
		findByEmailFunc: func(_ context.Context, _ string) (*model.Owner, error) {
			t.Fatal("email lookup is not needed when the email is unchanged")
			return nil, nil
		},
		updateFunc: func(_ context.Context, _ string, o *model.Owner) error {
			updated = o
			return nil
		},
	}, nil)

	require.NoError(t, svc.Update(context.Background(), id, newOwner()))
	require.NotNil(t, updated)
	assert.Equal(t, id, updated.ID)
	assert.True(t, updated.IsActive)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(&mockOwnerRepository{}, nil)

	err := svc.Update(context.Background(), "64b0000000000000000000a9", newOwner())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestGetWithPets(t *testing.T) {
	const id = "64b0000000000000000000a1"
	svc := newTestService(&mockOwnerRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.Owner, error) {
			return &model.Owner{ID: id, FirstName: "Dana"}, nil
		},
	}, &mockPetFinder{pets: []*model.Pet{{Name: "Rex"}, {Name: "Mitzi"}}})

	owner, pets, err := svc.GetWithPets(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Dana", owner.FirstName)
	assert.Len(t, pets, 2)

	svc = newTestService(&mockOwnerRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.Owner, error) {
			return &model.Owner{ID: id}, nil
		},
	}, &mockPetFinder{err: errors.New("connection reset")})
	_, _, err = svc.GetWithPets(context.Background(), id)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestDelete_InvalidID(t *testing.T) {
	svc := newTestService(&mockOwnerRepository{
		deactivateFunc: func(_ context.Context, id string) error {
			return fmt.Errorf("%w: %s", ownererrors.ErrInvalidID, id)
		},
	}, nil)

	err := svc.Delete(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}
