package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	peterrors "petcare/internal/pets/errors"
	"petcare/internal/pets/repository"
	"petcare/internal/pets/validator"
	"petcare/pkg/config"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/logger"
	"petcare/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPetID   = "64b0000000000000000000b1"
	testOwnerID = "64b0000000000000000000a1"
)

type mockPetRepository struct {
	createFunc           func(ctx context.Context, p *model.Pet) error
	findByIDFunc         func(ctx context.Context, id string) (*model.Pet, error)
	findActiveFunc       func(ctx context.Context, filter repository.PetFilter) ([]*model.Pet, error)
	updateFunc           func(ctx context.Context, id string, p *model.Pet) error
	deactivateFunc       func(ctx context.Context, id string) error
	addMedicalRecordFunc func(ctx context.Context, id string, rec model.MedicalRecord) error
}

func (m *mockPetRepository) Create(ctx context.Context, p *model.Pet) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	p.ID = testPetID
	return nil
}

func (m *mockPetRepository) FindByID(ctx context.Context, id string) (*model.Pet, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", peterrors.ErrNotFound, id)
}

func (m *mockPetRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Pet, error) {
	return []*model.Pet{}, nil
}

func (m *mockPetRepository) FindActive(ctx context.Context, filter repository.PetFilter) ([]*model.Pet, error) {
	if m.findActiveFunc != nil {
		return m.findActiveFunc(ctx, filter)
	}
	return []*model.Pet{}, nil
}

func (m *mockPetRepository) FindActiveByOwner(ctx context.Context, ownerID string) ([]*model.Pet, error) {
	return m.FindActive(ctx, repository.PetFilter{OwnerID: ownerID})
}

func (m *mockPetRepository) Update(ctx context.Context, id string, p *model.Pet) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, p)
	}
	return nil
}

func (m *mockPetRepository) Deactivate(ctx context.Context, id string) error {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, id)
	}
	return nil
}

func (m *mockPetRepository) AddMedicalRecord(ctx context.Context, id string, rec model.MedicalRecord) error {
	if m.addMedicalRecordFunc != nil {
		return m.addMedicalRecordFunc(ctx, id, rec)
	}
	return nil
}

func (m *mockPetRepository) CountActive(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockOwnerFinder struct {
	owners map[string]*model.Owner
}

func (m *mockOwnerFinder) FindByID(_ context.Context, id string) (*model.Owner, error) {
	if o, ok := m.owners[id]; ok {
		return o, nil
	}
	return nil, errors.New("owner not found")
}

func (m *mockOwnerFinder) FindByIDs(_ context.Context, ids []string) ([]*model.Owner, error) {
	found := []*model.Owner{}
	for _, id := range ids {
		if o, ok := m.owners[id]; ok {
			found = append(found, o)
		}
	}
	return found, nil
}

func (m *mockOwnerFinder) FindActive(_ context.Context, _ string) ([]*model.Owner, error) {
	active := []*model.Owner{}
	for _, o := range m.owners {
		if o.IsActive {
			active = append(active, o)
		}
	}
	return active, nil
}

type mockAppointmentFinder struct {
	appointments []*model.Appointment
	err          error
	limit        int64
}

func (m *mockAppointmentFinder) FindRecentByPet(_ context.Context, _ string, limit int64) ([]*model.Appointment, error) {
	m.limit = limit
	return m.appointments, m.err
}

func newTestService(repo *mockPetRepository, appointments *mockAppointmentFinder) *petService {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	if appointments == nil {
		appointments = &mockAppointmentFinder{}
	}
	return &petService{
		repo: repo,
		owners: &mockOwnerFinder{owners: map[string]*model.Owner{
			testOwnerID: {ID: testOwnerID, FirstName: "Dana", LastName: "Levi", IsActive: true},
			"64b0000000000000000000a2": {ID: "64b0000000000000000000a2", FirstName: "Gone", IsActive: false},
		}},
		appointments: appointments,
		validator:    validator.NewPetValidator(log),
		cfg:          cfg,
	}
}

func newPet() *model.Pet {
	return &model.Pet{
		Name:    "  Rex ",
		Species: "dog",
		Breed:   "Golden  Retriever",
		Age:     3,
		Weight:  28.5,
		Gender:  "male",
		OwnerID: testOwnerID,
	}
}

func TestCreate_SanitizesAndActivates(t *testing.T) {
	var stored *model.Pet
	svc := newTestService(&mockPetRepository{
		createFunc: func(_ context.Context, p *model.Pet) error {
			stored = p
			p.ID = testPetID
			return nil
		},
	}, nil)

	pet := newPet()
	require.NoError(t, svc.Create(context.Background(), pet))
	require.NotNil(t, stored)

	assert.Equal(t, "Rex", stored.Name)
	assert.Equal(t, "Dog", stored.Species)
	assert.Equal(t, "Male", stored.Gender)
	assert.Equal(t, "Golden Retriever", stored.Breed)
	assert.True(t, stored.IsActive)
	assert.Equal(t, testPetID, pet.ID)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *model.Pet)
		message string
	}{
		{"missing name", func(p *model.Pet) { p.Name = "  " }, "name is required"},
		{"unknown species", func(p *model.Pet) { p.Species = "Dragon" }, "species must be one of: Dog Cat Bird Rabbit Other"},
		{"negative age", func(p *model.Pet) { p.Age = -1 }, "age must be at least 0"},
		{"inactive owner", func(p *model.Pet) { p.OwnerID = "64b0000000000000000000a2" }, MsgInvalidOwner},
		{"unknown owner", func(p *model.Pet) { p.OwnerID = "64b0000000000000000000a9" }, MsgInvalidOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockPetRepository{
				createFunc: func(_ context.Context, _ *model.Pet) error {
					t.Fatal("invalid pets must not be stored")
					return nil
				},
			}, nil)

			pet := newPet()
			tt.mutate(pet)

			err := svc.Create(context.Background(), pet)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
			assert.Equal(t, tt.message, apperrors.UserMessage(err))
		})
	}
}

func TestList_ResolvesOwnerNames(t *testing.T) {
	var gotFilter repository.PetFilter
	svc := newTestService(&mockPetRepository{
		findActiveFunc: func(_ context.Context, filter repository.PetFilter) ([]*model.Pet, error) {
			gotFilter = filter
			return []*model.Pet{
				{ID: "1", Name: "Rex", OwnerID: testOwnerID},
				{ID: "2", Name: "Stray", OwnerID: "64b0000000000000000000ff"},
			}, nil
		},
	}, nil)

	rows, err := svc.List(context.Background(), repository.PetFilter{Species: " Dog "})
	require.NoError(t, err)
	assert.Equal(t, "Dog", gotFilter.Species)

	require.Len(t, rows, 2)
	assert.Equal(t, "Dana Levi", rows[0].OwnerName)
	assert.Equal(t, UnknownOwner, rows[1].OwnerName)
}

func TestGetDetails(t *testing.T) {
	appointments := &mockAppointmentFinder{appointments: []*model.Appointment{{ID: "a1"}, {ID: "a2"}}}
	svc := newTestService(&mockPetRepository{
		findByIDFunc: func(_ context.Context, id string) (*model.Pet, error) {
			return &model.Pet{ID: id, Name: "Rex", OwnerID: testOwnerID}, nil
		},
	}, appointments)

	details, err := svc.GetDetails(context.Background(), testPetID)
	require.NoError(t, err)
	assert.Equal(t, "Rex", details.Pet.Name)
	require.NotNil(t, details.Owner)
	assert.Equal(t, "Dana", details.Owner.FirstName)
	assert.Len(t, details.Appointments, 2)
	assert.Equal(t, int64(recentAppointmentsLimit), appointments.limit)
}

func TestGetDetails_MissingOwner(t *testing.T) {
	svc := newTestService(&mockPetRepository{
		findByIDFunc: func(_ context.Context, id string) (*model.Pet, error) {
			return &model.Pet{ID: id, Name: "Rex", OwnerID: "64b0000000000000000000ff"}, nil
		},
	}, nil)

	details, err := svc.GetDetails(context.Background(), testPetID)
	require.NoError(t, err)
	assert.Nil(t, details.Owner)
}

func TestGetByID_Errors(t *testing.T) {
	svc := newTestService(&mockPetRepository{}, nil)

	_, err := svc.GetByID(context.Background(), testPetID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.GetByID(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	svc = newTestService(&mockPetRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.Pet, error) {
			return nil, errors.New("connection refused")
		},
	}, nil)
	_, err = svc.GetByID(context.Background(), testPetID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestUpdate_KeepsHistory(t *testing.T) {
	history := []model.MedicalRecord{{Date: time.Now().UTC(), Condition: "Otitis", Treatment: "Drops"}}

	var updated *model.Pet
	svc := newTestService(&mockPetRepository{
		findByIDFunc: func(_ context.Context, id string) (*model.Pet, error) {
			return &model.Pet{ID: id, Name: "Rex", OwnerID: testOwnerID, IsActive: true, MedicalHistory: history}, nil
		},
		updateFunc: func(_ context.Context, _ string, p *model.Pet) error {
			updated = p
			return nil
		},
	}, nil)

	require.NoError(t, svc.Update(context.Background(), testPetID, newPet()))
	require.NotNil(t, updated)
	assert.Equal(t, testPetID, updated.ID)
	assert.True(t, updated.IsActive)
	assert.Equal(t, history, updated.MedicalHistory)
}

func TestAddMedicalRecord(t *testing.T) {
	var stored model.MedicalRecord
	svc := newTestService(&mockPetRepository{
		addMedicalRecordFunc: func(_ context.Context, _ string, rec model.MedicalRecord) error {
			stored = rec
			return nil
		},
	}, nil)

	err := svc.AddMedicalRecord(context.Background(), testPetID, &model.MedicalRecord{
		Condition: " Ear  infection ",
		Treatment: "Antibiotic drops\r\ntwice a day",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ear infection", stored.Condition)
	assert.Equal(t, "Antibiotic drops\ntwice a day", stored.Treatment)
	assert.False(t, stored.Date.IsZero())

	err = svc.AddMedicalRecord(context.Background(), testPetID, &model.MedicalRecord{Condition: "Limp"})
	require.Error(t, err)
	assert.Equal(t, MsgMedicalIncomplete, apperrors.UserMessage(err))
}

func TestAddMedicalRecord_UnknownPet(t *testing.T) {
	svc := newTestService(&mockPetRepository{
		addMedicalRecordFunc: func(_ context.Context, id string, _ model.MedicalRecord) error {
			return fmt.Errorf("%w: %s", peterrors.ErrNotFound, id)
		},
	}, nil)

	err := svc.AddMedicalRecord(context.Background(), testPetID, &model.MedicalRecord{Condition: "Limp", Treatment: "Rest"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
