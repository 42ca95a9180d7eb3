package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apptservice "petcare/internal/appointments/service"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/logger"
	"petcare/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubOwners struct {
	owners []*model.Owner
	err    error
}

func (s stubOwners) FindActive(context.Context, string) ([]*model.Owner, error) {
	return s.owners, s.err
}

type stubPets struct {
	byOwner map[string][]*model.Pet
}

func (s stubPets) FindActiveByOwner(_ context.Context, ownerID string) ([]*model.Pet, error) {
	if pets, ok := s.byOwner[ownerID]; ok {
		return pets, nil
	}
	return []*model.Pet{}, nil
}

type stubVets struct{ vets []*model.User }

func (s stubVets) FindVeterinarians(context.Context) ([]*model.User, error) {
	return s.vets, nil
}

type stubProducts struct{ lastTerm string }

func (s *stubProducts) Suggest(_ context.Context, term string) ([]*model.Product, error) {
	s.lastTerm = term
	if term == "" {
		return []*model.Product{}, nil
	}
	return []*model.Product{{
		ID:       "64b000000000000000000101",
		Name:     "Premium Kibble",
		Category: "Food & Treats",
		Price:    450,
		Images:   []model.ProductImage{{URL: "https://img.example.com/kibble.jpg"}},
	}}, nil
}

type mockSlotChecker struct {
	mock.Mock
}

func (m *mockSlotChecker) Availability(ctx context.Context, vetID string, date string) (*apptservice.Availability, error) {
	args := m.Called(ctx, vetID, date)
	if a := args.Get(0); a != nil {
		return a.(*apptservice.Availability), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSlotChecker) CheckSlot(ctx context.Context, vetID string, date string, slot string) (bool, string, error) {
	args := m.Called(ctx, vetID, date, slot)
	return args.Bool(0), args.String(1), args.Error(2)
}

const (
	ownerID = "64b0000000000000000000a1"
	vetID   = "64b0000000000000000000e1"
)

func newTestRouter(slots *mockSlotChecker, owners stubOwners, guards ...func(http.Handler) http.Handler) (*httprouter.Router, *stubProducts) {
	products := &stubProducts{}
	h := NewAPIHandler(
		owners,
		stubPets{byOwner: map[string][]*model.Pet{
			ownerID: {{ID: "64b0000000000000000000b1", Name: "Milo", Species: "Dog", Breed: "Beagle"}},
		}},
		stubVets{vets: []*model.User{{ID: vetID, FirstName: "Priya", LastName: "Ramsamy", Role: model.RoleVeterinarian}}},
		slots,
		products,
		logger.Discard(),
		guards...,
	)
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router, products
}

func serve(router http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestOwnerPets(t *testing.T) {
	router, _ := newTestRouter(&mockSlotChecker{}, stubOwners{})

	rec := serve(router, http.MethodGet, "/api/owners/"+ownerID+"/pets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"_id":"64b0000000000000000000b1","name":"Milo","species":"Dog","breed":"Beagle"}]`, rec.Body.String())

	rec = serve(router, http.MethodGet, "/api/owners/64b0000000000000000000a9/pets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestOwnersAndVeterinarians(t *testing.T) {
	router, _ := newTestRouter(&mockSlotChecker{}, stubOwners{owners: []*model.Owner{
		{ID: ownerID, FirstName: "Anil", LastName: "Doorgah", Email: "anil@example.com", Phone: "+23052512345"},
	}})

	rec := serve(router, http.MethodGet, "/api/owners", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"_id":"`+ownerID+`","firstName":"Anil","lastName":"Doorgah","email":"anil@example.com"}]`, rec.Body.String())

	rec = serve(router, http.MethodGet, "/api/veterinarians", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"_id":"`+vetID+`","firstName":"Priya","lastName":"Ramsamy","role":"veterinarian"}]`, rec.Body.String())
}

func TestOwners_InternalErrorHidesCause(t *testing.T) {
	router, _ := newTestRouter(&mockSlotChecker{}, stubOwners{err: errors.New("connection reset by peer")})

	rec := serve(router, http.MethodGet, "/api/owners", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestAvailability(t *testing.T) {
	slots := &mockSlotChecker{}
	slots.On("Availability", mock.Anything, vetID, "2026-03-02").Return(&apptservice.Availability{
		Date:      "2026-03-02",
		Available: []string{"09:00", "09:30"},
		Booked:    []string{"10:00"},
	}, nil)
	slots.On("Availability", mock.Anything, "bogus", "2026-03-02").Return(nil, apperrors.InvalidInput("Invalid veterinarian ID"))

	router, _ := newTestRouter(slots, stubOwners{})

	rec := serve(router, http.MethodGet, "/api/availability/"+vetID+"/2026-03-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"09:00", "09:30"}, resp.AvailableSlots)
	assert.Equal(t, []string{"10:00"}, resp.BookedSlots)

	rec = serve(router, http.MethodGet, "/api/availability/bogus/2026-03-02", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid veterinarian ID")

	slots.AssertExpectations(t)
}

func TestValidateSlot(t *testing.T) {
	slots := &mockSlotChecker{}
	slots.On("CheckSlot", mock.Anything, vetID, "2026-03-02", "10:00").
		Return(false, apptservice.MsgSlotTaken, nil)

	router, _ := newTestRouter(slots, stubOwners{})

	rec := serve(router, http.MethodPost, "/api/validate-slot", `{"veterinarian":"`+vetID+`","date":"2026-03-02","time":"10:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SlotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Available)
	assert.Equal(t, apptservice.MsgSlotTaken, resp.Message)
	slots.AssertExpectations(t)
}

func TestSearchProducts(t *testing.T) {
	router, products := newTestRouter(&mockSlotChecker{}, stubOwners{})

	rec := serve(router, http.MethodGet, "/api/products/search?q=kib", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kib", products.lastTerm)

	var resp []ProductSuggestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "https://img.example.com/kibble.jpg", resp[0].Image)
}

func TestGuardsRunBeforeHandlers(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	router, products := newTestRouter(&mockSlotChecker{}, stubOwners{}, deny)

	rec := serve(router, http.MethodGet, "/api/products/search?q=kib", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, products.lastTerm)
}
