package handler

import (
	"context"
	"net/http"

	apptservice "petcare/internal/appointments/service"
	apperrors "petcare/pkg/errors"
	httputil "petcare/pkg/http"
	"petcare/pkg/logger"
	"petcare/pkg/middleware"
	"petcare/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const apiPath = "/api"

type OwnerLister interface {
	FindActive(ctx context.Context, search string) ([]*model.Owner, error)
}

type PetLister interface {
	FindActiveByOwner(ctx context.Context, ownerID string) ([]*model.Pet, error)
}

type VetLister interface {
	FindVeterinarians(ctx context.Context) ([]*model.User, error)
}

// SlotChecker is the part of the appointment service the booking form polls.
type SlotChecker interface {
	Availability(ctx context.Context, vetID string, date string) (*apptservice.Availability, error)
	CheckSlot(ctx context.Context, vetID string, date string, slot string) (bool, string, error)
}

type ProductSearcher interface {
	Suggest(ctx context.Context, term string) ([]*model.Product, error)
}

type PetSummary struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
}

type OwnerSummary struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type VetSummary struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type ProductSuggestion struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand,omitempty"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
}

type AvailabilityResponse struct {
	AvailableSlots []string `json:"availableSlots"`
	BookedSlots    []string `json:"bookedSlots"`
}

type SlotResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// APIHandler serves the JSON endpoints behind the booking form and the product search box.
type APIHandler struct {
	owners   OwnerLister
	pets     PetLister
	vets     VetLister
	slots    SlotChecker
	products ProductSearcher
	guards   []func(http.Handler) http.Handler
	log      *logger.Logger
}

// NewAPIHandler wires the lookups. guards run before every route, outermost first.
func NewAPIHandler(owners OwnerLister, pets PetLister, vets VetLister, slots SlotChecker, products ProductSearcher, log *logger.Logger, guards ...func(http.Handler) http.Handler) *APIHandler {
	return &APIHandler{
		owners:   owners,
		pets:     pets,
		vets:     vets,
		slots:    slots,
		products: products,
		guards:   guards,
		log:      log,
	}
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, r *http.Request, data any) {
	if err := httputil.WriteJSON(w, http.StatusOK, data); err != nil {
		h.log.WithRequestID(r.Context()).Error("failed to write response", "path", r.URL.Path, "error", err)
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, message string, err error) {
	if !apperrors.IsAppError(err) {
		h.log.WithRequestID(r.Context()).Error(message, "path", r.URL.Path, "error", err)
		err = apperrors.Internal(message, err)
	}
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.WithRequestID(r.Context()).Error("failed to write error response", "path", r.URL.Path, "error", writeErr)
	}
}

func (h *APIHandler) OwnerPets(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	pets, err := h.pets.FindActiveByOwner(r.Context(), ps.ByName("ownerId"))
	if err != nil {
		h.writeError(w, r, "Error fetching pets", err)
		return
	}

	out := make([]PetSummary, 0, len(pets))
	for _, p := range pets {
		out = append(out, PetSummary{ID: p.ID, Name: p.Name, Species: p.Species, Breed: p.Breed})
	}
	h.writeJSON(w, r, out)
}

func (h *APIHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	availability, err := h.slots.Availability(r.Context(), ps.ByName("vetId"), ps.ByName("date"))
	if err != nil {
		h.writeError(w, r, "Error checking availability", err)
		return
	}
	h.writeJSON(w, r, AvailabilityResponse{
		AvailableSlots: availability.Available,
		BookedSlots:    availability.Booked,
	})
}

func (h *APIHandler) Owners(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	owners, err := h.owners.FindActive(r.Context(), "")
	if err != nil {
		h.writeError(w, r, "Error fetching owners", err)
		return
	}

	out := make([]OwnerSummary, 0, len(owners))
	for _, o := range owners {
		out = append(out, OwnerSummary{ID: o.ID, FirstName: o.FirstName, LastName: o.LastName, Email: o.Email})
	}
	h.writeJSON(w, r, out)
}

func (h *APIHandler) Veterinarians(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	vets, err := h.vets.FindVeterinarians(r.Context())
	if err != nil {
		h.writeError(w, r, "Error fetching veterinarians", err)
		return
	}

	out := make([]VetSummary, 0, len(vets))
	for _, v := range vets {
		out = append(out, VetSummary{ID: v.ID, FirstName: v.FirstName, LastName: v.LastName, Role: v.Role})
	}
	h.writeJSON(w, r, out)
}

func (h *APIHandler) ValidateSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, err := httputil.ReadValues(r)
	if err != nil {
		h.writeError(w, r, "Error validating slot", err)
		return
	}

	available, message, err := h.slots.CheckSlot(r.Context(), values.String("veterinarian"), values.String("date"), values.String("time"))
	if err != nil {
		h.writeError(w, r, "Error validating slot", err)
		return
	}
	h.writeJSON(w, r, SlotResponse{Available: available, Message: message})
}

func (h *APIHandler) SearchProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	products, err := h.products.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, "Error searching products", err)
		return
	}

	out := make([]ProductSuggestion, 0, len(products))
	for _, p := range products {
		s := ProductSuggestion{ID: p.ID, Name: p.Name, Brand: p.Brand, Category: p.Category, Price: p.Price}
		if img := p.PrimaryImage(); img != nil {
			s.Image = img.URL
		}
		out = append(out, s)
	}
	h.writeJSON(w, r, out)
}

func (h *APIHandler) route(handle httprouter.Handle) httprouter.Handle {
	return middleware.Route(handle, h.guards...)
}

func (h *APIHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(apiPath+"/owners", h.route(h.Owners))
	router.GET(apiPath+"/owners/:ownerId/pets", h.route(h.OwnerPets))
	router.GET(apiPath+"/veterinarians", h.route(h.Veterinarians))
	router.GET(apiPath+"/availability/:vetId/:date", h.route(h.Availability))
	router.POST(apiPath+"/validate-slot", h.route(h.ValidateSlot))
	router.GET(apiPath+"/products/search", h.route(h.SearchProducts))
}
