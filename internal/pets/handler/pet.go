package handler

import (
	"net/http"

	"petcare/internal/pets/repository"
	"petcare/internal/pets/service"
	apperrors "petcare/pkg/errors"
	httputil "petcare/pkg/http"
	"petcare/pkg/logger"
	"petcare/pkg/middleware"
	"petcare/pkg/model"
	"petcare/pkg/session"
	"petcare/pkg/view"

	"github.com/julienschmidt/httprouter"
)

const petsPath = "/pets"

type PetHandler struct {
	service  service.PetService
	view     *view.Renderer
	sessions *session.Manager
	log      *logger.Logger
}

func NewPetHandler(service service.PetService, renderer *view.Renderer, sessions *session.Manager, log *logger.Logger) *PetHandler {
	return &PetHandler{
		service:  service,
		view:     renderer,
		sessions: sessions,
		log:      log,
	}
}

func petFromValues(values httputil.Values) *model.Pet {
	age, _ := values.Float("age")
	weight, _ := values.Float("weight")
	return &model.Pet{
		Name:    values.String("name"),
		Species: values.String("species"),
		Breed:   values.String("breed"),
		Age:     age,
		Weight:  weight,
		Color:   values.String("color"),
		Gender:  values.String("gender"),
		OwnerID: values.String("owner"),
	}
}

func (h *PetHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	filter := repository.PetFilter{
		Species: query.Get("species"),
		OwnerID: query.Get("owner"),
	}

	pets, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "pets/index", "Pets", view.Data{
		"Pets":    pets,
		"Species": model.Species,
		"Filter":  filter,
	})
}

// renderForm shows the new or edit page with the active owners for the owner select.
func (h *PetHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, page, title string, pet *model.Pet) {
	owners, err := h.service.ActiveOwners(r.Context())
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, status, page, title, view.Data{
		"Pet":     pet,
		"Owners":  owners,
		"Species": model.Species,
		"Genders": model.Genders,
	})
}

func (h *PetHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, "pets/new", "Add New Pet", &model.Pet{
		OwnerID: r.URL.Query().Get("owner"),
	})
}

func (h *PetHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, err := httputil.ReadValues(r)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	pet := petFromValues(values)
	if err := h.service.Create(r.Context(), pet); err != nil {
		if apperrors.HasCode(err, apperrors.CodeInternal) {
			h.view.AppError(w, r, err)
			return
		}
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		h.renderForm(w, r, apperrors.AsAppError(err).StatusCode(), "pets/new", "Add New Pet", pet)
		return
	}

	session.AddFlash(r, session.FlashSuccess, pet.Name+" was added")
	httputil.Redirect(w, r, petsPath)
}

// Show also serves /pets/new.
func (h *PetHandler) Show(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == httputil.NewResourceID {
		h.New(w, r)
		return
	}

	details, err := h.service.GetDetails(r.Context(), id)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "pets/show", "Pet: "+details.Pet.Name, view.Data{
		"Pet":          details.Pet,
		"Owner":        details.Owner,
		"Appointments": details.Appointments,
	})
}

func (h *PetHandler) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	pet, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}
	h.renderForm(w, r, http.StatusOK, "pets/edit", "Edit Pet", pet)
}

func (h *PetHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	values, err := httputil.ReadValues(r)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	pet := petFromValues(values)
	if err := h.service.Update(r.Context(), id, pet); err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr.Code == apperrors.CodeInternal || appErr.Code == apperrors.CodeNotFound {
			h.view.AppError(w, r, err)
			return
		}
		pet.ID = id
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		h.renderForm(w, r, appErr.StatusCode(), "pets/edit", "Edit Pet", pet)
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Pet updated successfully")
	httputil.Redirect(w, r, petsPath+"/"+id)
}

func (h *PetHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.view.AppError(w, r, err)
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Pet removed")
	httputil.Redirect(w, r, petsPath)
}

func (h *PetHandler) AddMedicalRecord(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	values, err := httputil.ReadValues(r)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	rec := &model.MedicalRecord{
		Condition: values.String("condition"),
		Treatment: values.String("treatment"),
		Notes:     values.String("notes"),
	}
	if date, err := model.ParseDate(values.String("date")); err == nil {
		rec.Date = date
	}

	if err := h.service.AddMedicalRecord(r.Context(), id, rec); err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr.Code == apperrors.CodeInternal || appErr.Code == apperrors.CodeNotFound {
			h.view.AppError(w, r, err)
			return
		}
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		httputil.Redirect(w, r, petsPath+"/"+id)
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Medical record added")
	httputil.Redirect(w, r, petsPath+"/"+id)
}

func (h *PetHandler) RegisterRoutes(router *httprouter.Router) {
	auth := h.sessions.RequireAuth

	router.GET(petsPath, middleware.Route(h.List, auth))
	router.POST(petsPath, middleware.Route(h.Create, auth))
	router.GET(petsPath+"/:id", middleware.Route(h.Show, auth))
	router.GET(petsPath+"/:id/edit", middleware.Route(h.Edit, auth))
	router.PUT(petsPath+"/:id", middleware.Route(h.Update, auth))
	router.DELETE(petsPath+"/:id", middleware.Route(h.Delete, auth))
	router.POST(petsPath+"/:id/medical", middleware.Route(h.AddMedicalRecord, auth))
}
