package handler

import (
	"net/http"

	"petcare/internal/catalog"
	"petcare/internal/products/service"
	apperrors "petcare/pkg/errors"
	httputil "petcare/pkg/http"
	"petcare/pkg/logger"
	"petcare/pkg/middleware"
	"petcare/pkg/model"
	"petcare/pkg/session"
	"petcare/pkg/view"

	"github.com/julienschmidt/httprouter"
)

const productsPath = "/products"

var sortOptions = []string{
	catalog.SortPopular,
	catalog.SortPriceLow,
	catalog.SortPriceHigh,
	catalog.SortRating,
	catalog.SortNewest,
}

type ProductHandler struct {
	service  service.ProductService
	view     *view.Renderer
	sessions *session.Manager
	log      *logger.Logger
}

func NewProductHandler(service service.ProductService, renderer *view.Renderer, sessions *session.Manager, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		view:     renderer,
		sessions: sessions,
		log:      log,
	}
}

// productFromValues reads the admin form. Images come as parallel imageUrl/imageAlt
// lists, list fields as comma or newline separated text.
func productFromValues(values httputil.Values) *model.Product {
	price, _ := values.Float("price")
	originalPrice, _ := values.Float("originalPrice")

	var images []model.ProductImage
	alts := values.Values["imageAlt"]
	for i, url := range values.Values["imageUrl"] {
		img := model.ProductImage{URL: url}
		if i < len(alts) {
			img.Alt = alts[i]
		}
		images = append(images, img)
	}

	return &model.Product{
		Name:          values.String("name"),
		Description:   values.String("description"),
		Category:      values.String("category"),
		Brand:         values.String("brand"),
		Price:         price,
		OriginalPrice: originalPrice,
		Stock:         values.Int("stock", 0),
		Images:        images,
		AvailableFor:  values.Strings("availableFor"),
		Size:          values.String("size"),
		Weight:        values.String("weight"),
		AgeGroup:      values.String("ageGroup"),
		Features:      values.Strings("features"),
		Ingredients:   values.Strings("ingredients"),
		NutritionalInfo: model.NutritionalInfo{
			Protein:  values.String("protein"),
			Fat:      values.String("fat"),
			Fiber:    values.String("fiber"),
			Moisture: values.String("moisture"),
		},
		Colors:                  values.Strings("colors"),
		Tags:                    values.Strings("tags"),
		IsFeatured:              values.Bool("isFeatured"),
		IsOnSale:                values.Bool("isOnSale"),
		VeterinarianRecommended: values.Bool("veterinarianRecommended"),
		PopularityScore:         values.Int("popularityScore", 0),
	}
}

func formData(p *model.Product) view.Data {
	return view.Data{
		"Product":    p,
		"Categories": model.ProductCategories,
		"PetTypes":   model.ProductPetTypes,
		"Sizes":      model.ProductSizes,
		"AgeGroups":  model.AgeGroups,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := catalog.FilterFromQuery(r.URL.Query())

	listing, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "products/index", "Pet Store", view.Data{
		"Products":    listing.Products,
		"Featured":    listing.Featured,
		"Categories":  listing.Categories,
		"PetTypes":    model.ProductPetTypes,
		"SortOptions": sortOptions,
		"Filter":      filter,
	})
}

func (h *ProductHandler) New(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, "products/new", "Add New Product", formData(&model.Product{}))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, err := httputil.ReadValues(r)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	p := productFromValues(values)
	if err := h.service.Create(r.Context(), p); err != nil {
		if apperrors.HasCode(err, apperrors.CodeInternal) {
			h.view.AppError(w, r, err)
			return
		}
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		h.view.Render(w, r, apperrors.AsAppError(err).StatusCode(), "products/new", "Add New Product", formData(p))
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Product created successfully")
	httputil.Redirect(w, r, productsPath+"/"+p.ID)
}

// Show also serves the admin-only /products/new.
func (h *ProductHandler) Show(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == httputil.NewResourceID {
		h.sessions.RequireAdmin(http.HandlerFunc(h.New)).ServeHTTP(w, r)
		return
	}

	p, related, err := h.service.GetWithRelated(r.Context(), id)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "products/show", p.Name, view.Data{
		"Product": p,
		"Related": related,
	})
}

func (h *ProductHandler) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "products/edit", "Edit Product", formData(p))
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	values, err := httputil.ReadValues(r)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	p := productFromValues(values)
	if err := h.service.Update(r.Context(), id, p); err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr.Code == apperrors.CodeInternal || appErr.Code == apperrors.CodeNotFound {
			h.view.AppError(w, r, err)
			return
		}
		p.ID = id
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		h.view.Render(w, r, appErr.StatusCode(), "products/edit", "Edit Product", formData(p))
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Product updated successfully")
	httputil.Redirect(w, r, productsPath+"/"+id)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.view.AppError(w, r, err)
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Product deleted successfully")
	httputil.Redirect(w, r, productsPath)
}

func (h *ProductHandler) RegisterRoutes(router *httprouter.Router) {
	auth := h.sessions.RequireAuth
	admin := h.sessions.RequireAdmin

	router.GET(productsPath, middleware.Route(h.List, auth))
	router.POST(productsPath, middleware.Route(h.Create, admin))
	router.GET(productsPath+"/:id", middleware.Route(h.Show, auth))
	router.GET(productsPath+"/:id/edit", middleware.Route(h.Edit, admin))
	router.PUT(productsPath+"/:id", middleware.Route(h.Update, admin))
	router.DELETE(productsPath+"/:id", middleware.Route(h.Delete, admin))
}
