package handler

import (
	"net/http"

	"petcare/internal/cart/service"
	apperrors "petcare/pkg/errors"
	httputil "petcare/pkg/http"
	"petcare/pkg/logger"
	"petcare/pkg/middleware"
	"petcare/pkg/model"
	"petcare/pkg/session"
	"petcare/pkg/view"

	"github.com/julienschmidt/httprouter"
)

const cartPath = "/cart"

// CartResponse is the JSON reply to cart mutations.
type CartResponse struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	CartCount      int     `json:"cartCount"`
	CartTotal      float64 `json:"cartTotal"`
	FormattedTotal string  `json:"formattedTotal"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CartHandler struct {
	service     service.CartService
	view        *view.Renderer
	sessions    *session.Manager
	idempotency func(http.Handler) http.Handler
	log         *logger.Logger
}

// NewCartHandler builds the handler. idempotency wraps the JSON mutations; nil disables it.
func NewCartHandler(service service.CartService, renderer *view.Renderer, sessions *session.Manager, idempotency func(http.Handler) http.Handler, log *logger.Logger) *CartHandler {
	if idempotency == nil {
		idempotency = func(next http.Handler) http.Handler { return next }
	}
	return &CartHandler{
		service:     service,
		view:        renderer,
		sessions:    sessions,
		idempotency: idempotency,
		log:         log,
	}
}

func userID(r *http.Request) string {
	if user := session.CurrentUser(r); user != nil {
		return user.ID
	}
	return ""
}

func (h *CartHandler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := httputil.WriteJSON(w, status, data); err != nil {
		h.log.WithRequestID(r.Context()).Error("failed to write response", "path", r.URL.Path, "error", err)
	}
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, message string, c *model.Cart) {
	resp := CartResponse{Success: true, Message: message, FormattedTotal: h.service.FormatTotal(c)}
	if c != nil {
		resp.CartCount = c.TotalItems
		resp.CartTotal = c.TotalPrice
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *CartHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeInternal {
		h.log.WithRequestID(r.Context()).Error("Cart request failed", "path", r.URL.Path, "error", err)
	}
	h.writeJSON(w, r, appErr.StatusCode(), failureResponse{Message: apperrors.UserMessage(err)})
}

func (h *CartHandler) Show(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cart, err := h.service.Get(r.Context(), userID(r))
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "cart/index", "Shopping Cart", view.Data{
		"Cart":           cart.Cart,
		"Lines":          cart.Lines,
		"FormattedTotal": cart.FormattedTotal,
	})
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, err := httputil.ReadValues(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.service.Add(r.Context(), userID(r), values.String("productId"), values.Int("quantity", 1))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, "Product added to cart", c)
}

func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, err := httputil.ReadValues(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.service.UpdateQuantity(r.Context(), userID(r), values.String("productId"), values.Int("quantity", 0))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, "Cart updated", c)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	c, err := h.service.Remove(r.Context(), userID(r), ps.ByName("productId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, "Item removed from cart", c)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	err := h.service.Clear(r.Context(), userID(r))

	if httputil.WantsJSON(r) {
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.respond(w, r, "Cart cleared", nil)
		return
	}

	if err != nil {
		session.AddFlash(r, session.FlashError, "Error clearing cart")
	} else {
		session.AddFlash(r, session.FlashSuccess, "Cart cleared")
	}
	httputil.Redirect(w, r, cartPath)
}

func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	count, err := h.service.Count(r.Context(), userID(r))
	if err != nil {
		h.writeJSON(w, r, http.StatusOK, map[string]any{"success": false, "count": 0})
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "count": count})
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	c, err := h.service.Checkout(r.Context(), userID(r))

	if httputil.WantsJSON(r) {
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.respond(w, r, "Order placed successfully", c)
		return
	}

	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeInternal) {
			h.view.AppError(w, r, err)
			return
		}
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		httputil.Redirect(w, r, cartPath)
		return
	}

	session.AddFlash(r, session.FlashSuccess, "Order placed successfully")
	httputil.Redirect(w, r, "/products")
}

func (h *CartHandler) RegisterRoutes(router *httprouter.Router) {
	auth := h.sessions.RequireAuth

	router.GET(cartPath, middleware.Route(h.Show, auth))
	router.GET(cartPath+"/count", middleware.Route(h.Count, auth))
	router.POST(cartPath+"/add", middleware.Route(h.Add, auth, h.idempotency))
	router.PUT(cartPath+"/update", middleware.Route(h.Update, auth, h.idempotency))
	router.DELETE(cartPath+"/remove/:productId", middleware.Route(h.Remove, auth))
	router.DELETE(cartPath+"/clear", middleware.Route(h.Clear, auth))
	router.POST(cartPath+"/checkout", middleware.Route(h.Checkout, auth, h.idempotency))
}
