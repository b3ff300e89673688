package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/appetiteclub/tableside/internal/auth"
	"github.com/appetiteclub/tableside/pkg/enums/orderstatus"
	"github.com/appetiteclub/tableside/pkg/enums/paymentstatus"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

type createOrderRequest struct {
	ScanToken     string               `json:"scanToken" validate:"required,max=128"`
	Items         []createOrderLineDTO `json:"items" validate:"required,min=1,max=50,dive"`
	CustomerName  string               `json:"customerName" validate:"max=100"`
	CustomerPhone string               `json:"customerPhone" validate:"max=32"`
}

type createOrderLineDTO struct {
	MenuItemID          string `json:"menuItemId" validate:"required,uuid"`
	Quantity            int    `json:"quantity" validate:"min=1,max=99"`
	SpecialInstructions string `json:"specialInstructions" validate:"max=500"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type HandlerDeps struct {
	Intake   *Intake
	Status   *StatusManager
	Orders   OrderRepo
	Resolver auth.ActorResolver
}

type Handler struct {
	intake   *Intake
	status   *StatusManager
	orders   OrderRepo
	resolver auth.ActorResolver
	validate *validator.Validate
	logger   aqm.Logger
	tlm      *telemetry.HTTP
}

func NewHandler(deps HandlerDeps, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		intake:   deps.Intake,
		status:   deps.Status,
		orders:   deps.Orders,
		resolver: deps.Resolver,
		validate: validator.New(),
		logger:   logger,
		tlm:      telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/{id}", h.GetOrder)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireActor(h.resolver, h.logger))
			r.Get("/", h.ListOrders)
			r.Patch("/{id}/status", h.UpdateOrderStatus)
		})
	})
}

// CreateOrder handles POST /orders. Client-sent prices or totals are ignored.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateOrder")
	defer finish()
	log := h.log(r)

	var req createOrderRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	submit := SubmitRequest{
		ScanToken:     req.ScanToken,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Lines:         make([]SubmitLine, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		id, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			h.respondError(w, log, validationError("menuItemId must be a valid id"))
			return
		}
		submit.Lines = append(submit.Lines, SubmitLine{
			MenuItemID:          id,
			Quantity:            item.Quantity,
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	o, err := h.intake.Submit(r.Context(), submit)
	if err != nil {
		h.respondError(w, log, err)
		return
	}

	links := aqm.RESTfulLinksFor(o)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, o, links...)
}

// GetOrder handles GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()
	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, log, internalError(err))
		return
	}
	if o == nil {
		h.respondError(w, log, newError(ErrOrderNotFound, "", nil))
		return
	}

	links := aqm.RESTfulLinksFor(o)
	aqm.RespondSuccess(w, o, links...)
}

// ListOrders handles GET /orders. Staff only ever see their own branch.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()
	log := h.log(r)

	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		aqm.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		h.respondError(w, log, err)
		return
	}

	if scoped := actor.ScopedBranch(); scoped != uuid.Nil {
		if filter.BranchID != uuid.Nil && filter.BranchID != scoped {
			h.respondError(w, log, newError(ErrForbidden, "not allowed to list orders of this branch", nil))
			return
		}
		filter.BranchID = scoped
	}

	orders, total, err := h.orders.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, log, internalError(err))
		return
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	}, nil)
}

// UpdateOrderStatus handles PATCH /orders/{id}/status
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderStatus")
	defer finish()
	log := h.log(r)

	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		aqm.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req updateStatusRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	o, err := h.status.Change(r.Context(), id, req.Status, actor)
	if err != nil {
		h.respondError(w, log, err)
		return
	}

	links := aqm.RESTfulLinksFor(o)
	aqm.RespondSuccess(w, o, links...)
}

func parseListFilter(r *http.Request) (OrderFilter, error) {
	q := r.URL.Query()
	filter := OrderFilter{Limit: DefaultListLimit}

	if raw := strings.TrimSpace(q.Get("branch_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, validationError("branch_id must be a valid id")
		}
		filter.BranchID = id
	}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		if orderstatus.ByName(raw) == nil {
			return filter, validationError(fmt.Sprintf("unknown status %q", raw))
		}
		filter.Status = raw
	}

	if raw := strings.TrimSpace(q.Get("payment_status")); raw != "" {
		if paymentstatus.ByName(raw) == nil {
			return filter, validationError(fmt.Sprintf("unknown payment status %q", raw))
		}
		filter.PaymentStatus = raw
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return filter, validationError("limit must be a positive integer")
		}
		if n > MaxListLimit {
			n = MaxListLimit
		}
		filter.Limit = n
	}

	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, validationError("offset must be a non-negative integer")
		}
		filter.Offset = n
	}

	return filter, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log aqm.Logger, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("cannot read request body", "error", err)
		h.respondError(w, log, validationError("request body could not be read"))
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("invalid request body", "error", err)
		h.respondError(w, log, validationError("request body is not valid JSON"))
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			h.respondError(w, log, validationError(describeFieldError(verrs[0])))
			return false
		}
		h.respondError(w, log, internalError(err))
		return false
	}
	return true
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// respondError writes {"error": {"code", "message"}}. Infrastructure causes
// are logged and replaced by a generic message.
func (h *Handler) respondError(w http.ResponseWriter, log aqm.Logger, err error) {
	status := HTTPStatus(err)
	code, message := PublicMessage(err)

	if status >= http.StatusInternalServerError {
		log.Error("order request failed", "error", err)
	} else {
		log.Debug("order request rejected", "code", code, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Code: code, Message: message}})
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// Malformed ids cannot name an order.
		h.respondError(w, log, newError(ErrOrderNotFound, "", nil))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}
