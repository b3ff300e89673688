package catalog

import (
	"errors"
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the read-only catalog used by the QR ordering pages.
type Handler struct {
	store  *Store
	logger aqm.Logger
	tlm    *telemetry.HTTP
}

func NewHandler(store *Store, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		store:  store,
		logger: logger,
		tlm:    telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/tables/{token}", h.GetTable)
	r.Get("/categories", h.ListCategories)

	r.Route("/branches", func(r chi.Router) {
		r.Get("/", h.ListBranches)
		r.Get("/{slug}", h.GetBranch)
		r.Get("/{slug}/menu", h.GetBranchMenu)
	})
}

type tableResponse struct {
	Table  *Table  `json:"table"`
	Branch *Branch `json:"branch"`
}

type branchMenuResponse struct {
	Branch   *Branch       `json:"branch"`
	Lang     string        `json:"lang"`
	Sections []MenuSection `json:"sections"`
}

// GetTable handles GET /tables/{token}
func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTable")
	defer finish()
	log := h.log(r)

	table, branch, err := h.store.ResolveTable(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Table not found")
			return
		}
		log.Error("cannot resolve table", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not resolve table")
		return
	}

	aqm.RespondSuccess(w, tableResponse{Table: table, Branch: branch})
}

// ListBranches handles GET /branches
func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListBranches")
	defer finish()
	log := h.log(r)

	branches, err := h.store.ActiveBranches(r.Context())
	if err != nil {
		log.Error("cannot list branches", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list branches")
		return
	}

	aqm.RespondCollection(w, branches, "branch")
}

// GetBranch handles GET /branches/{slug}
func (h *Handler) GetBranch(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetBranch")
	defer finish()

	branch, ok := h.branchBySlug(w, r)
	if !ok {
		return
	}

	links := aqm.RESTfulLinksFor(branch)
	aqm.RespondSuccess(w, branch, links...)
}

// GetBranchMenu handles GET /branches/{slug}/menu. Text fields carry every
// language; lang names the one the client asked for.
func (h *Handler) GetBranchMenu(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetBranchMenu")
	defer finish()
	log := h.log(r)

	branch, ok := h.branchBySlug(w, r)
	if !ok {
		return
	}

	sections, err := h.store.BranchMenu(r.Context(), branch)
	if err != nil {
		log.Error("cannot build branch menu", "error", err, "branch_id", branch.ID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load menu")
		return
	}

	lang := PreferredLanguage(r)
	w.Header().Set("Content-Language", lang)
	aqm.RespondSuccess(w, branchMenuResponse{Branch: branch, Lang: lang, Sections: sections})
}

// ListCategories handles GET /categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListCategories")
	defer finish()
	log := h.log(r)

	categories, err := h.store.ActiveCategories(r.Context())
	if err != nil {
		log.Error("cannot list categories", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list categories")
		return
	}

	aqm.RespondCollection(w, categories, "category")
}

func (h *Handler) branchBySlug(w http.ResponseWriter, r *http.Request) (*Branch, bool) {
	branch, err := h.store.BranchBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, ErrBranchNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Branch not found")
			return nil, false
		}
		h.log(r).Error("cannot load branch", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load branch")
		return nil, false
	}
	return branch, true
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}
