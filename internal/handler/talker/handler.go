package talker

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	talkerService "github.com/zhouzirui/talker-manager/backend/internal/service/talker"
	"github.com/zhouzirui/talker-manager/backend/internal/validation"
	"github.com/zhouzirui/talker-manager/backend/pkg/utils"
)

const notFoundMessage = "talker not found"

// Handler serves the /talker resource.
type Handler struct {
	talkers *talkerService.Service
	gate    func(http.Handler) http.Handler
}

// New creates a talker handler. gate guards search and every mutation.
func New(talkers *talkerService.Service, gate func(http.Handler) http.Handler) *Handler {
	return &Handler{
		talkers: talkers,
		gate:    gate,
	}
}

// RegisterRoutes mounts the talker routes on r, which is expected to be
// routed at /talker.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.With(h.gate).Get("/search", h.handleSearch)
	r.Get("/{id}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Post("/", h.handleCreate)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	talkers, err := h.talkers.List(r.Context())
	if err != nil {
		utils.RespondInternalError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, talkers)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	talkers, err := h.talkers.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		utils.RespondInternalError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, talkers)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := talkerID(r)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, notFoundMessage)
		return
	}

	t, err := h.talkers.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, t)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	payload, err := validation.ParseTalker(validation.LimitBody(w, r))
	if err != nil {
		respondInvalid(w, err)
		return
	}

	created, err := h.talkers.Create(r.Context(), payload)
	if err != nil {
		utils.RespondInternalError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	payload, err := validation.ParseTalker(validation.LimitBody(w, r))
	if err != nil {
		respondInvalid(w, err)
		return
	}

	id, ok := talkerID(r)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, notFoundMessage)
		return
	}

	updated, err := h.talkers.Update(r.Context(), id, payload)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := talkerID(r)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, notFoundMessage)
		return
	}

	if err := h.talkers.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	utils.RespondNoContent(w)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, talkerService.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, notFoundMessage)
		return
	}
	utils.RespondInternalError(w, r, err)
}

// talkerID parses the {id} URL parameter. A non-numeric id can never match.
func talkerID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

func respondInvalid(w http.ResponseWriter, err error) {
	if verr, ok := validation.AsError(err); ok {
		utils.RespondError(w, http.StatusBadRequest, verr.Message)
		return
	}
	utils.RespondError(w, http.StatusBadRequest, "invalid request body")
}
