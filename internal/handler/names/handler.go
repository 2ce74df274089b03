package names

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/zhouzirui/names-api/backend/internal/model/name"
	"github.com/zhouzirui/names-api/backend/pkg/utils"
)

// Handler names资源的HTTP处理器
type Handler struct {
	store name.Store
}

// New 创建names处理器
func New(store name.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册names相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/names", func(names chi.Router) {
		names.Get("/", h.handleList)
		names.Post("/", h.handleCreate)
		names.Get("/{lastName}", h.handleGet)
		names.Put("/{lastName}", h.handleUpdate)
		names.Delete("/{lastName}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.respondStoreError(w, "list", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, records)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload name.CreateRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := payload.Validate(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.store.Create(r.Context(), *payload.LastName, *payload.FirstName)
	if err != nil {
		h.respondStoreError(w, "create", err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	lastName, ok := bindLastName(w, r)
	if !ok {
		return
	}

	record, err := h.store.Get(r.Context(), lastName)
	if err != nil {
		h.respondStoreError(w, "get", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, record)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	lastName, ok := bindLastName(w, r)
	if !ok {
		return
	}

	var payload name.UpdateRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := payload.Validate(lastName); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.store.Update(r.Context(), lastName, payload.FirstNameOrEmpty())
	if err != nil {
		h.respondStoreError(w, "update", err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	lastName, ok := bindLastName(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), lastName); err != nil {
		h.respondStoreError(w, "delete", err)
		return
	}
	utils.RespondNoContent(w)
}

// bindLastName decodes the {lastName} path segment, writing a 400 on failure.
func bindLastName(w http.ResponseWriter, r *http.Request) (string, bool) {
	// chi matches on RawPath when the request has one and on the decoded Path
	// otherwise; the binder always unescapes, so hand it the escaped segment.
	segment := chi.URLParam(r, "lastName")
	if r.URL.RawPath == "" {
		segment = url.PathEscape(segment)
	}

	var lastName string
	err := runtime.BindStyledParameterWithLocation("simple", false, "lastName", runtime.ParamLocationPath, segment, &lastName)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid lastName: "+err.Error())
		return "", false
	}
	return lastName, true
}

func (h *Handler) respondStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, name.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, name.ErrLastNameRequired), errors.Is(err, name.ErrFirstNameRequired):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[names] %s failed: %v", op, err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
