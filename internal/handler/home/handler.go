package home

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/names-api/backend/internal/model/name"
	"github.com/zhouzirui/names-api/backend/pkg/utils"
)

//go:embed templates/index.html
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

type indexData struct {
	Title  string
	Layout string
	Names  []name.Record
}

// Handler renders the root page.
type Handler struct {
	store name.Store
}

// New 创建首页处理器
func New(store name.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册首页路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		log.Printf("[home] list names failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var buf bytes.Buffer
	data := indexData{Title: "Names API", Layout: name.TimestampLayout, Names: records}
	if err := indexTemplate.Execute(&buf, data); err != nil {
		log.Printf("[home] render failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[home] write failed: %v", err)
	}
}
