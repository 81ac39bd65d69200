package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	db *sqlx.DB
}

func NewHandler(database *sqlx.DB) *Handler {
	return &Handler{db: database}
}

type HealthResponse struct {
	Status		string		`json:"status"`
	Database	string		`json:"database"`
	AllocMB		uint64		`json:"alloc_mb"`
	SysMB		uint64		`json:"sys_mb"`
	Goroutines	int		`json:"goroutines"`
	Timestamp	time.Time	`json:"timestamp"`
}

// HealthHandler сообщает о деградации в теле ответа, а не статусом HTTP:
// недоступная база — это degraded, но сам процесс жив.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:		"ok",
		Database:	"ok",
		Timestamp:	time.Now(),
	}

	var probe int
	if err := h.db.GetContext(r.Context(), &probe, "SELECT 1"); err != nil {
		logrus.Errorf("Ошибка при проверке базы данных: %v", err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	resp.AllocMB = m.Alloc / 1024 / 1024
	resp.SysMB = m.Sys / 1024 / 1024
	resp.Goroutines = runtime.NumGoroutine()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.Errorf("Ошибка при сериализации ответа health: %v", err)
	}
}

func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("hello world!"))
}
