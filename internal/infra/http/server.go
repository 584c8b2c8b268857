package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Spok95/supply-bot/internal/backend"
	"github.com/Spok95/supply-bot/internal/domain/supplies"
	"github.com/Spok95/supply-bot/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SupplyLister: источник списка для выгрузки; nil отключает /inventory/export.xlsx.
type SupplyLister interface {
	ListSupplies(ctx context.Context, f backend.ListFilter) ([]supplies.Supply, error)
}

type Server struct {
	srv *http.Server
}

func New(addr string, exposeMetrics bool, src SupplyLister, log *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if exposeMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	if src != nil {
		mux.Handle("/inventory/export.xlsx", exportHandler(src, log))
	}

	return &Server{srv: &http.Server{Addr: addr, Handler: mux}}
}

// exportHandler отдаёт текущий список в xlsx; ?q= и ?category= фильтруют как в боте.
func exportHandler(src SupplyLister, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		list, err := src.ListSupplies(r.Context(), backend.ListFilter{})
		if err != nil {
			log.Error("export: list supplies failed", "err", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		category := r.URL.Query().Get("category")
		if category == "" {
			category = supplies.AllCategories
		}
		list = supplies.Apply(list, r.URL.Query().Get("q"), category)

		data, err := report.SuppliesWorkbook(list)
		if err != nil {
			log.Error("export: build workbook failed", "err", err)
			http.Error(w, "failed to build workbook", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(time.Now())))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
