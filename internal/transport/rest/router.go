// Package rest exposes the assessment engine over HTTP.
package rest

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assessment-engine/internal/assessment/catalog"
	"assessment-engine/internal/assessment/submission"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/common/metrics"
	"assessment-engine/internal/transport/rest/handler"
)

// Container holds all dependencies for the router
type Container struct {
	Submissions *submission.Service
	Catalog     *catalog.Searcher
	Checks      map[string]handler.Pinger
	Version     string
	CORSOrigins string
	Logger      logger.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	log := c.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = logger.Component(log, "rest")

	searcher := c.Catalog
	if searcher == nil {
		searcher = catalog.NewSearcher(nil, "", 0, log)
	}

	assessmentHandler := handler.NewAssessmentHandler(c.Submissions, log)
	catalogHandler := handler.NewCatalogHandler(searcher, c.Submissions.Engine())
	healthHandler := handler.NewHealthHandler(c.Version, c.Checks)

	r := mux.NewRouter()
	r.Use(recoveryMiddleware(log))
	r.Use(corsMiddleware(c.CORSOrigins))
	r.Use(metricsMiddleware)

	r.HandleFunc("/health", healthHandler.Health).Methods("GET")
	r.HandleFunc("/ready", healthHandler.Ready).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/assessments/submit", assessmentHandler.Submit).Methods("POST", "OPTIONS")
	v1.HandleFunc("/interests/analyze", assessmentHandler.AnalyzeInterests).Methods("POST", "OPTIONS")
	v1.HandleFunc("/career-pathways", catalogHandler.CareerPathways).Methods("GET", "OPTIONS")
	v1.HandleFunc("/colleges", catalogHandler.Colleges).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rules", catalogHandler.Rules).Methods("GET", "OPTIONS")

	return r
}

// corsMiddleware allows origins, falling back to CORS_ALLOWED_ORIGINS and
// then to any origin.
func corsMiddleware(origins string) mux.MiddlewareFunc {
	allowedOrigins := origins
	if allowedOrigins == "" {
		allowedOrigins = os.Getenv("CORS_ALLOWED_ORIGINS")
	}
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func recoveryMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic while serving request", map[string]interface{}{
						"method": r.Method,
						"path":   r.URL.Path,
						"panic":  rec,
					})
					handler.WriteInternalError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
