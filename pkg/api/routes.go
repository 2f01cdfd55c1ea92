package api

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Apply common middleware
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.rateLimitMiddleware)
	s.router.Use(s.recoveryMiddleware)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Metrics endpoint for Prometheus
	s.router.Handle("/metrics", promhttp.Handler())

	// Quote stream
	s.router.HandleFunc("/ws", s.hub.HandleWebSocket)

	// API version group
	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	// Curve endpoints
	curves := v1.PathPrefix("/curves").Subrouter()
	curves.HandleFunc("", s.handleListCurves).Methods("GET")
	curves.HandleFunc("", s.handleBuildCurve).Methods("POST")
	curves.HandleFunc("/{id}", s.handleGetCurve).Methods("GET")
	curves.HandleFunc("/{id}", s.handleDeleteCurve).Methods("DELETE")
	curves.HandleFunc("/{id}/grid", s.handleCurveGrid).Methods("GET")

	// Vol structure endpoints
	vols := v1.PathPrefix("/vols").Subrouter()
	vols.HandleFunc("", s.handleSaveVol).Methods("POST")
	vols.HandleFunc("/{id}", s.handleDeleteVol).Methods("DELETE")

	// Pricing endpoints
	price := v1.PathPrefix("/price").Subrouter()
	price.HandleFunc("/swaption", s.handlePriceSwaption).Methods("POST")
	price.HandleFunc("/cms", s.handlePriceCMS).Methods("POST")
	price.HandleFunc("/cms-spread", s.handlePriceCMSSpread).Methods("POST")

	// FX endpoints
	fxr := v1.PathPrefix("/fx").Subrouter()
	fxr.HandleFunc("/forwards", s.handleFXForwards).Methods("POST")
	fxr.HandleFunc("/basis", s.handleFXBasis).Methods("POST")

	// Inflation endpoints
	v1.HandleFunc("/inflation/zcis", s.handlePriceZCIS).Methods("POST")

	// Quote sets maintained by the feed
	v1.HandleFunc("/quotes/{id}", s.handleGetQuoteSet).Methods("GET")

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, code int, message string) {
	RespondJSON(w, code, map[string]string{"error": message})
}

// respondAppError maps the error taxonomy onto HTTP status codes.
func respondAppError(w http.ResponseWriter, err error) {
	switch errors.TypeOf(err) {
	case errors.ErrorTypeInvalidArgument, errors.ErrorTypeDomain:
		RespondError(w, http.StatusBadRequest, err.Error())
	case errors.ErrorTypeNotFound:
		RespondError(w, http.StatusNotFound, err.Error())
	case errors.ErrorTypeAlreadyExists:
		RespondError(w, http.StatusConflict, err.Error())
	default:
		RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
