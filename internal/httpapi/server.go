package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"predictord/internal/engine"
	"predictord/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Predict(ctx context.Context, req types.PredictionRequest) (*types.PredictionResult, error)
	ModelInfo() types.ModelInfo
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/predict", predictHandler(svc))
	r.Get("/model", modelHandler(svc))
	r.Get("/status", statusHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// predictHandler runs one prediction.
//
// @Summary      Predict
// @Description  Score one request. Requests are batched with concurrent callers; the result holds only this request's rows.
// @Tags         predict
// @Accept       json
// @Produce      json
// @Param        request  body      types.PredictionRequest  true  "prediction request"
// @Success      200      {object}  types.PredictionResult
// @Failure      400      {object}  types.PredictionResult
// @Failure      415      {object}  types.ErrorResponse
// @Failure      429      {object}  types.PredictionResult
// @Failure      500      {object}  types.PredictionResult
// @Failure      503      {object}  types.PredictionResult
// @Failure      504      {object}  types.PredictionResult
// @Router       /predict [post]
func predictHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.PredictionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		ctx, cancel := requestContext(r.Context())
		defer cancel()
		res, err := svc.Predict(ctx, req)
		status := statusFor(err)
		if status == http.StatusTooManyRequests {
			IncrementBackpressure(engine.Code(err))
		}
		logID := req.ID
		if res != nil && res.ID != "" {
			logID = res.ID
		}
		logPredict(r, lvl, logID, status, start, err)
		if r.Context().Err() != nil {
			// Client went away; nobody to answer.
			return
		}
		if res == nil {
			res = &types.PredictionResult{ID: req.ID, Status: types.StatusError, Code: engine.Code(err)}
			if err != nil {
				res.Error = err.Error()
			}
		}
		writeJSON(w, status, res)
	}
}

// modelHandler describes the loaded model.
//
// @Summary      Model info
// @Tags         model
// @Produce      json
// @Success      200  {object}  types.ModelResponse
// @Router       /model [get]
func modelHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ModelResponse{Model: svc.ModelInfo()})
	}
}

// statusHandler reports engine state and counters.
//
// @Summary      Engine status
// @Tags         status
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func statusHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	}
}
