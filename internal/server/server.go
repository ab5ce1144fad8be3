// Package server exposes the scoring service over HTTP.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hed1ad/factoryguard/internal/scoring"
	"github.com/hed1ad/factoryguard/pkg/features"
)

var (
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factoryguard_predictions_total",
		Help: "Predictions served, by resulting status.",
	}, []string{"status"})

	scoringErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factoryguard_scoring_errors_total",
		Help: "Failed scoring requests, by error kind.",
	}, []string{"kind"})
)

// Server routes scoring requests to a Service.
type Server struct {
	service *scoring.Service
	log     *zap.Logger
}

// New creates a Server around a scoring service.
func New(service *scoring.Service, log *zap.Logger) *Server {
	return &Server{service: service, log: log}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.requestLog())

	r.GET("/", s.health)
	r.POST("/predict", s.predict)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "running",
		"model_loaded": s.service.Loaded(),
	})
}

// Fields are pointers with required binding so that a missing field is a 400
// rather than a silent zero.
type predictRequest struct {
	TemperatureK       *float64 `json:"temperature_k" binding:"required"`
	RotationalSpeedRPM *float64 `json:"rotational_speed_rpm" binding:"required"`
}

func (s *Server) predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	reading := features.SensorReading{
		TemperatureK:       *req.TemperatureK,
		RotationalSpeedRPM: *req.RotationalSpeedRPM,
	}

	pred, err := s.service.Handle(reading)
	if err != nil {
		s.failPredict(c, err)
		return
	}

	predictionsTotal.WithLabelValues(pred.Status).Inc()
	c.JSON(http.StatusOK, gin.H{
		"is_anomaly":    pred.IsAnomaly,
		"anomaly_score": pred.AnomalyScore,
		"status":        pred.Status,
	})
}

// failPredict maps the scoring error taxonomy onto HTTP status classes.
func (s *Server) failPredict(c *gin.Context, err error) {
	var featureErr *scoring.FeatureError
	var predictionErr *scoring.PredictionError

	switch {
	case errors.Is(err, scoring.ErrModelNotLoaded):
		scoringErrorsTotal.WithLabelValues("model_not_loaded").Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model not loaded"})

	case errors.As(err, &featureErr):
		scoringErrorsTotal.WithLabelValues("feature").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": featureErr.Error()})

	case errors.As(err, &predictionErr):
		scoringErrorsTotal.WithLabelValues("prediction").Inc()
		s.log.Error("prediction failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(predictionErr.Err),
			zap.Strings("expected_features", predictionErr.FeatureNames),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             predictionErr.Error(),
			"expected_features": predictionErr.FeatureNames,
		})

	default:
		scoringErrorsTotal.WithLabelValues("internal").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// requestID tags every request so individual scoring calls can be traced in
// the logs.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Info("request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
