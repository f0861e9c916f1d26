package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Skufu/symptomcheck/internal/credential"
	"github.com/Skufu/symptomcheck/internal/prediction"
	"github.com/Skufu/symptomcheck/internal/store"
)

// Predictor is the prediction use case as seen by the handlers.
type Predictor interface {
	Predict(ctx context.Context, req prediction.Request, suppliedKey string) (*prediction.Result, error)
}

// Credentials describes how keys are supplied in this deployment.
type Credentials interface {
	Mode() credential.Mode
	HasServerKey() bool
}

type Deps struct {
	DB          store.HealthChecker
	Predictor   Predictor
	Credentials Credentials
	Sessions    credential.SessionStore
	Recorder    store.Recorder
	Logger      *slog.Logger
	StaticRoot  string
	RateLimit   rate.Limit
	RateBurst   int
}

func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Recorder == nil {
		d.Recorder = store.NopRecorder{}
	}
	if d.Sessions == nil {
		d.Sessions = credential.NewMemoryStore(time.Hour)
	}
	if d.RateLimit == 0 {
		d.RateLimit = rate.Limit(1)
	}
	if d.RateBurst == 0 {
		d.RateBurst = 5
	}

	h := &handler{
		predictor: d.Predictor,
		creds:     d.Credentials,
		sessions:  d.Sessions,
		recorder:  d.Recorder,
		logger:    d.Logger,
		inflight:  newInFlight(),
	}

	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(d.Logger),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", apiKeyHeader, requestIDHeader},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.Static("/static", d.StaticRoot)
	router.StaticFile("/", filepath.Join(d.StaticRoot, "index.html"))
	router.StaticFile("/styles.css", filepath.Join(d.StaticRoot, "styles.css"))
	router.StaticFile("/app.js", filepath.Join(d.StaticRoot, "app.js"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if d.DB == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	api := router.Group("/api", session())
	api.GET("/symptoms", h.symptoms)
	api.GET("/credential", h.credentialStatus)
	api.POST("/credential/select", h.selectCredential)
	api.POST("/predict", newClientLimiter(d.RateLimit, d.RateBurst).middleware(), h.predict)

	return router
}
