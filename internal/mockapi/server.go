package mockapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configures the mock gateway.
type Options struct {
	// Secret signs and verifies access tokens.
	Secret []byte
	// TokenTTL bounds token lifetime; defaults to 60 minutes, matching
	// the production gateway.
	TokenTTL time.Duration
	Logger   *zap.Logger
}

// Server is the mock HealthPulse gateway.
type Server struct {
	data     *Dataset
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

// New builds a gateway around a fresh seeded dataset.
func New(opts Options) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 60 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{
		data:     NewDataset(),
		secret:   opts.Secret,
		tokenTTL: opts.TokenTTL,
		logger:   opts.Logger,
	}
}

// Dataset exposes the backing data, mainly so tests can inspect it.
func (s *Server) Dataset() *Dataset { return s.data }

// Routes builds the gin engine with the full API surface.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLog())

	v1 := r.Group("/api/v1")
	v1.GET("/health", s.health)
	v1.POST("/auth/token", s.login)
	v1.POST("/auth/forgot-password", s.forgotPassword)
	v1.POST("/auth/reset-password", s.resetPassword)

	authed := v1.Group("")
	authed.Use(s.requireAuth())
	{
		authed.POST("/auth/logout", s.logout)
		authed.POST("/auth/change-password", s.changePassword)
		authed.GET("/users/me", s.profile)
		authed.PATCH("/users/me", s.updateProfile)

		authed.GET("/patients", s.listPatients)
		authed.GET("/patients/:id", s.getPatient)
		authed.GET("/high-risk", s.highRisk)
		authed.GET("/predict/:risk_type/:patient_id", s.predict)
		authed.GET("/explain/:risk_type/:patient_id", s.explain)

		authed.GET("/alerts", s.listAlerts)
		authed.PUT("/alerts/:id", s.updateAlert)

		authed.GET("/settings/alert-thresholds", s.getThresholds)

		authed.GET("/dashboard/summary", s.dashboardSummary)
		authed.GET("/dashboard/risk-distribution", s.dashboardRiskDistribution)
		authed.GET("/dashboard/recent-alerts", s.dashboardRecentAlerts)
		authed.GET("/dashboard/trends", s.dashboardTrends)
		authed.GET("/dashboard/performance", s.dashboardPerformance)

		admin := authed.Group("")
		admin.Use(s.requireAdmin())
		{
			admin.GET("/users", s.listUsers)
			admin.POST("/users", s.createUser)
			admin.GET("/audit-logs", s.auditLogs)
			admin.PATCH("/settings/alert-thresholds", s.updateThresholds)
		}
	}
	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
