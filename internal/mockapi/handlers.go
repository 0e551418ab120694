package mockapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yassnemo/health-pulse-sub000/pkg/api"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Components: map[string]string{
			"database":        "ok",
			"ml_model_server": "ok",
		},
	})
}

func (s *Server) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	user, err := s.data.Authenticate(username, password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect username or password"})
		return
	}
	token, err := IssueToken(s.secret, user.Username, user.Role, s.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not issue token"})
		return
	}
	s.data.AppendAudit(user.ID, user.Username, user.Name, "login", "session", user.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, api.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) logout(c *gin.Context) {
	user := currentUser(c)
	s.data.AppendAudit(user.ID, user.Username, user.Name, "logout", "session", user.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"detail": "Logged out"})
}

func (s *Server) forgotPassword(c *gin.Context) {
	// Never leaks whether the address exists.
	c.JSON(http.StatusOK, gin.H{"detail": "If the address is registered, a reset link has been sent"})
}

func (s *Server) resetPassword(c *gin.Context) {
	var reset api.PasswordReset
	if err := c.ShouldBindJSON(&reset); err != nil || reset.Token == "" || reset.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid reset request"})
		return
	}
	sub, err := parseToken(s.secret, reset.Token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid or expired reset token"})
		return
	}
	s.data.SetPassword(sub, reset.NewPassword)
	c.JSON(http.StatusOK, gin.H{"detail": "Password updated"})
}

func (s *Server) changePassword(c *gin.Context) {
	user := currentUser(c)
	var change api.PasswordChange
	if err := c.ShouldBindJSON(&change); err != nil || change.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid password change request"})
		return
	}
	if !s.data.VerifyPassword(user.Username, change.CurrentPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Incorrect password"})
		return
	}
	s.data.SetPassword(user.Username, change.NewPassword)
	c.JSON(http.StatusOK, gin.H{"detail": "Password updated"})
}

func (s *Server) profile(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) updateProfile(c *gin.Context) {
	user := currentUser(c)
	var up api.ProfileUpdate
	if err := c.ShouldBindJSON(&up); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid profile update"})
		return
	}
	updated, ok := s.data.UpdateProfile(user.Username, up)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) listPatients(c *gin.Context) {
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", 10)
	list := s.data.ListPatients(page, pageSize,
		c.Query("search"), c.Query("department"), c.Query("risk_level"))
	c.JSON(http.StatusOK, list)
}

func (s *Server) getPatient(c *gin.Context) {
	id := c.Param("id")
	detail, ok := s.data.PatientByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Patient not found"})
		return
	}
	user := currentUser(c)
	s.data.AppendAudit(user.ID, user.Username, user.Name, "view_patient", "patient", id, c.ClientIP(), nil)
	c.JSON(http.StatusOK, detail)
}

func (s *Server) highRisk(c *gin.Context) {
	c.JSON(http.StatusOK, s.data.HighRisk(c.Query("department")))
}

func (s *Server) predict(c *gin.Context) {
	rt := api.RiskType(c.Param("risk_type"))
	if !rt.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid risk type"})
		return
	}
	pred, ok := s.data.Predict(rt, c.Param("patient_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Patient not found"})
		return
	}
	c.JSON(http.StatusOK, pred)
}

func (s *Server) explain(c *gin.Context) {
	rt := api.RiskType(c.Param("risk_type"))
	if !rt.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid risk type"})
		return
	}
	exp, ok := s.data.Explain(rt, c.Param("patient_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Patient not found"})
		return
	}
	c.JSON(http.StatusOK, exp)
}

func (s *Server) listAlerts(c *gin.Context) {
	var status api.AlertStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := api.ParseAlertStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid alert status"})
			return
		}
		status = parsed
	}
	list := s.data.ListAlerts(status, c.Query("priority"), c.Query("patient_id"),
		intQuery(c, "page", 1), intQuery(c, "page_size", 20))
	c.JSON(http.StatusOK, list)
}

func (s *Server) updateAlert(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Alert not found"})
		return
	}
	var update api.AlertUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid alert update"})
		return
	}
	if _, err := api.ParseAlertStatus(string(update.Status)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid alert status"})
		return
	}
	alert, err := s.data.UpdateAlert(id, update)
	if err != nil {
		var te *TransitionError
		switch {
		case errors.As(err, &te):
			c.JSON(http.StatusBadRequest, gin.H{"detail": te.Error()})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "Alert not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		}
		return
	}
	user := currentUser(c)
	s.data.AppendAudit(user.ID, user.Username, user.Name, "update_alert", "alert", c.Param("id"), c.ClientIP(),
		map[string]any{"status": string(update.Status)})
	c.JSON(http.StatusOK, alert)
}

func (s *Server) listUsers(c *gin.Context) {
	c.JSON(http.StatusOK, s.data.Users(intQuery(c, "skip", 0), intQuery(c, "limit", 100)))
}

func (s *Server) createUser(c *gin.Context) {
	var uc api.UserCreate
	if err := c.ShouldBindJSON(&uc); err != nil || uc.Username == "" || uc.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid user payload"})
		return
	}
	created, err := s.data.CreateUser(uc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Username already registered"})
		return
	}
	actor := currentUser(c)
	s.data.AppendAudit(actor.ID, actor.Username, actor.Name, "create_user", "user", created.ID, c.ClientIP(),
		map[string]any{"username": created.Username, "role": created.Role})
	c.JSON(http.StatusCreated, created)
}

func (s *Server) auditLogs(c *gin.Context) {
	logs := s.data.AuditLogs(c.Query("user_id"), c.Query("entity_type"),
		intQuery(c, "skip", 0), intQuery(c, "limit", 100))
	c.JSON(http.StatusOK, logs)
}

func (s *Server) getThresholds(c *gin.Context) {
	c.JSON(http.StatusOK, s.data.Thresholds())
}

func (s *Server) updateThresholds(c *gin.Context) {
	var patch api.AlertThresholds
	if err := c.ShouldBindJSON(&patch); err != nil || patch.Thresholds == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid thresholds payload"})
		return
	}
	actor := currentUser(c)
	s.data.AppendAudit(actor.ID, actor.Username, actor.Name, "update_thresholds", "settings", "alert-thresholds", c.ClientIP(), nil)
	c.JSON(http.StatusOK, s.data.MergeThresholds(patch))
}

func (s *Server) dashboardSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.data.Summary(c.Query("department")))
}

func (s *Server) dashboardRiskDistribution(c *gin.Context) {
	rt := api.RiskType(c.Query("risk_type"))
	if !rt.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid risk type"})
		return
	}
	c.JSON(http.StatusOK, s.data.RiskDistribution(rt, c.Query("department")))
}

func (s *Server) dashboardRecentAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, s.data.RecentAlerts(intQuery(c, "limit", 10)))
}

func (s *Server) dashboardTrends(c *gin.Context) {
	metric := c.Query("metric")
	if metric == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Missing metric"})
		return
	}
	c.JSON(http.StatusOK, s.data.Trends(metric, c.Query("period")))
}

func (s *Server) dashboardPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, s.data.Performance(c.Query("department")))
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
