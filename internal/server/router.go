package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/visionmakers/backend/internal/admins"
	"github.com/visionmakers/backend/internal/auth"
	"github.com/visionmakers/backend/internal/consultation"
	"github.com/visionmakers/backend/internal/notification"
	"go.uber.org/zap"
)

const adminIDContextKey = "visionmakers_admin_id"

var (
	errMissingTokenManager        = errors.New("token manager dependency required")
	errMissingAdminService        = errors.New("admin service dependency required")
	errMissingConsultationService = errors.New("consultation service dependency required")
	errMissingNotificationStore   = errors.New("notification store dependency required")
	errMissingReconciler          = errors.New("notification reconciler dependency required")
	errInvalidAuthorization       = errors.New("authorization header missing or invalid")
)

// AdminTokenManager issues and validates admin session tokens.
type AdminTokenManager interface {
	IssueAdminToken(ctx context.Context, claims auth.AdminClaims) (string, int64, error)
	ValidateToken(token string) (string, error)
}

// AdminAuthenticator verifies admin credentials.
type AdminAuthenticator interface {
	Authenticate(ctx context.Context, email, password string) (admins.Admin, error)
}

// Dependencies wires the HTTP surface. Slack and Poller are optional;
// everything else is required.
type Dependencies struct {
	TokenManager  AdminTokenManager
	Admins        AdminAuthenticator
	Consultations *consultation.Service
	Notifications *notification.Store
	Reconciler    *notification.Reconciler
	Poller        *notification.Poller
	Slack         *notification.SlackNotifier
	Logger        *zap.Logger
}

// NewHTTPHandler builds the gin router for the public intake API and the
// admin panel API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.Admins == nil {
		return nil, errMissingAdminService
	}
	if deps.Consultations == nil {
		return nil, errMissingConsultationService
	}
	if deps.Notifications == nil {
		return nil, errMissingNotificationStore
	}
	if deps.Reconciler == nil {
		return nil, errMissingReconciler
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:        deps.TokenManager,
		admins:        deps.Admins,
		consultations: deps.Consultations,
		notifications: deps.Notifications,
		reconciler:    deps.Reconciler,
		poller:        deps.Poller,
		slack:         deps.Slack,
		logger:        logger,
	}

	router.POST("/api/auth/login", handler.handleLogin)
	router.POST("/api/consultations", handler.handleSubmitConsultation)

	admin := router.Group("/api/admin")
	admin.Use(handler.authorizeRequest)
	admin.GET("/consultations", handler.handleListConsultations)
	admin.GET("/consultations/:id", handler.handleGetConsultation)
	admin.PATCH("/consultations/:id/status", handler.handleUpdateConsultationStatus)
	admin.GET("/notifications", handler.handleListNotifications)
	admin.PUT("/notifications/read-all", handler.handleMarkAllNotificationsRead)
	admin.PUT("/notifications/:id/read", handler.handleMarkNotificationRead)
	admin.GET("/notifications/stream", handler.handleNotificationStream)

	return router, nil
}

type httpHandler struct {
	tokens        AdminTokenManager
	admins        AdminAuthenticator
	consultations *consultation.Service
	notifications *notification.Store
	reconciler    *notification.Reconciler
	poller        *notification.Poller
	slack         *notification.SlackNotifier
	logger        *zap.Logger
}

type loginRequestPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponsePayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	account, err := h.admins.Authenticate(c.Request.Context(), request.Email, request.Password)
	if errors.Is(err, admins.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}
	if err != nil {
		h.logger.Error("admin authentication failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login_failed"})
		return
	}

	token, expiresIn, err := h.tokens.IssueAdminToken(c.Request.Context(), auth.AdminClaims{
		Subject: account.AdminID,
		Email:   account.Email,
	})
	if err != nil {
		h.logger.Error("failed to issue admin token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}

	c.JSON(http.StatusOK, loginResponsePayload{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
	})
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(adminIDContextKey, subject)
	c.Next()
}

func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
