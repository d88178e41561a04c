package router

import (
	"math"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"swachhsetu/internal/auth"
	"swachhsetu/internal/config"
	apperrors "swachhsetu/internal/errors"
	"swachhsetu/internal/handler"
	"swachhsetu/internal/model"
	"swachhsetu/internal/service"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Auth          *handler.AuthHandler
	Reports       *handler.ReportHandler
	Notifications *handler.NotificationHandler
	Garbage       *handler.GarbageHandler
	Geocoding     *handler.GeocodingHandler
	AI            *handler.AIHandler
	Users         *handler.UserHandler
	Dashboard     *handler.DashboardHandler
	Realtime      *handler.RealtimeHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, log zerolog.Logger, authService service.AuthService, h Handlers) {
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(requestContextLogger(log))
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins(cfg.CORSOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", h.Realtime.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	requireAuth := jwtMiddleware(authService, headerTokenLookup, false)
	optionalAuth := jwtMiddleware(authService, headerTokenLookup, true)
	socketAuth := jwtMiddleware(authService, socketTokenLookup, false)
	staffOnly := RequireRoles(model.RoleModerator, model.RoleAdmin)
	adminOnly := RequireRoles(model.RoleAdmin)
	proxyLimit := proxyRateLimiter(cfg.ProxyRateLimit)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)
	api.GET("/leaderboard", h.Users.Leaderboard)
	api.GET("/geocoding/search", h.Geocoding.Search, proxyLimit)
	api.GET("/geocoding/reverse", h.Geocoding.Reverse, proxyLimit)
	api.GET("/ai/chatbot/greeting", h.AI.ChatGreeting, proxyLimit)
	api.GET("/garbage/schedule", h.Garbage.ListSchedules)
	api.GET("/garbage/schedule/:id", h.Garbage.GetSchedule)
	api.GET("/garbage/today", h.Garbage.Today, optionalAuth)

	// Only the WebSocket handshake reads the token from the query string.
	api.GET("/ws", h.Realtime.Connect, socketAuth)

	// Secured routes (require a valid access token)
	secured := api.Group("", requireAuth)

	secured.GET("/users/me", h.Users.Me)
	secured.PATCH("/users/me", h.Users.UpdateMe)
	secured.GET("/dashboard/user", h.Dashboard.User)

	secured.GET("/reports", h.Reports.ListReports)
	secured.POST("/reports", h.Reports.CreateReport)
	secured.GET("/reports/nearby", h.Reports.Nearby)
	secured.GET("/reports/hotspots", h.Reports.Hotspots)
	secured.GET("/reports/geojson", h.Reports.GeoJSON)
	secured.GET("/reports/export", h.Reports.Export, staffOnly)
	secured.POST("/reports/bulk", h.Reports.BulkUpdate, staffOnly)
	secured.GET("/reports/:id", h.Reports.GetReport)
	secured.PATCH("/reports/:id", h.Reports.UpdateReport, staffOnly)
	secured.DELETE("/reports/:id", h.Reports.DeleteReport, adminOnly)

	secured.GET("/notifications", h.Notifications.List)
	secured.GET("/notifications/unread-count", h.Notifications.UnreadCount)
	secured.PATCH("/notifications/read-all", h.Notifications.MarkAllRead)
	secured.PATCH("/notifications/:id/read", h.Notifications.MarkRead)

	secured.POST("/garbage/schedule/:id/subscribe", h.Garbage.Subscribe)
	secured.DELETE("/garbage/schedule/:id/subscribe", h.Garbage.Unsubscribe)
	secured.POST("/garbage/schedule", h.Garbage.CreateSchedule, adminOnly)
	secured.PUT("/garbage/schedule/:id", h.Garbage.UpdateSchedule, adminOnly)

	secured.POST("/ai/forensic/analyze", h.AI.Forensic, proxyLimit)
	secured.POST("/ai/linguistic/analyze", h.AI.Linguistic, proxyLimit)
	secured.POST("/ai/chatbot/chat", h.AI.Chat, proxyLimit)

	admin := secured.Group("/admin")
	admin.GET("/statistics", h.Dashboard.Statistics, staffOnly)
	admin.GET("/users", h.Users.ListUsers, adminOnly)
	admin.PATCH("/users/:id/role", h.Users.UpdateRole, adminOnly)
}

const (
	headerTokenLookup = "header:" + echo.HeaderAuthorization + ":Bearer "
	socketTokenLookup = headerTokenLookup + ",query:token"
)

// jwtMiddleware verifies access tokens found by lookup through the auth
// service so revoked tokens are rejected. With optional set, requests without
// a valid token pass through anonymously.
func jwtMiddleware(authService service.AuthService, lookup string, optional bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ClaimsContextKey,
		TokenLookup: lookup,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Authenticate(c.Request().Context(), token)
		},
		ContinueOnIgnoredError: optional,
		ErrorHandler: func(c echo.Context, err error) error {
			if optional {
				return nil
			}
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: apperrors.ErrUnauthorized.Error(),
				Code:  "UNAUTHORIZED",
			})
		},
	})
}

// RequireRoles rejects authenticated callers whose role is not listed.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(handler.ClaimsContextKey).(*auth.Claims)
			if !ok || claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: apperrors.ErrUnauthorized.Error(),
					Code:  "UNAUTHORIZED",
				})
			}
			if !allowed[claims.Role] {
				return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
					Error: apperrors.ErrForbidden.Error(),
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

func proxyRateLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(math.Ceil(perSecond)) * 5
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]interface{}{"success": false, "error": "client could not be identified"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]interface{}{"success": false, "error": "too many requests"})
		},
	})
}

// requestContextLogger puts a request-scoped logger on the request context.
func requestContextLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := log.With().Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).Logger()
			req := c.Request()
			c.SetRequest(req.WithContext(l.WithContext(req.Context())))
			return next(c)
		}
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= http.StatusInternalServerError {
				event = log.Error().Err(v.Error)
			} else if v.Status >= http.StatusBadRequest {
				event = log.Warn()
			}
			event.
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
