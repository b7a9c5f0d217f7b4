package router

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"landrecords/internal/auth"
	"landrecords/internal/config"
	"landrecords/internal/handler"
	"landrecords/internal/logger"
	"landrecords/internal/service"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	LandRecord   *handler.LandRecordHandler
	Document     *handler.DocumentHandler
	Mutation     *handler.MutationHandler
	Verification *handler.VerificationHandler
}

// Deps carries what the middleware chain needs besides the handlers.
type Deps struct {
	Config      *config.Config
	Log         *logger.Logger
	JWT         *auth.JWTService
	AuthService service.AuthService
	Gatherer    prometheus.Gatherer
	// Health reports whether the backing database answers.
	Health func(ctx context.Context) error
}

// Register wires routes and middleware.
func Register(e *echo.Echo, deps Deps, h Handlers) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = errorHandler(deps.Log)

	e.Use(middleware.RequestID())
	e.Use(requestContext(deps.Log))
	e.Use(requestLogger(deps.Log))
	e.Use(middleware.Recover())
	if deps.Config != nil && len(deps.Config.Server.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     deps.Config.Server.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
			AllowCredentials: true,
		}))
	}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Land Records API",
			"docs":    "/swagger/index.html",
		})
	})

	e.GET("/healthz", func(c echo.Context) error {
		if deps.Health != nil {
			if err := deps.Health(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/token", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	// Secured routes (require a valid, unrevoked access token of an active user)
	secured := api.Group("",
		echojwt.WithConfig(echojwt.Config{
			ContextKey:     handler.ClaimsKey,
			TokenLookup:    "header:" + echo.HeaderAuthorization + ":Bearer ",
			ParseTokenFunc: handler.ParseAccessToken(deps.JWT),
			ErrorHandler:   handler.Unauthorized,
		}),
		handler.Identity(deps.AuthService, deps.Log),
	)

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/users/me", h.User.Me)

	secured.POST("/land-records", h.LandRecord.Create)
	secured.GET("/land-records", h.LandRecord.List)
	secured.GET("/land-records/:id", h.LandRecord.Get)
	secured.GET("/land-records/:id/mutations", h.LandRecord.ListMutations)

	var uploadLimit int64 = 50 << 20
	if deps.Config != nil {
		uploadLimit = deps.Config.Server.MaxUploadBytes()
	}
	secured.POST("/land-records/:id/documents", h.Document.Upload, bodyLimit(uploadLimit))
	secured.GET("/land-records/:id/documents", h.Document.List)
	secured.GET("/documents/:id/verify", h.Document.Verify)

	secured.POST("/mutations", h.Mutation.Create)
	secured.GET("/mutations", h.Mutation.List)
	secured.GET("/mutations/:id", h.Mutation.Get)
	secured.PUT("/mutations/:id/approve", h.Mutation.Approve)
	secured.PUT("/mutations/:id/reject", h.Mutation.Reject)

	secured.GET("/verify/transactions/:transaction_id", h.Verification.Transaction)
	secured.GET("/verify/documents/:hash", h.Verification.Document)
	secured.GET("/verify/land-records/:survey_number", h.Verification.LandRecord)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
