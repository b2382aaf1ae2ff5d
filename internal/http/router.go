package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/huyhung/ecom-api/internal/account"
	"github.com/huyhung/ecom-api/internal/config"
	"github.com/huyhung/ecom-api/internal/httputil"
	"github.com/huyhung/ecom-api/internal/logging"
	"github.com/huyhung/ecom-api/internal/user"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, accountHandler *account.Handler, accountMiddleware *account.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	// Production builds will not have this route at all
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	} else {
		log.Println("Swagger UI disabled (production mode)")
	}

	r.Route("/api/v1/users", func(r chi.Router) {
		// Public account routes
		r.Post("/", accountHandler.Register)
		r.Post("/login", accountHandler.Login)
		r.Post("/logout", accountHandler.Logout)
		r.Patch("/verify-email", accountHandler.VerifyEmail)
		r.Get("/send-otp-email/{email}", accountHandler.SendOTPEmail)
		r.Get("/forgot-password/{email}", accountHandler.ForgotPassword)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(accountMiddleware.RequireAuth)
			r.Patch("/{id}", accountHandler.UpdateProfile)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(accountMiddleware.RequireAuth)
			r.Use(accountMiddleware.RequireRoles(user.RoleAdmin))
			r.Get("/", accountHandler.List)
			r.Delete("/{id}", accountHandler.Remove)
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
