package http

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"eventreg/internal/delivery/http/controllers"
	"eventreg/internal/delivery/http/middleware"
	"eventreg/internal/domain"
)

// RouterDeps carries everything NewRouter wires into the mux.
type RouterDeps struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	AllowedOrigins []string

	Auth          *controllers.AuthController
	Events        *controllers.EventController
	Registrations *controllers.RegistrationController
	Admin         *controllers.AdminController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(deps.Verifier)
	staff := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireStaff(next))
	}

	// Auth
	mux.HandleFunc("POST /auth/signup", deps.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", deps.Auth.Login)
	mux.HandleFunc("GET /auth/token", auth(deps.Auth.Token))

	// Events
	mux.HandleFunc("GET /events", deps.Events.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", deps.Events.GetEvent)
	mux.HandleFunc("POST /events", staff(deps.Events.CreateEvent))

	// Attendee
	mux.HandleFunc("POST /attendee/events/{eventID}/registrations", auth(deps.Registrations.Register))
	mux.HandleFunc("DELETE /attendee/events/{eventID}/registrations", auth(deps.Registrations.Cancel))
	mux.HandleFunc("GET /attendee/registrations", auth(deps.Registrations.ListMyRegistrations))

	// Admin
	mux.HandleFunc("GET /admin/events", staff(deps.Admin.ListEvents))
	mux.HandleFunc("GET /admin/registrations", staff(deps.Admin.ListRegistrations))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.CORS(deps.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(deps.Logger, handler)
	handler = chimw.Recoverer(handler)
	handler = chimw.RequestID(handler)
	return handler
}
