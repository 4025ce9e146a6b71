package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/aquaclean/carwash-api/internal/app/guard"
)

type RouterOptions struct {
	Logger         *zap.Logger
	AllowedOrigins []string
}

// NewRouter constructs the API HTTP router.
//
// Every request passes through request id, real IP, logging, panic recovery, CORS and
// session resolution. Subtrees then apply the route guard for their audience.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", idempotencyKeyHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Idempotent-Replayed"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoint sits outside the session middleware.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(NewAuthMiddleware(s.Auth, log))

		r.Post("/auth/login", s.Login)
		r.Post("/auth/signup", s.Signup)
		r.Post("/auth/logout", s.Logout)
		r.With(RequireAccess(guard.AccessUser)).Get("/auth/session", s.GetSession)

		r.Get("/routes/resolve", s.ResolveRoute)
		r.Get("/plans", s.ListPlans)

		r.Route("/me", func(r chi.Router) {
			r.Use(RequireAccess(guard.AccessUser))

			r.Get("/", s.GetMe)
			r.Put("/", s.ReplaceMe)
			r.Patch("/profile", s.UpdateProfile)
			r.Post("/password", s.ChangePassword)
			r.Get("/dashboard", s.GetDashboard)

			r.Get("/cars", s.ListMyCars)
			r.Post("/cars", s.AddCar)
			r.Put("/cars/{carId}", s.UpdateCar)
			r.Delete("/cars/{carId}", s.RemoveCar)

			r.Get("/appointments", s.ListMyAppointments)
			r.Post("/appointments", s.BookAppointment)
			r.Post("/appointments/{appointmentId}/cancel", s.CancelAppointment)

			r.Get("/feedback", s.ListMyFeedback)
			r.Post("/feedback", s.SubmitFeedback)

			r.Put("/subscription", s.ChooseSubscription)

			r.Get("/notifications", s.ListMyNotifications)
			r.Post("/notifications/{notificationId}/read", s.MarkNotificationRead)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAccess(guard.AccessAdmin))

			r.Get("/analytics", s.GetAnalytics)
			r.Get("/revenue", s.GetRevenue)
			r.Get("/users", s.AdminListUsers)
			r.Get("/users/{userId}", s.AdminGetUser)
			r.Post("/users/{userId}/appointments/{appointmentId}/status", s.AdminSetAppointmentStatus)
			r.Get("/cars", s.AdminListCars)
			r.Get("/cars/makes", s.AdminCarMakes)
			r.Get("/appointments", s.AdminListAppointments)
			r.Get("/notifications", s.AdminListNotifications)
			r.Post("/notifications", s.AdminSendNotification)
			r.Get("/settings", s.AdminSettings)
		})
	})

	return r
}
