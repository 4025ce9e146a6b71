package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aquaclean/carwash-api/internal/app/admin"
	"github.com/aquaclean/carwash-api/internal/app/analytics"
	"github.com/aquaclean/carwash-api/internal/app/apperr"
	"github.com/aquaclean/carwash-api/internal/app/auth"
	"github.com/aquaclean/carwash-api/internal/app/customer"
	"github.com/aquaclean/carwash-api/internal/app/guard"
	"github.com/aquaclean/carwash-api/internal/domain"
	platformclock "github.com/aquaclean/carwash-api/internal/platform/clock"
	clockport "github.com/aquaclean/carwash-api/internal/ports/out/clock"
	"github.com/aquaclean/carwash-api/internal/ports/out/idempotency"
)

// Server implements the JSON API on top of the app services.
type Server struct {
	Auth      *auth.Service
	Customer  *customer.Service
	Admin     *admin.Service
	Analytics *analytics.Service
	Idem      idempotency.Store
	Clock     clockport.Clock
	Log       *zap.Logger
}

func NewServer(authSvc *auth.Service, customerSvc *customer.Service, adminSvc *admin.Service, analyticsSvc *analytics.Service, idem idempotency.Store, clk clockport.Clock, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if clk == nil {
		clk = platformclock.NewSystemClock()
	}
	return &Server{
		Auth:      authSvc,
		Customer:  customerSvc,
		Admin:     adminSvc,
		Analytics: analyticsSvc,
		Idem:      idem,
		Clock:     clk,
		Log:       log,
	}
}

// token returns the bearer token of the authenticated session, or "" for anonymous requests.
func token(r *http.Request) string {
	sess, _ := SessionFromContext(r.Context())
	return sess.Token
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, r, func() (int, any, error) {
		sess, err := s.Auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, sessionFromDomain(sess), nil
	})
}

func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, r, func() (int, any, error) {
		sess, err := s.Auth.Signup(r.Context(), auth.SignupInput{
			Name:            req.Name,
			Email:           req.Email,
			Phone:           req.Phone,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
		})
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, sessionFromDomain(sess), nil
	})
}

// Logout ends the presented session, valid or not.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	raw, _ := bearerToken(r)
	s.respond(w, r, func() (int, any, error) {
		return http.StatusNoContent, nil, s.Auth.Logout(r.Context(), raw)
	})
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, apperr.CodeUnauthorized, "authentication required", nil)
		return
	}
	writeJSON(w, http.StatusOK, sessionFromDomain(sess))
}

func (s *Server) ResolveRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		writeError(w, r, http.StatusUnprocessableEntity, apperr.CodeValidation, "missing path", map[string]any{"path": "required"})
		return
	}
	d := guard.Decide(path, principalFromContext(r.Context()))
	writeJSON(w, http.StatusOK, RouteDecision{
		Path:     path,
		Outcome:  string(d.Outcome),
		Location: d.Location,
		Access:   string(d.Access),
	})
}

func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	duration := domain.Duration(strings.TrimSpace(r.URL.Query().Get("duration")))
	s.respond(w, r, func() (int, any, error) {
		quotes, err := s.Customer.QuotePlans(duration)
		if err != nil {
			return 0, nil, err
		}
		out := struct {
			Duration string      `json:"duration"`
			Quotes   []PlanQuote `json:"quotes"`
		}{Quotes: make([]PlanQuote, 0, len(quotes))}
		for _, q := range quotes {
			out.Duration = string(q.Duration)
			out.Quotes = append(out.Quotes, quoteFromDomain(q))
		}
		return http.StatusOK, out, nil
	})
}
