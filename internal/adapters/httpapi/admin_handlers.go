package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aquaclean/carwash-api/internal/app/admin"
	"github.com/aquaclean/carwash-api/internal/domain"
)

func (s *Server) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func() (int, any, error) {
		sum, err := s.Analytics.Summary(r.Context())
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, analyticsFromDomain(sum), nil
	})
}

func (s *Server) GetRevenue(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func() (int, any, error) {
		rev, err := s.Admin.Revenue(r.Context(), token(r))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, revenueFromDomain(rev), nil
	})
}

func (s *Server) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := admin.UserFilter{Search: q.Get("search"), Status: q.Get("status"), Tier: q.Get("tier")}
	s.respond(w, r, func() (int, any, error) {
		us, err := s.Admin.ListUsers(r.Context(), token(r), f)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, usersFromDomain(us), nil
	})
}

func (s *Server) AdminGetUser(w http.ResponseWriter, r *http.Request) {
	id := domain.UserID(chi.URLParam(r, "userId"))
	s.respond(w, r, func() (int, any, error) {
		u, err := s.Admin.GetUser(r.Context(), token(r), id)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, userFromDomain(u), nil
	})
}

func (s *Server) AdminListCars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := admin.CarFilter{Search: q.Get("search"), Make: q.Get("make")}
	s.respond(w, r, func() (int, any, error) {
		rows, err := s.Admin.ListCars(r.Context(), token(r), f)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, carRowsFromDomain(rows), nil
	})
}

func (s *Server) AdminCarMakes(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func() (int, any, error) {
		makes, err := s.Admin.CarMakes(r.Context(), token(r))
		if err != nil {
			return 0, nil, err
		}
		out := make([]MakeCount, 0, len(makes))
		for _, m := range makes {
			out = append(out, MakeCount{Make: m.Make, Count: m.Count})
		}
		return http.StatusOK, out, nil
	})
}

func (s *Server) AdminListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := admin.AppointmentFilter{Search: q.Get("search"), Status: q.Get("status"), Service: q.Get("service")}
	s.respond(w, r, func() (int, any, error) {
		l, err := s.Admin.ListAppointments(r.Context(), token(r), f)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, appointmentListFromDomain(l), nil
	})
}

func (s *Server) AdminSetAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := domain.UserID(chi.URLParam(r, "userId"))
	id := domain.AppointmentID(chi.URLParam(r, "appointmentId"))
	s.respond(w, r, func() (int, any, error) {
		a, err := s.Admin.SetAppointmentStatus(r.Context(), token(r), userID, id, domain.AppointmentStatus(req.Status))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, appointmentFromDomain(a), nil
	})
}

func (s *Server) AdminListNotifications(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func() (int, any, error) {
		l, err := s.Admin.Notifications(r.Context(), token(r))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, notificationListFromDomain(l), nil
	})
}

func (s *Server) AdminSendNotification(w http.ResponseWriter, r *http.Request) {
	var req SendNotificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, r, func() (int, any, error) {
		n, err := s.Admin.SendNotification(r.Context(), token(r), admin.SendNotificationInput{
			Title:      req.Title,
			Message:    req.Message,
			Type:       domain.NotificationType(req.Type),
			Recipients: admin.Recipients(req.Recipients),
			UserID:     domain.UserID(req.UserId),
		})
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, notificationFromDomain(n), nil
	})
}

func (s *Server) AdminSettings(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func() (int, any, error) {
		st, err := s.Admin.Settings(r.Context(), token(r))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, settingsFromDomain(st), nil
	})
}
