package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aquaclean/carwash-api/internal/app/customer"
	"github.com/aquaclean/carwash-api/internal/domain"
)

func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func() (int, any, error) {
		u, err := s.Customer.Me(r.Context(), token(r))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, userFromDomain(u), nil
	})
}

// ReplaceMe stores a full user document for the caller (last writer wins).
func (s *Server) ReplaceMe(w http.ResponseWriter, r *http.Request) {
	var req User
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, r, func() (int, any, error) {
		u, err := s.Auth.UpdateUser(r.Context(), token(r), userToDomain(req))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, userFromDomain(u), nil
	})
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, _ := SessionFromContext(r.Context())

	// Canonicalize fields with normalization semantics before hashing.
	canon := req
	if v, err := canon.Name.Get(); err == nil {
		canon.Name.Set(domain.NormalizeHumanName(v))
	}
	if v, err := canon.Email.Get(); err == nil {
		canon.Email.Set(domain.NormalizeEmail(v))
	}
	bodyHash, err := hashBody(canon)
	if err != nil {
		writeServiceError(w, r, s.Log, err)
		return
	}

	s.idempotent(w, r, "/me/profile", sess.User.ID, bodyHash, func() (int, any, error) {
		u, err := s.Customer.UpdateProfile(r.Context(), sess.Token, customer.UpdateProfileInput{
			Name:  optionalFromNullable(req.Name),
			Email: optionalFromNullable(req.Email),
			Phone: optionalFromNullable(req.Phone),
		})
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, userFromDomain(u), nil
	})
}

func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, r, func() (int, any, error) {
		return http.StatusNoContent, nil, s.Customer.ChangePassword(r.Context(), token(r), req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	})
}

func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func() (int, any, error) {
		d, err := s.Customer.Dashboard(r.Context(), token(r))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, dashboardFromDomain(d), nil
	})
}

func (s *Server) ListMyCars(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func() (int, any, error) {
		cars, err := s.Customer.ListCars(r.Context(), token(r))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, carsFromDomain(cars), nil
	})
}

func carInput(req CarRequest) customer.CarInput {
	return customer.CarInput{
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Color:        req.Color,
		LicensePlate: req.LicensePlate,
	}
}

func (s *Server) AddCar(w http.ResponseWriter, r *http.Request) {
	var req CarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, r, func() (int, any, error) {
		c, err := s.Customer.AddCar(r.Context(), token(r), carInput(req))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, carFromDomain(c), nil
	})
}

func (s *Server) UpdateCar(w http.ResponseWriter, r *http.Request) {
	var req CarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := domain.CarID(chi.URLParam(r, "carId"))
	s.respond(w, r, func() (int, any, error) {
		c, err := s.Customer.UpdateCar(r.Context(), token(r), id, carInput(req))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, carFromDomain(c), nil
	})
}

func (s *Server) RemoveCar(w http.ResponseWriter, r *http.Request) {
	id := domain.CarID(chi.URLParam(r, "carId"))
	s.respond(w, r, func() (int, any, error) {
		return http.StatusNoContent, nil, s.Customer.RemoveCar(r.Context(), token(r), id)
	})
}

func (s *Server) ListMyAppointments(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func() (int, any, error) {
		a, err := s.Customer.ListAppointments(r.Context(), token(r))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, AppointmentsResponse{
			Upcoming: appointmentsFromDomain(a.Upcoming),
			Past:     appointmentsFromDomain(a.Past),
		}, nil
	})
}

func (s *Server) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, _ := SessionFromContext(r.Context())
	bodyHash, err := hashBody(req)
	if err != nil {
		writeServiceError(w, r, s.Log, err)
		return
	}
	s.idempotent(w, r, "/me/appointments", sess.User.ID, bodyHash, func() (int, any, error) {
		a, err := s.Customer.BookAppointment(r.Context(), sess.Token, customer.BookingInput{
			CarID:    domain.CarID(req.CarId),
			Date:     req.Date.Time,
			Time:     req.Time,
			Service:  domain.Tier(req.Service),
			WashType: req.WashType,
		})
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, appointmentFromDomain(a), nil
	})
}

func (s *Server) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id := domain.AppointmentID(chi.URLParam(r, "appointmentId"))
	s.respond(w, r, func() (int, any, error) {
		a, err := s.Customer.CancelAppointment(r.Context(), token(r), id)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, appointmentFromDomain(a), nil
	})
}

func (s *Server) ListMyFeedback(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func() (int, any, error) {
		fs, err := s.Customer.ListFeedback(r.Context(), token(r))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, feedbackListFromDomain(fs), nil
	})
}

func (s *Server) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, r, func() (int, any, error) {
		f, err := s.Customer.SubmitFeedback(r.Context(), token(r), customer.FeedbackInput{
			Rating:      req.Rating,
			Comment:     req.Comment,
			ServiceType: req.ServiceType,
		})
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, feedbackFromDomain(f), nil
	})
}

func (s *Server) ChooseSubscription(w http.ResponseWriter, r *http.Request) {
	var req SubscriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, r, func() (int, any, error) {
		u, err := s.Customer.ChooseSubscription(r.Context(), token(r), domain.Tier(req.Tier), domain.Duration(req.Duration))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, userFromDomain(u), nil
	})
}

func (s *Server) ListMyNotifications(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func() (int, any, error) {
		ns, err := s.Customer.Notifications(r.Context(), token(r))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, notificationsFromDomain(ns), nil
	})
}

func (s *Server) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := domain.NotificationID(chi.URLParam(r, "notificationId"))
	s.respond(w, r, func() (int, any, error) {
		n, err := s.Customer.MarkNotificationRead(r.Context(), token(r), id)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, notificationFromDomain(n), nil
	})
}
