package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/aquaclean/carwash-api/internal/app/admin"
	"github.com/aquaclean/carwash-api/internal/app/analytics"
	"github.com/aquaclean/carwash-api/internal/app/auth"
	"github.com/aquaclean/carwash-api/internal/app/customer"
	"github.com/aquaclean/carwash-api/internal/domain"
)

type Subscription struct {
	Tier      string             `json:"tier"`
	Duration  string             `json:"duration"`
	StartDate openapi_types.Date `json:"startDate"`
	EndDate   openapi_types.Date `json:"endDate"`
	Status    string             `json:"status"`
}

type Car struct {
	Id           string             `json:"id"`
	UserId       string             `json:"userId"`
	Make         string             `json:"make"`
	Model        string             `json:"model"`
	Year         int                `json:"year"`
	Color        string             `json:"color"`
	LicensePlate string             `json:"licensePlate"`
	AddedDate    openapi_types.Date `json:"addedDate"`
}

type Appointment struct {
	Id       string             `json:"id"`
	UserId   string             `json:"userId"`
	CarId    string             `json:"carId"`
	Date     openapi_types.Date `json:"date"`
	Time     string             `json:"time"`
	Service  string             `json:"service"`
	Status   string             `json:"status"`
	WashType string             `json:"washType"`
}

type Feedback struct {
	Id          string             `json:"id"`
	UserId      string             `json:"userId"`
	Rating      int                `json:"rating"`
	Comment     string             `json:"comment"`
	Date        openapi_types.Date `json:"date"`
	ServiceType string             `json:"serviceType"`
}

type User struct {
	Id           string              `json:"id"`
	Name         string              `json:"name"`
	Email        openapi_types.Email `json:"email"`
	Phone        string              `json:"phone"`
	Role         string              `json:"role,omitempty"`
	IsAdmin      bool                `json:"isAdmin"`
	JoinDate     openapi_types.Date  `json:"joinDate"`
	Subscription Subscription        `json:"subscription"`
	TotalSpent   float64             `json:"totalSpent"`
	Cars         []Car               `json:"cars"`
	Appointments []Appointment       `json:"appointments"`
	Feedback     []Feedback          `json:"feedback"`
}

type Notification struct {
	Id      string                    `json:"id"`
	UserId  nullable.Nullable[string] `json:"userId"`
	Title   string                    `json:"title"`
	Message string                    `json:"message"`
	Type    string                    `json:"type"`
	Date    openapi_types.Date        `json:"date"`
	Read    bool                      `json:"read"`
}

type Plan struct {
	Tier         string   `json:"tier"`
	Name         string   `json:"name"`
	MonthlyPrice float64  `json:"monthlyPrice"`
	Features     []string `json:"features"`
}

type PlanQuote struct {
	Plan              Plan    `json:"plan"`
	Duration          string  `json:"duration"`
	Months            int     `json:"months"`
	Total             float64 `json:"total"`
	MonthlyEquivalent float64 `json:"monthlyEquivalent"`
	Savings           float64 `json:"savings"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsAdmin   bool      `json:"isAdmin"`
	User      User      `json:"user"`
}

type DashboardResponse struct {
	User          User         `json:"user"`
	Plan          Plan         `json:"plan"`
	NextWash      *Appointment `json:"nextWash"`
	UpcomingCount int          `json:"upcomingCount"`
	CarCount      int          `json:"carCount"`
	FeedbackCount int          `json:"feedbackCount"`
	DaysRemaining int          `json:"daysRemaining"`
	RenewalDue    bool         `json:"renewalDue"`
}

type AppointmentsResponse struct {
	Upcoming []Appointment `json:"upcoming"`
	Past     []Appointment `json:"past"`
}

type RouteDecision struct {
	Path     string `json:"path"`
	Outcome  string `json:"outcome"`
	Location string `json:"location,omitempty"`
	Access   string `json:"access,omitempty"`
}

type ModelCount struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}

type Revenue struct {
	Month   string  `json:"month"`
	Basic   float64 `json:"basic"`
	Premium float64 `json:"premium"`
	Luxury  float64 `json:"luxury"`
	Total   float64 `json:"total"`
}

type AnalyticsResponse struct {
	TotalUsers               int            `json:"totalUsers"`
	ActiveSubscriptions      int            `json:"activeSubscriptions"`
	TotalCars                int            `json:"totalCars"`
	TotalRevenue             float64        `json:"totalRevenue"`
	AverageRating            float64        `json:"averageRating"`
	PopularModels            []ModelCount   `json:"popularModels"`
	SubscriptionDistribution map[string]int `json:"subscriptionDistribution"`
	RevenueData              []Revenue      `json:"revenueData"`
}

type CarRow struct {
	Car
	OwnerName  string `json:"ownerName"`
	OwnerEmail string `json:"ownerEmail"`
	OwnerTier  string `json:"ownerTier"`
}

type MakeCount struct {
	Make  string `json:"make"`
	Count int    `json:"count"`
}

type AppointmentRow struct {
	Appointment
	OwnerName  string `json:"ownerName"`
	OwnerEmail string `json:"ownerEmail"`
	Car        *Car   `json:"car"`
}

type StatusCounts struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentRow `json:"appointments"`
	Counts       StatusCounts     `json:"counts"`
}

type NotificationStats struct {
	Total       int `json:"total"`
	Unread      int `json:"unread"`
	Reminders   int `json:"reminders"`
	Promotions  int `json:"promotions"`
	ActiveUsers int `json:"activeUsers"`
}

type NotificationListResponse struct {
	Notifications []Notification    `json:"notifications"`
	Stats         NotificationStats `json:"stats"`
}

type Business struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type SettingsResponse struct {
	Business              Business `json:"business"`
	Plans                 []Plan   `json:"plans"`
	SessionTimeoutMinutes int      `json:"sessionTimeoutMinutes"`
	AllowUserRegistration bool     `json:"allowUserRegistration"`
}

// Requests.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type UpdateProfileRequest struct {
	Name  nullable.Nullable[string] `json:"name,omitempty"`
	Email nullable.Nullable[string] `json:"email,omitempty"`
	Phone nullable.Nullable[string] `json:"phone,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type CarRequest struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Color        string `json:"color"`
	LicensePlate string `json:"licensePlate"`
}

type BookingRequest struct {
	CarId    string             `json:"carId"`
	Date     openapi_types.Date `json:"date"`
	Time     string             `json:"time"`
	Service  string             `json:"service"`
	WashType string             `json:"washType"`
}

type FeedbackRequest struct {
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	ServiceType string `json:"serviceType"`
}

type SubscriptionRequest struct {
	Tier     string `json:"tier"`
	Duration string `json:"duration"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type SendNotificationRequest struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Recipients string `json:"recipients"`
	UserId     string `json:"userId"`
}

func wireDate(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: t.UTC()}
}

func carFromDomain(c domain.Car) Car {
	return Car{
		Id:           string(c.ID),
		UserId:       string(c.UserID),
		Make:         c.Make,
		Model:        c.Model,
		Year:         c.Year,
		Color:        c.Color,
		LicensePlate: c.LicensePlate,
		AddedDate:    wireDate(c.AddedDate),
	}
}

func carsFromDomain(cs []domain.Car) []Car {
	out := make([]Car, 0, len(cs))
	for _, c := range cs {
		out = append(out, carFromDomain(c))
	}
	return out
}

func appointmentFromDomain(a domain.Appointment) Appointment {
	return Appointment{
		Id:       string(a.ID),
		UserId:   string(a.UserID),
		CarId:    string(a.CarID),
		Date:     wireDate(a.Date),
		Time:     a.Time,
		Service:  string(a.Service),
		Status:   string(a.Status),
		WashType: a.WashType,
	}
}

func appointmentsFromDomain(as []domain.Appointment) []Appointment {
	out := make([]Appointment, 0, len(as))
	for _, a := range as {
		out = append(out, appointmentFromDomain(a))
	}
	return out
}

func feedbackFromDomain(f domain.Feedback) Feedback {
	return Feedback{
		Id:          string(f.ID),
		UserId:      string(f.UserID),
		Rating:      f.Rating,
		Comment:     f.Comment,
		Date:        wireDate(f.Date),
		ServiceType: f.ServiceType,
	}
}

func feedbackListFromDomain(fs []domain.Feedback) []Feedback {
	out := make([]Feedback, 0, len(fs))
	for _, f := range fs {
		out = append(out, feedbackFromDomain(f))
	}
	return out
}

func userFromDomain(u domain.User) User {
	return User{
		Id:       string(u.ID),
		Name:     u.Name,
		Email:    openapi_types.Email(u.Email),
		Phone:    u.Phone,
		Role:     string(u.Role),
		IsAdmin:  u.IsAdmin(),
		JoinDate: wireDate(u.JoinDate),
		Subscription: Subscription{
			Tier:      string(u.Subscription.Tier),
			Duration:  string(u.Subscription.Duration),
			StartDate: wireDate(u.Subscription.StartDate),
			EndDate:   wireDate(u.Subscription.EndDate),
			Status:    string(u.Subscription.Status),
		},
		TotalSpent:   u.TotalSpent,
		Cars:         carsFromDomain(u.Cars),
		Appointments: appointmentsFromDomain(u.Appointments),
		Feedback:     feedbackListFromDomain(u.Feedback),
	}
}

func usersFromDomain(us []domain.User) []User {
	out := make([]User, 0, len(us))
	for _, u := range us {
		out = append(out, userFromDomain(u))
	}
	return out
}

// userToDomain maps a full user document. Role and join date are kept from the stored record by the auth service.
func userToDomain(in User) domain.User {
	u := domain.User{
		ID:       domain.UserID(in.Id),
		Name:     in.Name,
		Email:    string(in.Email),
		Phone:    in.Phone,
		Role:     domain.Role(in.Role),
		JoinDate: in.JoinDate.Time,
		Subscription: domain.Subscription{
			Tier:      domain.Tier(in.Subscription.Tier),
			Duration:  domain.Duration(in.Subscription.Duration),
			StartDate: in.Subscription.StartDate.Time,
			EndDate:   in.Subscription.EndDate.Time,
			Status:    domain.SubscriptionStatus(in.Subscription.Status),
		},
		TotalSpent:   in.TotalSpent,
		Cars:         make([]domain.Car, 0, len(in.Cars)),
		Appointments: make([]domain.Appointment, 0, len(in.Appointments)),
		Feedback:     make([]domain.Feedback, 0, len(in.Feedback)),
	}
	for _, c := range in.Cars {
		u.Cars = append(u.Cars, domain.Car{
			ID: domain.CarID(c.Id), UserID: domain.UserID(c.UserId), Make: c.Make, Model: c.Model,
			Year: c.Year, Color: c.Color, LicensePlate: c.LicensePlate, AddedDate: c.AddedDate.Time,
		})
	}
	for _, a := range in.Appointments {
		u.Appointments = append(u.Appointments, domain.Appointment{
			ID: domain.AppointmentID(a.Id), UserID: domain.UserID(a.UserId), CarID: domain.CarID(a.CarId),
			Date: a.Date.Time, Time: a.Time, Service: domain.Tier(a.Service),
			Status: domain.AppointmentStatus(a.Status), WashType: a.WashType,
		})
	}
	for _, f := range in.Feedback {
		u.Feedback = append(u.Feedback, domain.Feedback{
			ID: domain.FeedbackID(f.Id), UserID: domain.UserID(f.UserId), Rating: f.Rating,
			Comment: f.Comment, Date: f.Date.Time, ServiceType: f.ServiceType,
		})
	}
	return u
}

func notificationFromDomain(n domain.Notification) Notification {
	out := Notification{
		Id:      string(n.ID),
		Title:   n.Title,
		Message: n.Message,
		Type:    string(n.Type),
		Date:    wireDate(n.Date),
		Read:    n.Read,
	}
	if n.UserID != nil {
		out.UserId = nullable.NewNullableWithValue(string(*n.UserID))
	} else {
		out.UserId = nullable.NewNullNullable[string]()
	}
	return out
}

func notificationsFromDomain(ns []domain.Notification) []Notification {
	out := make([]Notification, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationFromDomain(n))
	}
	return out
}

func planFromDomain(p domain.Plan) Plan {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return Plan{Tier: string(p.Tier), Name: p.Name, MonthlyPrice: p.MonthlyPrice, Features: features}
}

func plansFromDomain(ps []domain.Plan) []Plan {
	out := make([]Plan, 0, len(ps))
	for _, p := range ps {
		out = append(out, planFromDomain(p))
	}
	return out
}

func quoteFromDomain(q domain.PlanQuote) PlanQuote {
	return PlanQuote{
		Plan:              planFromDomain(q.Plan),
		Duration:          string(q.Duration),
		Months:            q.Months,
		Total:             q.Total,
		MonthlyEquivalent: q.MonthlyEquivalent,
		Savings:           q.Savings,
	}
}

func sessionFromDomain(s auth.Session) SessionResponse {
	return SessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC(),
		IsAdmin:   s.IsAdmin(),
		User:      userFromDomain(s.User),
	}
}

func dashboardFromDomain(d customer.Dashboard) DashboardResponse {
	out := DashboardResponse{
		User:          userFromDomain(d.User),
		Plan:          planFromDomain(d.Plan),
		UpcomingCount: d.UpcomingCount,
		CarCount:      d.CarCount,
		FeedbackCount: d.FeedbackCount,
		DaysRemaining: d.DaysRemaining,
		RenewalDue:    d.RenewalDue,
	}
	if d.NextWash != nil {
		a := appointmentFromDomain(*d.NextWash)
		out.NextWash = &a
	}
	return out
}

func revenueFromDomain(rs []domain.Revenue) []Revenue {
	out := make([]Revenue, 0, len(rs))
	for _, r := range rs {
		out = append(out, Revenue{Month: r.Month, Basic: r.Basic, Premium: r.Premium, Luxury: r.Luxury, Total: r.Total})
	}
	return out
}

func analyticsFromDomain(s analytics.Summary) AnalyticsResponse {
	out := AnalyticsResponse{
		TotalUsers:               s.TotalUsers,
		ActiveSubscriptions:      s.ActiveSubscriptions,
		TotalCars:                s.TotalCars,
		TotalRevenue:             s.TotalRevenue,
		AverageRating:            s.AverageRating,
		PopularModels:            make([]ModelCount, 0, len(s.PopularModels)),
		SubscriptionDistribution: map[string]int{},
		RevenueData:              revenueFromDomain(s.RevenueData),
	}
	for _, m := range s.PopularModels {
		out.PopularModels = append(out.PopularModels, ModelCount{Model: m.Model, Count: m.Count})
	}
	for _, t := range domain.Tiers {
		out.SubscriptionDistribution[string(t)] = s.SubscriptionDistribution[t]
	}
	return out
}

func carRowsFromDomain(rows []admin.CarRow) []CarRow {
	out := make([]CarRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, CarRow{Car: carFromDomain(r.Car), OwnerName: r.OwnerName, OwnerEmail: r.OwnerEmail, OwnerTier: string(r.OwnerTier)})
	}
	return out
}

func appointmentListFromDomain(l admin.AppointmentList) AppointmentListResponse {
	out := AppointmentListResponse{
		Appointments: make([]AppointmentRow, 0, len(l.Rows)),
		Counts: StatusCounts{
			Total:     l.Counts.Total,
			Scheduled: l.Counts.Scheduled,
			Completed: l.Counts.Completed,
			Cancelled: l.Counts.Cancelled,
		},
	}
	for _, r := range l.Rows {
		row := AppointmentRow{Appointment: appointmentFromDomain(r.Appointment), OwnerName: r.OwnerName, OwnerEmail: r.OwnerEmail}
		if r.Car != nil {
			c := carFromDomain(*r.Car)
			row.Car = &c
		}
		out.Appointments = append(out.Appointments, row)
	}
	return out
}

func notificationListFromDomain(l admin.NotificationList) NotificationListResponse {
	return NotificationListResponse{
		Notifications: notificationsFromDomain(l.Notifications),
		Stats: NotificationStats{
			Total:       l.Stats.Total,
			Unread:      l.Stats.Unread,
			Reminders:   l.Stats.Reminders,
			Promotions:  l.Stats.Promotions,
			ActiveUsers: l.Stats.ActiveUsers,
		},
	}
}

func settingsFromDomain(s admin.Settings) SettingsResponse {
	return SettingsResponse{
		Business: Business{
			Name:    s.Business.Name,
			Email:   s.Business.Email,
			Phone:   s.Business.Phone,
			Address: s.Business.Address,
		},
		Plans:                 plansFromDomain(s.Plans),
		SessionTimeoutMinutes: s.SessionTimeoutMinutes,
		AllowUserRegistration: s.AllowUserRegistration,
	}
}

func optionalFromNullable[T any](n nullable.Nullable[T]) customer.Optional[T] {
	if !n.IsSpecified() {
		return customer.Unspecified[T]()
	}
	if n.IsNull() {
		return customer.Null[T]()
	}
	v, err := n.Get()
	if err != nil {
		return customer.Null[T]()
	}
	return customer.Some(v)
}
