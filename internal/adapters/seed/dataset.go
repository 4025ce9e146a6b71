// Package seed holds the demo dataset and loads it into the repositories.
package seed

import (
	"github.com/aquaclean/carwash-api/internal/domain"
)

var d = domain.MustDate

func sub(tier domain.Tier, dur domain.Duration, start, end string) domain.Subscription {
	return domain.Subscription{
		Tier:      tier,
		Duration:  dur,
		StartDate: d(start),
		EndDate:   d(end),
		Status:    domain.SubscriptionActive,
	}
}

// Users returns a fresh copy of the demo customers in store order.
func Users() []domain.User {
	return []domain.User{
		{
			ID:           "1",
			Name:         "John Smith",
			Email:        "john.smith@email.com",
			Phone:        "+1 (555) 123-4567",
			Role:         domain.RoleCustomer,
			JoinDate:     d("2024-01-15"),
			Subscription: sub(domain.TierPremium, domain.DurationSixMonth, "2024-01-15", "2024-07-15"),
			TotalSpent:   450,
			Cars: []domain.Car{
				{ID: "1", UserID: "1", Make: "Toyota", Model: "Camry", Year: 2022, Color: "White", LicensePlate: "ABC-123", AddedDate: d("2024-01-15")},
				{ID: "2", UserID: "1", Make: "Honda", Model: "Civic", Year: 2021, Color: "Black", LicensePlate: "XYZ-789", AddedDate: d("2024-02-10")},
			},
			Appointments: []domain.Appointment{
				{ID: "1", UserID: "1", CarID: "1", Date: d("2024-07-10"), Time: "10:00 AM", Service: domain.TierPremium, Status: domain.AppointmentScheduled, WashType: "Exterior & Interior"},
			},
			Feedback: []domain.Feedback{
				{ID: "1", UserID: "1", Rating: 5, Comment: "Excellent service! My car looks brand new.", Date: d("2024-06-15"), ServiceType: "Premium Wash"},
			},
		},
		{
			ID:           "2",
			Name:         "Sarah Johnson",
			Email:        "sarah.johnson@email.com",
			Phone:        "+1 (555) 234-5678",
			Role:         domain.RoleCustomer,
			JoinDate:     d("2024-02-20"),
			Subscription: sub(domain.TierLuxury, domain.DurationOneYear, "2024-02-20", "2025-02-20"),
			TotalSpent:   890,
			Cars: []domain.Car{
				{ID: "3", UserID: "2", Make: "BMW", Model: "X5", Year: 2023, Color: "Silver", LicensePlate: "BMW-001", AddedDate: d("2024-02-20")},
			},
			Appointments: []domain.Appointment{
				{ID: "2", UserID: "2", CarID: "3", Date: d("2024-07-12"), Time: "2:00 PM", Service: domain.TierLuxury, Status: domain.AppointmentScheduled, WashType: "Full Detailing"},
			},
			Feedback: []domain.Feedback{
				{ID: "2", UserID: "2", Rating: 5, Comment: "Amazing luxury service. Worth every penny!", Date: d("2024-06-20"), ServiceType: "Luxury Detailing"},
			},
		},
		{
			ID:           "3",
			Name:         "Mike Davis",
			Email:        "mike.davis@email.com",
			Phone:        "+1 (555) 345-6789",
			Role:         domain.RoleCustomer,
			JoinDate:     d("2024-03-10"),
			Subscription: sub(domain.TierBasic, domain.DurationOneMonth, "2024-06-10", "2024-07-10"),
			TotalSpent:   180,
			Cars: []domain.Car{
				{ID: "4", UserID: "3", Make: "Ford", Model: "F-150", Year: 2020, Color: "Blue", LicensePlate: "FORD-150", AddedDate: d("2024-03-10")},
			},
			Appointments: []domain.Appointment{},
			Feedback: []domain.Feedback{
				{ID: "3", UserID: "3", Rating: 4, Comment: "Good value for money. Basic wash was thorough.", Date: d("2024-06-25"), ServiceType: "Basic Wash"},
			},
		},
		{
			ID:           "4",
			Name:         "Emily Wilson",
			Email:        "emily.wilson@email.com",
			Phone:        "+1 (555) 456-7890",
			Role:         domain.RoleCustomer,
			JoinDate:     d("2024-04-05"),
			Subscription: sub(domain.TierPremium, domain.DurationOneYear, "2024-04-05", "2025-04-05"),
			TotalSpent:   720,
			Cars: []domain.Car{
				{ID: "5", UserID: "4", Make: "Tesla", Model: "Model 3", Year: 2023, Color: "Red", LicensePlate: "TESLA-3", AddedDate: d("2024-04-05")},
			},
			Appointments: []domain.Appointment{
				{ID: "3", UserID: "4", CarID: "5", Date: d("2024-07-08"), Time: "11:30 AM", Service: domain.TierPremium, Status: domain.AppointmentCompleted, WashType: "Eco-Friendly Premium"},
			},
			Feedback: []domain.Feedback{},
		},
		{
			ID:           "5",
			Name:         "David Brown",
			Email:        "david.brown@email.com",
			Phone:        "+1 (555) 567-8901",
			Role:         domain.RoleCustomer,
			JoinDate:     d("2024-05-15"),
			Subscription: sub(domain.TierBasic, domain.DurationSixMonth, "2024-05-15", "2024-11-15"),
			TotalSpent:   240,
			Cars: []domain.Car{
				{ID: "6", UserID: "5", Make: "Chevrolet", Model: "Malibu", Year: 2019, Color: "Gray", LicensePlate: "CHEVY-M", AddedDate: d("2024-05-15")},
			},
			Appointments: []domain.Appointment{},
			Feedback: []domain.Feedback{
				{ID: "4", UserID: "5", Rating: 4, Comment: "Reliable service, good scheduling system.", Date: d("2024-06-30"), ServiceType: "Basic Wash"},
			},
		},
	}
}

// Revenue returns the demo monthly revenue series, oldest first.
func Revenue() []domain.Revenue {
	return []domain.Revenue{
		{Month: "2024-01", Basic: 1200, Premium: 2400, Luxury: 1800, Total: 5400},
		{Month: "2024-02", Basic: 1350, Premium: 2700, Luxury: 2100, Total: 6150},
		{Month: "2024-03", Basic: 1100, Premium: 2200, Luxury: 1900, Total: 5200},
		{Month: "2024-04", Basic: 1450, Premium: 2900, Luxury: 2300, Total: 6650},
		{Month: "2024-05", Basic: 1600, Premium: 3200, Luxury: 2500, Total: 7300},
		{Month: "2024-06", Basic: 1800, Premium: 3600, Luxury: 2800, Total: 8200},
	}
}

// Notifications returns the demo notifications in creation order.
func Notifications() []domain.Notification {
	john, sarah := domain.UserID("1"), domain.UserID("2")
	return []domain.Notification{
		{
			ID:      "1",
			UserID:  &john,
			Title:   "Subscription Renewal Reminder",
			Message: "Your premium subscription expires in 5 days. Renew now to continue enjoying our services.",
			Type:    domain.NotificationReminder,
			Date:    d("2024-07-05"),
		},
		{
			ID:      "2",
			Title:   "Summer Special Offer",
			Message: "25% off on luxury detailing services this month!",
			Type:    domain.NotificationPromotion,
			Date:    d("2024-07-01"),
			Read:    true,
		},
		{
			ID:      "3",
			UserID:  &sarah,
			Title:   "Appointment Confirmed",
			Message: "Your luxury wash appointment is confirmed for July 12th at 2:00 PM.",
			Type:    domain.NotificationSystem,
			Date:    d("2024-07-03"),
		},
	}
}
