package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/ports/out/revenuerepo"
	"github.com/aquaclean/carwash-api/internal/ports/out/userrepo"
)

type ModelCount struct {
	Model string
	Count int
}

type Summary struct {
	TotalUsers               int
	ActiveSubscriptions      int
	TotalCars                int
	TotalRevenue             float64
	AverageRating            float64
	PopularModels            []ModelCount
	SubscriptionDistribution map[domain.Tier]int
	RevenueData              []domain.Revenue
}

// PopularCarModels groups cars by "make model", most owned first.
// Ties keep first-seen order walking users, then cars, in collection order.
func PopularCarModels(users []domain.User) []ModelCount {
	idx := map[string]int{}
	var out []ModelCount
	for _, u := range users {
		for _, c := range u.Cars {
			key := c.DisplayModel()
			if i, ok := idx[key]; ok {
				out[i].Count++
				continue
			}
			idx[key] = len(out)
			out = append(out, ModelCount{Model: key, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// SubscriptionDistribution counts active users per tier. Every tier is present.
func SubscriptionDistribution(users []domain.User) map[domain.Tier]int {
	out := make(map[domain.Tier]int, len(domain.Tiers))
	for _, t := range domain.Tiers {
		out[t] = 0
	}
	for _, u := range users {
		if u.Subscription.Status != domain.SubscriptionActive {
			continue
		}
		if _, ok := out[u.Subscription.Tier]; ok {
			out[u.Subscription.Tier]++
		}
	}
	return out
}

// AverageRating is the mean rating across all feedback, rounded to one decimal; 0 without feedback.
func AverageRating(users []domain.User) float64 {
	sum, n := 0, 0
	for _, u := range users {
		for _, f := range u.Feedback {
			sum += f.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*10) / 10
}

func Summarize(users []domain.User, revenue []domain.Revenue) Summary {
	s := Summary{
		TotalUsers:               len(users),
		AverageRating:            AverageRating(users),
		PopularModels:            PopularCarModels(users),
		SubscriptionDistribution: SubscriptionDistribution(users),
		RevenueData:              append([]domain.Revenue(nil), revenue...),
	}
	for _, u := range users {
		if u.Subscription.Status == domain.SubscriptionActive {
			s.ActiveSubscriptions++
		}
		s.TotalCars += len(u.Cars)
	}
	if n := len(revenue); n > 0 {
		s.TotalRevenue = revenue[n-1].Total
	}
	return s
}

// Service computes analytics from the stores on every call.
type Service struct {
	users   userrepo.Repository
	revenue revenuerepo.Repository
}

func NewService(users userrepo.Repository, revenue revenuerepo.Repository) *Service {
	return &Service{users: users, revenue: revenue}
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list users: %w", err)
	}
	rev, err := s.revenue.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list revenue: %w", err)
	}
	return Summarize(users, rev), nil
}
