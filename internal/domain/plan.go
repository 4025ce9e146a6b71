package domain

import "math"

// Plan is a read-only catalog entry for a subscription tier.
type Plan struct {
	Tier         Tier
	Name         string
	MonthlyPrice float64
	Features     []string
}

// PlanQuote is the price of a plan for a given subscription duration.
type PlanQuote struct {
	Plan     Plan
	Duration Duration
	Months   int
	// Total is the amount charged for the whole duration, rounded to cents.
	Total float64
	// MonthlyEquivalent is Total spread over Months, rounded to cents.
	MonthlyEquivalent float64
	// Savings is the undiscounted price minus Total, rounded to cents.
	Savings float64
}

var planCatalog = map[Tier]Plan{
	TierBasic: {
		Tier:         TierBasic,
		Name:         "Basic Wash",
		MonthlyPrice: 29.99,
		Features:     []string{"Exterior wash", "Basic interior cleaning", "Tire cleaning", "1 wash per week"},
	},
	TierPremium: {
		Tier:         TierPremium,
		Name:         "Premium Clean",
		MonthlyPrice: 49.99,
		Features:     []string{"Everything in Basic", "Interior detailing", "Wax protection", "Wheel cleaning", "2 washes per week"},
	},
	TierLuxury: {
		Tier:         TierLuxury,
		Name:         "Luxury Detailing",
		MonthlyPrice: 89.99,
		Features:     []string{"Everything in Premium", "Paint protection", "Leather treatment", "Engine cleaning", "Unlimited washes"},
	},
}

// PlanFor returns the catalog entry for a tier.
func PlanFor(t Tier) (Plan, bool) {
	p, ok := planCatalog[t]
	if !ok {
		return Plan{}, false
	}
	p.Features = append([]string(nil), p.Features...)
	return p, true
}

// Plans returns the full catalog in tier order.
func Plans() []Plan {
	out := make([]Plan, 0, len(Tiers))
	for _, t := range Tiers {
		p, _ := PlanFor(t)
		out = append(out, p)
	}
	return out
}

// Months returns the billing length of a duration.
func (d Duration) Months() int {
	switch d {
	case DurationSixMonth:
		return 6
	case DurationOneYear:
		return 12
	default:
		return 1
	}
}

// DiscountFactor is the flat multiplier applied to the undiscounted price: 10% off six
// months, 20% off a year.
func (d Duration) DiscountFactor() float64 {
	switch d {
	case DurationSixMonth:
		return 0.9
	case DurationOneYear:
		return 0.8
	default:
		return 1
	}
}

// Quote prices the plan for a duration. Unknown durations are priced as 1-month.
func (p Plan) Quote(d Duration) PlanQuote {
	if !d.Valid() {
		d = DurationOneMonth
	}
	months := d.Months()
	full := p.MonthlyPrice * float64(months)
	total := full * d.DiscountFactor()
	return PlanQuote{
		Plan:              p,
		Duration:          d,
		Months:            months,
		Total:             RoundCents(total),
		MonthlyEquivalent: RoundCents(total / float64(months)),
		Savings:           RoundCents(full - total),
	}
}

// RoundCents rounds a currency amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
