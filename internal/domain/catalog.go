package domain

// washTypes lists the bookable wash types per service tier.
var washTypes = map[Tier][]string{
	TierBasic:   {"Exterior Wash", "Basic Interior", "Quick Wash"},
	TierPremium: {"Exterior & Interior", "Premium Detailing", "Eco-Friendly Premium"},
	TierLuxury:  {"Full Detailing", "Luxury Complete", "Paint Protection"},
}

// TimeSlots are the bookable appointment start times.
var TimeSlots = []string{
	"8:00 AM", "9:00 AM", "10:00 AM", "11:00 AM",
	"12:00 PM", "1:00 PM", "2:00 PM", "3:00 PM",
	"4:00 PM", "5:00 PM", "6:00 PM",
}

// FeedbackServiceTypes are the service labels a customer can rate.
var FeedbackServiceTypes = []string{
	"Basic Wash",
	"Premium Clean",
	"Luxury Detailing",
	"Exterior Wash",
	"Interior Cleaning",
	"Full Service",
}

// WashTypesFor returns the wash types offered for a tier.
func WashTypesFor(t Tier) []string {
	return append([]string(nil), washTypes[t]...)
}

// IsWashTypeFor reports whether washType is offered for tier t.
func IsWashTypeFor(t Tier, washType string) bool {
	return containsString(washTypes[t], washType)
}

func IsTimeSlot(s string) bool { return containsString(TimeSlots, s) }

func IsFeedbackServiceType(s string) bool { return containsString(FeedbackServiceTypes, s) }

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
