package domain

// Revenue is one month of the append-only revenue series.
type Revenue struct {
	Month   string // YYYY-MM
	Basic   float64
	Premium float64
	Luxury  float64
	Total   float64
}
