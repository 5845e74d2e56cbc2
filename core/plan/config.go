package plan

// Config defines planner settings. The default weights and travel heuristic
// reproduce the reference behavior; treat them as tunables only with care,
// scenario expectations depend on them.
type Config struct {
	RatingWeight        float64 `json:"rating_weight"`
	DistanceWeightPerKm float64 `json:"distance_weight_per_km"`
	LoadWeightPerTask   float64 `json:"load_weight_per_task"`
	TravelMinutesPerKm  float64 `json:"travel_minutes_per_km"`
}

// SetDefaults applies the reference weights.
func (c *Config) SetDefaults() {
	if c.RatingWeight == 0 {
		c.RatingWeight = 10
	}
	if c.DistanceWeightPerKm == 0 {
		c.DistanceWeightPerKm = 2
	}
	if c.LoadWeightPerTask == 0 {
		c.LoadWeightPerTask = 5
	}
	if c.TravelMinutesPerKm == 0 {
		c.TravelMinutesPerKm = 3
	}
}
