package market

// trendMajority is the share of symbols moving one way that triggers an
// invest or avoid recommendation.
const trendMajority = 0.7

// Actionable summarises snapshots with data. A flat symbol counts as
// downward. It returns false when no snapshot has data.
func Actionable(snapshots []Snapshot) (Summary, bool) {
	var (
		s     Summary
		total float64
	)

	for _, snap := range snapshots {
		if snap.Error != "" {
			continue
		}
		p := Performer{Symbol: snap.Symbol, ChangePercent: snap.ChangePercent}
		if s.TotalAnalyzed == 0 || p.ChangePercent > s.BestPerformer.ChangePercent {
			s.BestPerformer = p
		}
		if s.TotalAnalyzed == 0 || p.ChangePercent < s.WorstPerformer.ChangePercent {
			s.WorstPerformer = p
		}
		if snap.ChangePercent > 0 {
			s.UpwardTrends++
		}
		total += snap.ChangePercent
		s.TotalAnalyzed++
	}

	if s.TotalAnalyzed == 0 {
		return Summary{}, false
	}

	n := float64(s.TotalAnalyzed)
	s.DownwardTrends = s.TotalAnalyzed - s.UpwardTrends
	s.UpwardPercent = float64(s.UpwardTrends) / n * 100
	s.DownwardPercent = float64(s.DownwardTrends) / n * 100
	s.AverageChangePercent = total / n

	switch {
	case float64(s.UpwardTrends)/n >= trendMajority:
		s.Recommendation = RecommendInvest
	case float64(s.DownwardTrends)/n >= trendMajority:
		s.Recommendation = RecommendAvoid
	default:
		s.Recommendation = RecommendHold
	}
	return s, true
}
