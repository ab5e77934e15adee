package github

import (
	"math"
	"time"
)

// HealthInput is the repository data the health score is computed from.
type HealthInput struct {
	Stars          int
	Forks          int
	OpenIssues     int
	PushedAt       time.Time
	HasDescription bool
	HasLicense     bool
}

// HealthScore rates a repository from 0 to 100 by recent activity (30),
// popularity (30), forks (15), open issue load (15) and documentation (10).
func HealthScore(in HealthInput, now time.Time) float64 {
	var score float64

	if !in.PushedAt.IsZero() {
		age := now.Sub(in.PushedAt)
		switch {
		case age <= 30*24*time.Hour:
			score += 30
		case age <= 90*24*time.Hour:
			score += 20
		case age <= 365*24*time.Hour:
			score += 10
		}
	}

	score += math.Min(math.Log10(float64(in.Stars)+1)/5, 1) * 30
	score += math.Min(math.Log10(float64(in.Forks)+1)/4, 1) * 15

	ratio := float64(in.OpenIssues) / (float64(in.Stars) + 1)
	switch {
	case ratio < 0.01:
		score += 15
	case ratio < 0.05:
		score += 10
	default:
		score += 5
	}

	if in.HasDescription {
		score += 5
	}
	if in.HasLicense {
		score += 5
	}
	return math.Round(score*10) / 10
}
