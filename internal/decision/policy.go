package decision

import (
	"idea-review-platform/internal/config"
	"idea-review-platform/internal/domain"
	"time"
)

// Policy is the quorum rule deciding when a review stage has accumulated
// enough input for the deputy director to act. A zero threshold disables
// that clause, so each track carries exactly the clauses its deployment
// documents.
type Policy struct {
	// MinReviews: stage decidable once this many reviews exist.
	MinReviews int
	// RolePercent: stage decidable once reviews cover this share of the
	// users holding the stage's reviewer role. 0 disables.
	RolePercent float64
	// StaleAfter: stage decidable once the idea has sat untouched this
	// long, regardless of review count. 0 disables.
	StaleAfter time.Duration
}

// Eligible reports whether any enabled quorum clause is satisfied.
func (p Policy) Eligible(reviews, roleHolders int64, lastUpdate, now time.Time) bool {
	if p.MinReviews > 0 && reviews >= int64(p.MinReviews) {
		return true
	}
	if p.RolePercent > 0 && roleHolders > 0 {
		if float64(reviews) >= p.RolePercent*float64(roleHolders) {
			return true
		}
	}
	if p.StaleAfter > 0 && now.Sub(lastUpdate) > p.StaleAfter {
		return true
	}
	return false
}

// PoliciesFromConfig builds the per-track quorum policies. The idea track
// carries all three clauses; the challenge track is a flat review-count
// rule with no fallbacks.
func PoliciesFromConfig(cfg config.Config) map[domain.Track]Policy {
	return map[domain.Track]Policy{
		domain.TrackIdea: {
			MinReviews:  cfg.QuorumMinReviews,
			RolePercent: cfg.QuorumRolePercent,
			StaleAfter:  cfg.QuorumStaleAfter,
		},
		domain.TrackChallenge: {
			MinReviews: cfg.QuorumMinReviews,
		},
	}
}
