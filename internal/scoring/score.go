// internal/scoring/score.go
package scoring

import "dev-leaderboard/internal/model"

// Weights applied to each stat when computing a developer's score.
const (
	StarWeight         = 4
	ForkWeight         = 2
	WeeklyCommitWeight = 3
	FollowerWeight     = 1
)

// Score computes the leaderboard score from aggregated stats.
// Repository and gist counts do not contribute.
func Score(s model.Stats) int {
	return s.TotalStars*StarWeight +
		s.TotalForks*ForkWeight +
		s.WeeklyCommits*WeeklyCommitWeight +
		s.TotalFollowers*FollowerWeight
}
