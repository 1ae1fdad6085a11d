// internal/ranking/ranking.go
package ranking

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"dev-leaderboard/internal/model"
)

const (
	// DefaultPerPage is the leaderboard page size when the caller gives none.
	DefaultPerPage = 9
	// MaxPerPage bounds the leaderboard page size.
	MaxPerPage = 100
)

// TotalPages returns ceil(total / perPage).
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// MaxOffset is the largest offset handed to a store. Stores narrow offsets to
// int32.
const MaxOffset = math.MaxInt32

// Offset returns the number of records before the first record of page,
// capped at MaxOffset. Pages are 1-based.
func Offset(page, perPage int) int {
	if page < 1 || perPage < 1 {
		return 0
	}
	if page-1 > MaxOffset/perPage {
		return MaxOffset
	}
	return (page - 1) * perPage
}

// AssignPageRanks numbers an already score-sorted page, continuing from the
// records on earlier pages.
func AssignPageRanks(devs []model.Developer, page, perPage int) {
	start := Offset(page, perPage)
	for i := range devs {
		devs[i].Rank = start + i + 1
	}
}

// GlobalRank converts the number of developers with a strictly greater score
// into a 1-based rank.
func GlobalRank(higher int64) int {
	return int(higher) + 1
}

// NewPage builds the listing envelope and numbers its developers.
func NewPage(devs []model.Developer, total int64, page, perPage int) model.LeaderboardPage {
	if devs == nil {
		devs = []model.Developer{}
	}
	AssignPageRanks(devs, page, perPage)
	return model.LeaderboardPage{
		Developers:  devs,
		TotalCount:  total,
		CurrentPage: page,
		PerPage:     perPage,
		TotalPages:  TotalPages(total, perPage),
	}
}

// Summarize describes the score distribution. An empty input yields a zero summary.
func Summarize(scores []int) (model.ScoreSummary, error) {
	if len(scores) == 0 {
		return model.ScoreSummary{}, nil
	}
	data := stats.LoadRawData(scores)

	mean, err := stats.Mean(data)
	if err != nil {
		return model.ScoreSummary{}, fmt.Errorf("mean: %w", err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return model.ScoreSummary{}, fmt.Errorf("median: %w", err)
	}
	p90, err := stats.PercentileNearestRank(data, 90)
	if err != nil {
		return model.ScoreSummary{}, fmt.Errorf("p90: %w", err)
	}
	highest, err := stats.Max(data)
	if err != nil {
		return model.ScoreSummary{}, fmt.Errorf("max: %w", err)
	}

	return model.ScoreSummary{
		Count:  len(scores),
		Mean:   mean,
		Median: median,
		P90:    p90,
		Max:    highest,
	}, nil
}
