// internal/scoring/badges.go
package scoring

import "dev-leaderboard/internal/model"

// BadgeKind identifies one entry of the fixed badge catalog.
type BadgeKind int

const (
	StarRank BadgeKind = iota
	CommitKing
	GistMaster
	WorldCoder
	TeamPlayer
)

// Thresholds for the badge rules. Each rule is a strict comparison except
// WorldCoder, which is inclusive.
const (
	StarRankMinStars       = 500
	CommitKingMinCommits   = 20
	GistMasterMinGists     = 5
	WorldCoderMinLanguages = 3
)

// Input is everything the badge rules look at.
type Input struct {
	Stats         model.Stats
	Languages     []string
	Organizations []model.Organization
}

type definition struct {
	id          string
	emoji       string
	title       string
	explanation string
	earned      func(Input) bool
}

var catalog = [...]definition{
	StarRank: {
		id:          "star-rank",
		emoji:       "🌟",
		title:       "Star Rank",
		explanation: "Awarded for achieving over 500 stars on repositories.",
		earned:      func(in Input) bool { return in.Stats.TotalStars > StarRankMinStars },
	},
	CommitKing: {
		id:          "commit-king",
		emoji:       "👑",
		title:       "Commit King",
		explanation: "Recognized for making over 20 commits in the last week.",
		earned:      func(in Input) bool { return in.Stats.WeeklyCommits > CommitKingMinCommits },
	},
	GistMaster: {
		id:          "gist-master",
		emoji:       "📜",
		title:       "Gist Master",
		explanation: "Awarded for creating more than 5 public gists.",
		earned:      func(in Input) bool { return in.Stats.PublicGistsCount > GistMasterMinGists },
	},
	WorldCoder: {
		id:          "world-coder",
		emoji:       "🌍",
		title:       "World Coder",
		explanation: "Proficient in 3 or more programming languages.",
		earned:      func(in Input) bool { return len(in.Languages) >= WorldCoderMinLanguages },
	},
	TeamPlayer: {
		id:          "team-player",
		emoji:       "🤝",
		title:       "Team Player",
		explanation: "Contributes as a member of one or more GitHub organizations.",
		earned:      func(in Input) bool { return len(in.Organizations) > 0 },
	},
}

// Kinds lists every badge kind in evaluation order.
func Kinds() []BadgeKind {
	kinds := make([]BadgeKind, len(catalog))
	for i := range catalog {
		kinds[i] = BadgeKind(i)
	}
	return kinds
}

// Badge returns the snapshot stored on a profile for this kind.
func (k BadgeKind) Badge() model.Badge {
	d := catalog[k]
	return model.Badge{ID: d.id, Emoji: d.emoji, Title: d.title, Explanation: d.explanation}
}

// ID returns the stable identifier of the kind.
func (k BadgeKind) ID() string {
	return catalog[k].id
}

func (k BadgeKind) String() string {
	return catalog[k].title
}

// Earned evaluates the kind's rule.
func (k BadgeKind) Earned(in Input) bool {
	return catalog[k].earned(in)
}

// Catalog returns every badge definition in evaluation order.
func Catalog() []model.Badge {
	badges := make([]model.Badge, 0, len(catalog))
	for _, k := range Kinds() {
		badges = append(badges, k.Badge())
	}
	return badges
}

// Lookup resolves a badge kind by identifier.
func Lookup(id string) (BadgeKind, bool) {
	for _, k := range Kinds() {
		if k.ID() == id {
			return k, true
		}
	}
	return 0, false
}

// Award evaluates every rule independently and returns the earned badges in
// catalog order. The result is never nil.
func Award(in Input) []model.Badge {
	awarded := make([]model.Badge, 0, len(catalog))
	for _, k := range Kinds() {
		if k.Earned(in) {
			awarded = append(awarded, k.Badge())
		}
	}
	return awarded
}

// Titles returns the titles of the given badges.
func Titles(badges []model.Badge) []string {
	titles := make([]string, len(badges))
	for i, b := range badges {
		titles[i] = b.Title
	}
	return titles
}
