// internal/github/query.go
package github

import (
	"fmt"
	"regexp"
	"strings"

	custom_errors "dev-leaderboard/internal/errors"
)

const maxUsernameLength = 39

// Older accounts may contain consecutive or trailing hyphens, so only the
// first character is restricted.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*$`)

// ValidateUsername checks that s is a syntactically valid GitHub login.
func ValidateUsername(s string) error {
	if len(s) == 0 || len(s) > maxUsernameLength || !usernamePattern.MatchString(s) {
		return &custom_errors.ErrInvalidUsername{Username: s}
	}
	return nil
}

// RepoIdentifier holds the owner and name of a repository.
type RepoIdentifier struct {
	Owner string
	Name  string
}

func (r RepoIdentifier) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepo parses an 'owner/name' string.
func ParseRepo(s string) (RepoIdentifier, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoIdentifier{}, &custom_errors.ErrInvalidRepoFormat{Repo: s}
	}
	return RepoIdentifier{Owner: parts[0], Name: parts[1]}, nil
}

// SearchQuery builds the q parameter of a GitHub user search.
type SearchQuery struct {
	Text         string
	MinFollowers int
	Location     string
	Language     string
	Org          string
	Type         string
	Sort         string
}

// String renders the free text followed by the qualifiers that are set.
func (q SearchQuery) String() string {
	var parts []string
	if text := strings.TrimSpace(q.Text); text != "" {
		parts = append(parts, text)
	}
	if q.MinFollowers > 0 {
		parts = append(parts, fmt.Sprintf("followers:>%d", q.MinFollowers))
	}
	if q.Location != "" {
		parts = append(parts, quoted("location", q.Location))
	}
	if q.Language != "" {
		parts = append(parts, quoted("language", q.Language))
	}
	if q.Org != "" {
		parts = append(parts, quoted("org", q.Org))
	}
	if q.Type != "" {
		parts = append(parts, "type:"+q.Type)
	}
	if q.Sort != "" {
		parts = append(parts, "sort:"+q.Sort)
	}
	return strings.Join(parts, " ")
}

// IsEmpty reports whether the query would match everything.
func (q SearchQuery) IsEmpty() bool {
	return q.String() == ""
}

func quoted(key, value string) string {
	return key + `:"` + strings.ReplaceAll(strings.TrimSpace(value), `"`, "") + `"`
}
