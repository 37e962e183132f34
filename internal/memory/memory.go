// Package memory stores what a user said and recalls related statements.
//
// Recall scores stored records against the query with token-set Jaccard
// similarity. Matches are ordered by score, newest first on ties.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// DefaultRecallLimit is used when a Query carries no positive limit.
const DefaultRecallLimit = 10

var (
	ErrEmptyUser    = errors.New("user id is required")
	ErrEmptyContent = errors.New("content is required")
)

// Record is one remembered statement. Stores assign an ID when it is empty.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Query selects records for recall.
type Query struct {
	UserID    string
	Text      string
	Limit     int
	Threshold float64
	// ExcludeID leaves one record out of the ranking, typically the
	// statement that was just written for this query.
	ExcludeID string
}

// Match is a recalled record with its similarity to the query.
type Match struct {
	Record
	Score float64
}

// Store persists records and recalls them by similarity.
type Store interface {
	Write(ctx context.Context, rec Record) error
	Recall(ctx context.Context, q Query) ([]Match, error)
	Close() error
}

// BackendError reports that the store itself could not be reached or
// answered with a failure. Callers may degrade to recalling nothing.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsBackendError reports whether err came from the storage backend.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// Summarize returns the content of the best match, or "" when there is none.
func Summarize(matches []Match) string {
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Content
}

func validateRecord(rec Record) error {
	if strings.TrimSpace(rec.UserID) == "" {
		return ErrEmptyUser
	}
	if strings.TrimSpace(rec.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// prepare fills in the ID and creation time of a record about to be stored.
func prepare(rec Record, now func() time.Time) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now()
	}
	return rec
}

// rank scores records (oldest first) against q.
func rank(records []Record, q Query) []Match {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultRecallLimit
	}

	query := tokenSet(q.Text)
	matches := make([]Match, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if q.ExcludeID != "" && records[i].ID == q.ExcludeID {
			continue
		}
		score := jaccard(query, tokenSet(records[i].Content))
		if score == 0 || score < q.Threshold {
			continue
		}
		matches = append(matches, Match{Record: records[i], Score: score})
	}

	// stable sort keeps newest first among equal scores
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
