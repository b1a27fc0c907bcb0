package service

import (
	"strings"
	"time"

	"bibliomaniacs.org/bookreviews/internal/entity"
)

// secondaryFilter is the in-memory filter tier layered on top of the SQL
// tier: case-insensitive substring search over title, author and reviewer
// name, plus inclusive date_received bounds. Some filter dimensions are not
// supported by the store in all code paths, so this pass stays client-side.
func secondaryFilter(reviews []entity.Review, search, dateFrom, dateTo string) []entity.Review {
	from, hasFrom := parseDateBound(dateFrom, false)
	to, hasTo := parseDateBound(dateTo, true)
	needle := strings.ToLower(strings.TrimSpace(search))

	matched := []entity.Review{}
	for _, r := range reviews {
		if needle != "" && !matchesSearch(&r, needle) {
			continue
		}
		if hasFrom && r.DateReceived.Before(from) {
			continue
		}
		if hasTo && r.DateReceived.After(to) {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

func matchesSearch(r *entity.Review, needle string) bool {
	return strings.Contains(strings.ToLower(r.BookTitle), needle) ||
		strings.Contains(strings.ToLower(r.Author), needle) ||
		strings.Contains(strings.ToLower(r.ReviewerName()), needle)
}

// parseDateBound accepts RFC 3339 timestamps or bare dates. A bare date used
// as an upper bound covers the whole day, keeping the range inclusive.
func parseDateBound(raw string, upper bool) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}
