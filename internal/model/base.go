package model

import (
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
)

// BaseModel common timestamps embedded by every table.
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// NormalizeCourses trims course codes, drops blanks and duplicates, and sorts the result.
// Course lists are sets, so order is not meaningful.
func NormalizeCourses(codes []string) pq.StringArray {
	seen := make(map[string]struct{}, len(codes))
	out := make(pq.StringArray, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ContainsCourse reports whether list holds code exactly.
func ContainsCourse(list []string, code string) bool {
	for _, c := range list {
		if c == code {
			return true
		}
	}
	return false
}
