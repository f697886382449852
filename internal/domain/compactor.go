package domain

import "strings"

const (
	// maxTitlesPerSection bounds how many titles one section contributes to
	// the compacted snapshot.
	maxTitlesPerSection = 20

	// UnclassifiedSection is the bucket for articles without a section label.
	UnclassifiedSection = "unclassified"
)

// ContextCompactor turns a raw article batch into a compact text
// representation sized for prompt budgets: one line per section, formatted as
// [section]title1|title2|..., sections in first-appearance order. Title plus
// section is enough signal for the analysis tasks while cutting payload size
// by an order of magnitude compared to full article JSON.
type ContextCompactor struct{}

// NewContextCompactor creates a compactor (stateless).
func NewContextCompactor() ContextCompactor {
	return ContextCompactor{}
}

// Compact is a pure transform: identical input yields byte-identical output.
func (ContextCompactor) Compact(articles []Article) string {
	order := make([]string, 0, 8)
	bySection := make(map[string][]string, 8)

	for _, a := range articles {
		section := a.Section
		if section == "" {
			section = UnclassifiedSection
		}
		titles, seen := bySection[section]
		if !seen {
			order = append(order, section)
		}
		if len(titles) < maxTitlesPerSection {
			bySection[section] = append(titles, a.Title)
		}
	}

	var sb strings.Builder
	for i, section := range order {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteByte('[')
		sb.WriteString(section)
		sb.WriteByte(']')
		sb.WriteString(strings.Join(bySection[section], "|"))
	}
	return sb.String()
}
