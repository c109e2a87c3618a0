package seeder

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Typed views of the JSON arrays embedded in the tabular cells.

type genreEntry struct {
	Name string `json:"name"`
}

type castMember struct {
	Name  string `json:"name"`
	Order *int   `json:"order"`
}

type crewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// castOrderSentinel sorts cast members without an explicit order after
// every member that has one
const castOrderSentinel = int(^uint(0) >> 1)

func parseGenreList(raw string) ([]genreEntry, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var entries []genreEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseCastList(raw string) ([]castMember, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var entries []castMember
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseCrewList(raw string) ([]crewMember, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var entries []crewMember
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// directorName returns the name of the first crew entry whose job is
// "Director". Array order is preserved; first match wins. The boolean is
// false when no director is present or the matched name is blank.
func directorName(crew []crewMember) (string, bool) {
	for _, member := range crew {
		if member.Job != "Director" {
			continue
		}
		name := strings.TrimSpace(member.Name)
		if name == "" {
			return "", false
		}
		return name, true
	}
	return "", false
}

// castSummary condenses a cast list to the first limit names ordered by
// billing. Members without an explicit order sort after all explicit
// orders; ties keep source array order.
func castSummary(cast []castMember, limit int) string {
	if len(cast) == 0 || limit <= 0 {
		return ""
	}

	sorted := make([]castMember, len(cast))
	copy(sorted, cast)
	sort.SliceStable(sorted, func(i, j int) bool {
		return billingOrder(sorted[i]) < billingOrder(sorted[j])
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	names := make([]string, 0, len(sorted))
	for _, member := range sorted {
		names = append(names, member.Name)
	}
	return strings.Join(names, ", ")
}

func billingOrder(member castMember) int {
	if member.Order == nil {
		return castOrderSentinel
	}
	return *member.Order
}

// releaseYear extracts the leading four-digit year from a year-first,
// hyphen-delimited date ("1999-07-14"). Missing or unparseable dates
// fall back to the provided default.
func releaseYear(date string, fallback int) int {
	segment, _, _ := strings.Cut(strings.TrimSpace(date), "-")
	if len(segment) != 4 {
		return fallback
	}
	year, err := strconv.Atoi(segment)
	if err != nil {
		return fallback
	}
	return year
}
