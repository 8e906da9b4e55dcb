package produto

import (
	"sort"
	"strconv"
	"strings"
)

// SortOption selects one of the browse page orderings. The zero value is
// "no ordering".
type SortOption string

const (
	SortNone           SortOption = ""
	SortExpirationDate SortOption = "date"
	SortReleaseTime    SortOption = "time"
	SortProximity      SortOption = "proximity"
)

// FilterBySearch returns the listings whose name, description or pickup
// info contains query, compared case-insensitively. Accented characters
// match literally only. A blank or whitespace-only query returns the input
// slice unchanged.
func FilterBySearch(produtos []Produto, query string) []Produto {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return produtos
	}

	var out []Produto
	for _, p := range produtos {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.PickupInfo), q) {
			out = append(out, p)
		}
	}
	return out
}

// SortBy returns a sorted copy of produtos. Sorts are stable: ties keep
// their prior relative order.
//
// SortReleaseTime compares only the leading integer of the free-text
// release label, so "2 horas" sorts before "30 minutos" even though the
// latter is the shorter real duration. Known limitation of the label
// format, kept on purpose.
//
// SortProximity is a placeholder: the data model carries no coordinates,
// so it returns the input order rather than inventing a distance.
func SortBy(produtos []Produto, option SortOption) []Produto {
	out := make([]Produto, len(produtos))
	copy(out, produtos)

	switch option {
	case SortExpirationDate:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ExpirationDate.Before(out[j].ExpirationDate)
		})
	case SortReleaseTime:
		sort.SliceStable(out, func(i, j int) bool {
			return releaseMagnitude(out[i].ReleaseTime) < releaseMagnitude(out[j].ReleaseTime)
		})
	}
	return out
}

// releaseMagnitude parses the leading digits of a release-time label.
// Unparsable labels count as 0.
func releaseMagnitude(label string) int {
	label = strings.TrimSpace(label)
	i := 0
	for i < len(label) && label[i] >= '0' && label[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0
	}
	n, err := strconv.Atoi(label[:i])
	if err != nil {
		return 0
	}
	return n
}
