// Package items provides the display pipeline over a persisted action-item
// set: search, priority and completion filters, and display-only sorting.
// Every function returns a new slice; the canonical stored order is never
// mutated.
package items

import (
	"sort"
	"strings"

	"github.com/meetscribe/meetscribe/pkg/models"
)

// SortKey selects the display sort applied after filtering.
type SortKey string

const (
	SortNone     SortKey = ""
	SortPriority SortKey = "priority"
	SortOwner    SortKey = "owner"
	SortDeadline SortKey = "deadline"
)

// ValidSortKey reports whether k names a supported sort.
func ValidSortKey(k SortKey) bool {
	switch k {
	case SortNone, SortPriority, SortOwner, SortDeadline:
		return true
	}
	return false
}

// ViewOptions compose: an item is visible iff it matches the search query
// AND the priority filter AND the completion filter; the visible subset is
// then sorted by Sort.
type ViewOptions struct {
	Query         string
	Priority      string // "all" or empty is a passthrough
	ShowCompleted bool
	Sort          SortKey
}

// View applies the full pipeline and returns the visible subset in display
// order. An empty result is a valid empty state, not an error.
func View(all []*models.ActionItem, opts ViewOptions) []*models.ActionItem {
	visible := Search(all, opts.Query)
	visible = FilterPriority(visible, opts.Priority)
	visible = FilterCompletion(visible, opts.ShowCompleted)
	return Sort(visible, opts.Sort)
}

// Search matches q case-insensitively as a substring of action, owner, or
// deadline. An empty query matches everything.
func Search(all []*models.ActionItem, q string) []*models.ActionItem {
	if q == "" {
		return copyItems(all)
	}

	q = strings.ToLower(q)
	matched := make([]*models.ActionItem, 0, len(all))
	for _, item := range all {
		if strings.Contains(strings.ToLower(item.Action), q) ||
			strings.Contains(strings.ToLower(item.Owner), q) ||
			strings.Contains(strings.ToLower(item.Deadline), q) {
			matched = append(matched, item)
		}
	}
	return matched
}

// FilterPriority keeps items with exactly priority p; "all" or empty passes
// everything through.
func FilterPriority(all []*models.ActionItem, p string) []*models.ActionItem {
	if p == "" || p == "all" {
		return copyItems(all)
	}

	matched := make([]*models.ActionItem, 0, len(all))
	for _, item := range all {
		if string(item.Priority) == p {
			matched = append(matched, item)
		}
	}
	return matched
}

// FilterCompletion excludes completed items when showCompleted is false.
func FilterCompletion(all []*models.ActionItem, showCompleted bool) []*models.ActionItem {
	if showCompleted {
		return copyItems(all)
	}

	matched := make([]*models.ActionItem, 0, len(all))
	for _, item := range all {
		if !item.Completed {
			matched = append(matched, item)
		}
	}
	return matched
}

// Sort orders by the given key: priority by rank (high, medium, low), owner
// and deadline lexicographically. All sorts are stable, so ties keep their
// original relative order. SortNone returns the input order unchanged.
func Sort(all []*models.ActionItem, key SortKey) []*models.ActionItem {
	out := copyItems(all)
	switch key {
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		})
	case SortOwner:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Owner < out[j].Owner
		})
	case SortDeadline:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Deadline < out[j].Deadline
		})
	}
	return out
}

func copyItems(all []*models.ActionItem) []*models.ActionItem {
	out := make([]*models.ActionItem, len(all))
	copy(out, all)
	return out
}
