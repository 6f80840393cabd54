package service

import (
	"sort"
	"strings"

	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/flickgrid/internal/domain"
)

// FilterResult is a locally filtered item with match metadata for highlighting
type FilterResult struct {
	Item           domain.ResultItem
	MatchedIndexes []int  // Title character positions that matched
	MatchedTag     string // Set when the item matched on a tag instead of its title
	Score          int
}

// FilterIndex implements sahilm/fuzzy.Source over the active result titles
type FilterIndex struct {
	items       []domain.ResultItem
	lowerTitles []string // Pre-computed lowercase titles
}

// NewFilterIndex indexes items in display order
func NewFilterIndex(items []domain.ResultItem) *FilterIndex {
	idx := &FilterIndex{
		items:       items,
		lowerTitles: make([]string, len(items)),
	}
	for i, item := range items {
		idx.lowerTitles[i] = strings.ToLower(item.Title)
	}
	return idx
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *FilterIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of items (implements fuzzy.Source)
func (idx *FilterIndex) Len() int { return len(idx.items) }

// Filter returns title matches best-first, followed by items that only
// matched on a tag. An empty query returns every item in display order.
func (idx *FilterIndex) Filter(query string) []FilterResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		results := make([]FilterResult, len(idx.items))
		for i, item := range idx.items {
			results[i] = FilterResult{Item: item}
		}
		return results
	}

	matches := fuzzy.FindFrom(query, idx)
	results := make([]FilterResult, 0, len(matches))
	seen := make(map[int]bool, len(matches))
	for _, match := range matches {
		seen[match.Index] = true
		results = append(results, FilterResult{
			Item:           idx.items[match.Index],
			MatchedIndexes: match.MatchedIndexes,
			Score:          match.Score,
		})
	}

	var tagHits []FilterResult
	distances := make(map[string]int)
	for i, item := range idx.items {
		if seen[i] || !item.HasTags() {
			continue
		}
		ranks := fuzzysearch.RankFindFold(query, item.Tags)
		if len(ranks) == 0 {
			continue
		}
		sort.Sort(ranks)
		tagHits = append(tagHits, FilterResult{Item: item, MatchedTag: ranks[0].Target})
		distances[item.ID] = ranks[0].Distance
	}

	// Closest tag first (lower distance is better)
	sort.SliceStable(tagHits, func(i, j int) bool {
		return distances[tagHits[i].Item.ID] < distances[tagHits[j].Item.ID]
	})

	return append(results, tagHits...)
}
