package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"

	"github.com/mmcdole/juke/internal/domain"
)

// Match is a filter hit with the rune positions that matched, for highlighting
type Match struct {
	Index          int   // Index in the source slice
	Score          int   // Higher is better
	MatchedIndexes []int // Matched character positions in the title
}

// titleSource implements sahilm/fuzzy.Source over pre-lowered titles
type titleSource []string

func (t titleSource) String(i int) string { return t[i] }
func (t titleSource) Len() int            { return len(t) }

// Filter fuzzy-matches query against titles and returns hits best-first.
// Matching is case-insensitive. An empty query returns nil.
func Filter(query string, titles []string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	lower := make(titleSource, len(titles))
	for i, t := range titles {
		lower[i] = strings.ToLower(t)
	}

	results := sfuzzy.FindFrom(strings.ToLower(query), lower)
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			Index:          r.Index,
			Score:          r.Score,
			MatchedIndexes: r.MatchedIndexes,
		}
	}
	return matches
}

// Rank returns the indexes of titles that contain query's characters in
// order (case- and diacritic-insensitive), closest match first. Ties keep
// source order.
func Rank(query string, titles []string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	ranks := fuzzy.RankFindNormalizedFold(query, titles)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]int, len(ranks))
	for i, r := range ranks {
		out[i] = r.OriginalIndex
	}
	return out
}

// SongTitles returns the searchable "artist title album" string of each song
func SongTitles(songs []domain.Song) []string {
	titles := make([]string, len(songs))
	for i, s := range songs {
		titles[i] = strings.TrimSpace(s.Artist + " " + s.Title + " " + s.Album)
	}
	return titles
}
