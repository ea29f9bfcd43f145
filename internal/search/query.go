package search

import (
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mkoster/diskview/internal/image"
	"github.com/mkoster/diskview/internal/logger"
)

// Scoring weights. A result's score is the sum of every contributing match:
// occurrences count individually, so a name containing the query twice earns
// the name weight twice.
const (
	scoreNameMatch  = 10
	scorePathMatch  = 5
	scoreHashMatch  = 15
	scoreExactBonus = 20
	scoreFileBonus  = 2
	scoreDeleted    = -1
)

// Options parameterizes one search call.
type Options struct {
	// Query is the literal substring or (with Regex) pattern to match.
	// Empty means "no text predicate": candidates are the whole tree and
	// only the other filters apply.
	Query string

	// CaseSensitive disables the default case-insensitive matching
	CaseSensitive bool

	// Regex interprets Query as a regular expression. An invalid pattern
	// falls back to literal matching for that call; it is never an error.
	Regex bool

	// SearchInPath extends matching from names to full paths
	SearchInPath bool

	// IncludeDeleted keeps deleted items in the result set
	IncludeDeleted bool

	// FileTypes restricts results to the given lowercase extensions (with
	// or without the leading dot); empty means all types
	FileTypes []string

	// MinSize and MaxSize bound the item size in bytes; MaxSize 0 means
	// unbounded
	MinSize uint64
	MaxSize uint64

	// ModifiedAfter and ModifiedBefore bound the modification timestamp;
	// zero values mean unbounded
	ModifiedAfter  time.Time
	ModifiedBefore time.Time

	// HashSubstring is matched case-insensitively against both hash fields
	HashSubstring string
}

// Result is one scored search hit.
type Result struct {
	Node        *image.FileSystemNode
	Score       int
	NameMatches int
	PathMatches int
	HashMatch   bool
}

// Engine evaluates queries against one built index.
type Engine struct {
	index *Index
}

// NewEngine creates an Engine over idx.
func NewEngine(idx *Index) *Engine {
	return &Engine{index: idx}
}

// Search produces scored results ordered by descending score. Ties keep the
// candidates' tree order (the sort is stable; no secondary key is defined).
func (e *Engine) Search(opts Options) []Result {
	candidates := e.selectCandidates(opts)
	matcher := newMatcher(opts)

	var results []Result
	for _, node := range candidates {
		if !passesFilters(node, opts) {
			continue
		}

		res, ok := matcher.evaluate(node, opts)
		if !ok {
			continue
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// selectCandidates picks the nodes worth evaluating.
//
// A literal query uses the inverted index: the candidate set is the union of
// the buckets of the query's tokens, iterated in stable tree order. Regex
// queries cannot be pre-indexed by token and fall back to the full tree, as
// do empty queries (which only make sense combined with filters or a hash
// predicate).
func (e *Engine) selectCandidates(opts Options) []*image.FileSystemNode {
	if opts.Query == "" || opts.Regex {
		return e.index.Nodes()
	}

	member := make(map[uint64]bool)
	for _, tok := range Tokenize(opts.Query) {
		for _, node := range e.index.Lookup(tok) {
			member[node.ID] = true
		}
	}
	if len(member) == 0 {
		return nil
	}

	candidates := make([]*image.FileSystemNode, 0, len(member))
	for _, node := range e.index.Nodes() {
		if member[node.ID] {
			candidates = append(candidates, node)
		}
	}
	return candidates
}

// matcher holds the compiled form of the text predicate.
type matcher struct {
	literal string
	re      *regexp.Regexp
	fold    bool
}

func newMatcher(opts Options) *matcher {
	m := &matcher{literal: opts.Query, fold: !opts.CaseSensitive}

	if opts.Regex && opts.Query != "" {
		pattern := opts.Query
		if m.fold {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			// Fail soft: a malformed pattern degrades to literal matching
			// for this query rather than erroring the search.
			logger.Warn("invalid search pattern %q, matching literally: %v", opts.Query, err)
		} else {
			m.re = re
		}
	}
	return m
}

// count returns the number of occurrences of the predicate in s.
func (m *matcher) count(s string) int {
	if m.re != nil {
		return len(m.re.FindAllStringIndex(s, -1))
	}

	needle := m.literal
	if m.fold {
		s = strings.ToLower(s)
		needle = strings.ToLower(needle)
	}
	if needle == "" {
		return 0
	}
	return strings.Count(s, needle)
}

// evaluate scores a single candidate, reporting whether it belongs in the
// result set at all.
func (m *matcher) evaluate(node *image.FileSystemNode, opts Options) (Result, bool) {
	res := Result{Node: node}

	if opts.Query != "" {
		res.NameMatches = m.count(node.Name)
		if opts.SearchInPath {
			res.PathMatches = m.count(node.Path)
		}
	}

	if opts.HashSubstring != "" && node.Meta != nil {
		needle := strings.ToLower(opts.HashSubstring)
		if strings.Contains(strings.ToLower(node.Meta.MD5), needle) ||
			strings.Contains(strings.ToLower(node.Meta.SHA1), needle) {
			res.HashMatch = true
		}
	}

	// Membership: a text query must match name or path; a hash predicate
	// must match a hash. With neither predicate, every filtered candidate
	// is a member.
	textMember := opts.Query == "" || res.NameMatches > 0 || res.PathMatches > 0
	hashMember := opts.HashSubstring == "" || res.HashMatch
	if opts.Query == "" && opts.HashSubstring == "" {
		textMember, hashMember = true, true
	}
	if !textMember || !hashMember {
		return Result{}, false
	}

	res.Score = res.NameMatches*scoreNameMatch + res.PathMatches*scorePathMatch
	if res.HashMatch {
		res.Score += scoreHashMatch
	}
	if opts.Query != "" && strings.EqualFold(node.Name, opts.Query) {
		res.Score += scoreExactBonus
	}
	if !node.IsContainer() {
		res.Score += scoreFileBonus
	}
	if node.Meta != nil && node.Meta.Deleted {
		res.Score += scoreDeleted
	}

	return res, true
}

// passesFilters applies the non-text predicates.
func passesFilters(node *image.FileSystemNode, opts Options) bool {
	deleted := node.Meta != nil && node.Meta.Deleted
	if deleted && !opts.IncludeDeleted {
		return false
	}

	if len(opts.FileTypes) > 0 {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(node.Name), "."))
		found := false
		for _, t := range opts.FileTypes {
			if strings.ToLower(strings.TrimPrefix(t, ".")) == ext {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if node.Size < opts.MinSize {
		return false
	}
	if opts.MaxSize > 0 && node.Size > opts.MaxSize {
		return false
	}

	if !opts.ModifiedAfter.IsZero() && node.ModifiedAt.Before(opts.ModifiedAfter) {
		return false
	}
	if !opts.ModifiedBefore.IsZero() && node.ModifiedAt.After(opts.ModifiedBefore) {
		return false
	}

	return true
}
