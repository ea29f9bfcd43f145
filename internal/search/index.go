// Package search provides the inverted-index lookup, scored query engine and
// analytic queries over a reconstructed file-system forest.
//
// The forest is an immutable snapshot produced by the image pipeline; the
// index never mutates it. Indexes are built wholesale per forest and rebuilt
// wholesale when the input changes — there is no incremental update.
package search

import (
	"strings"

	"github.com/mkoster/diskview/internal/image"
)

// tokenSeparators are the characters (besides whitespace) that split names
// and paths into index tokens.
const tokenSeparators = "-_./\\"

// Index maps lowercase tokens to the nodes whose name or path contains them,
// plus exact (case-insensitive) hash lookups.
type Index struct {
	tokens map[string][]*image.FileSystemNode
	byHash map[string]*image.FileSystemNode

	// nodes is the full flat list in tree (pre-order) order; it doubles as
	// the stable iteration order for candidate selection
	nodes []*image.FileSystemNode
}

// Tokenize splits s on whitespace and the token separators, lowercases the
// pieces and drops empty ones.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' ||
			strings.ContainsRune(tokenSeparators, r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

// Build constructs the index over every node reachable from roots.
//
// Each node is inserted under every token of its name and its path; a node
// appearing under many tokens (and one token mapping to many nodes) is
// expected. File hashes additionally get exact-match entries.
func Build(roots []*image.FileSystemNode) *Index {
	idx := &Index{
		tokens: make(map[string][]*image.FileSystemNode),
		byHash: make(map[string]*image.FileSystemNode),
		nodes:  image.CollectNodes(roots),
	}

	for _, node := range idx.nodes {
		seen := make(map[string]bool)
		for _, tok := range Tokenize(node.Name) {
			if !seen[tok] {
				seen[tok] = true
				idx.tokens[tok] = append(idx.tokens[tok], node)
			}
		}
		for _, tok := range Tokenize(node.Path) {
			if !seen[tok] {
				seen[tok] = true
				idx.tokens[tok] = append(idx.tokens[tok], node)
			}
		}

		if node.Meta != nil {
			if node.Meta.MD5 != "" {
				idx.byHash[strings.ToLower(node.Meta.MD5)] = node
			}
			if node.Meta.SHA1 != "" {
				idx.byHash[strings.ToLower(node.Meta.SHA1)] = node
			}
		}
	}

	return idx
}

// Lookup returns the nodes indexed under a token (matched case-insensitively).
func (idx *Index) Lookup(token string) []*image.FileSystemNode {
	return idx.tokens[strings.ToLower(token)]
}

// LookupHash returns the node carrying exactly the given hash, or nil.
func (idx *Index) LookupHash(hash string) *image.FileSystemNode {
	return idx.byHash[strings.ToLower(hash)]
}

// Nodes returns the full flat node list in tree order.
func (idx *Index) Nodes() []*image.FileSystemNode {
	return idx.nodes
}
