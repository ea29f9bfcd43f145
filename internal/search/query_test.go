package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoster/diskview/internal/image"
)

// sampleForest builds a small hand-made forest with known names, sizes and
// hashes.
func sampleForest() []*image.FileSystemNode {
	base := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)

	dir := func(id uint64, name string) *image.FileSystemNode {
		return &image.FileSystemNode{
			ID: id, Name: name, Kind: image.KindDirectory,
			Children: []*image.FileSystemNode{},
			Meta:     &image.NodeMetadata{ID: id},
		}
	}
	file := func(id uint64, name string, size uint64, md5 string, deleted bool) *image.FileSystemNode {
		return &image.FileSystemNode{
			ID: id, Name: name, Kind: image.KindFile, Size: size,
			ModifiedAt: base.Add(time.Duration(id) * time.Hour),
			Meta:       &image.NodeMetadata{ID: id, Deleted: deleted, MD5: md5, SHA1: "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		}
	}

	root := dir(1, "")
	docs := dir(2, "Documents")
	bin := dir(3, "$Recycle.Bin")

	report := file(4, "report.docx", 1000, "aaaa0000aaaa0000aaaa0000aaaa0000", false)
	reportCopy := file(5, "report-copy.docx", 1000, "aaaa0000aaaa0000aaaa0000aaaa0000", false)
	photo := file(6, "photo.jpg", 2_000_000, "bbbb0000bbbb0000bbbb0000bbbb0000", false)
	ghost := file(7, "secret_report.docx", 500, "cccc0000cccc0000cccc0000cccc0000", true)

	root.Children = append(root.Children, docs, bin)
	docs.Children = append(docs.Children, report, reportCopy, photo)
	bin.Children = append(bin.Children, ghost)

	// Resolve paths the way the hierarchy builder does.
	var assign func(n *image.FileSystemNode, parent string)
	assign = func(n *image.FileSystemNode, parent string) {
		n.Path = parent + "/" + n.Name
		for _, c := range n.Children {
			assign(c, n.Path)
		}
	}
	assign(root, "")

	return []*image.FileSystemNode{root}
}

func newTestEngine() *Engine {
	return NewEngine(Build(sampleForest()))
}

func TestTokenize(t *testing.T) {
	t.Run("SplitsOnSeparatorsAndLowercases", func(t *testing.T) {
		assert.Equal(t,
			[]string{"my", "report", "final", "docx"},
			Tokenize("My report-FINAL.docx"))
	})

	t.Run("SplitsPaths", func(t *testing.T) {
		assert.Equal(t,
			[]string{"users", "alice", "notes", "txt"},
			Tokenize(`/Users\alice/notes.txt`))
	})

	t.Run("DropsEmptyTokens", func(t *testing.T) {
		assert.Empty(t, Tokenize("//__..--"))
		assert.Empty(t, Tokenize(""))
	})
}

func TestIndex(t *testing.T) {
	idx := Build(sampleForest())

	t.Run("LooksUpByNameToken", func(t *testing.T) {
		nodes := idx.Lookup("report")
		require.NotEmpty(t, nodes)

		names := make([]string, 0, len(nodes))
		for _, n := range nodes {
			names = append(names, n.Name)
		}
		assert.Contains(t, names, "report.docx")
		assert.Contains(t, names, "report-copy.docx")
		assert.Contains(t, names, "secret_report.docx")
	})

	t.Run("LookupIsCaseInsensitive", func(t *testing.T) {
		assert.NotEmpty(t, idx.Lookup("REPORT"))
	})

	t.Run("LooksUpByExactHash", func(t *testing.T) {
		node := idx.LookupHash("BBBB0000BBBB0000BBBB0000BBBB0000")
		require.NotNil(t, node)
		assert.Equal(t, "photo.jpg", node.Name)
	})

	t.Run("NodesKeepTreeOrder", func(t *testing.T) {
		nodes := idx.Nodes()
		require.Len(t, nodes, 7)
		assert.Equal(t, uint64(1), nodes[0].ID)
	})
}

func TestSearch(t *testing.T) {
	engine := newTestEngine()

	t.Run("ExactNameOutranksSubstringMatch", func(t *testing.T) {
		results := engine.Search(Options{Query: "report.docx"})
		require.NotEmpty(t, results)

		assert.Equal(t, "report.docx", results[0].Node.Name,
			"the exact-match bonus must dominate ties")
		for _, res := range results[1:] {
			assert.Less(t, res.Score, results[0].Score)
		}
	})

	t.Run("DeletedFileFoundWithExactNameScoresAtLeast30", func(t *testing.T) {
		results := engine.Search(Options{
			Query:          "SECRET_REPORT.DOCX",
			IncludeDeleted: true,
		})

		require.Len(t, results, 1)
		assert.Equal(t, "secret_report.docx", results[0].Node.Name)
		assert.GreaterOrEqual(t, results[0].Score, 30)
	})

	t.Run("DeletedItemsHiddenByDefault", func(t *testing.T) {
		results := engine.Search(Options{Query: "secret_report.docx"})
		assert.Empty(t, results)
	})

	t.Run("CaseSensitiveMatchingIsOptIn", func(t *testing.T) {
		insensitive := engine.Search(Options{Query: "REPORT.docx"})
		assert.NotEmpty(t, insensitive)

		sensitive := engine.Search(Options{Query: "REPORT.docx", CaseSensitive: true})
		assert.Empty(t, sensitive)
	})

	t.Run("PathMatchesNeedOptIn", func(t *testing.T) {
		// "documents" only appears in paths.
		none := engine.Search(Options{Query: "Documents"})
		inPath := engine.Search(Options{Query: "Documents", SearchInPath: true})

		// The directory itself matches by name in both cases; its children
		// only when path search is on.
		assert.Greater(t, len(inPath), len(none))
	})

	t.Run("RegexMatching", func(t *testing.T) {
		results := engine.Search(Options{Query: `^report.*\.docx$`, Regex: true})
		require.Len(t, results, 2)
	})

	t.Run("InvalidRegexFallsBackToLiteral", func(t *testing.T) {
		results := engine.Search(Options{Query: "photo.jpg[", Regex: true})
		assert.Empty(t, results, "literal fallback matches nothing for this pattern")

		// A broken pattern that IS a literal substring still matches.
		results = engine.Search(Options{Query: "photo.jpg", Regex: false})
		assert.NotEmpty(t, results)
	})

	t.Run("FileTypeFilter", func(t *testing.T) {
		results := engine.Search(Options{Query: "report", FileTypes: []string{"docx"}})
		for _, res := range results {
			assert.Contains(t, res.Node.Name, ".docx")
		}

		none := engine.Search(Options{Query: "report", FileTypes: []string{".pdf"}})
		assert.Empty(t, none)
	})

	t.Run("SizeRangeFilter", func(t *testing.T) {
		results := engine.Search(Options{MinSize: 1_500_000})
		require.Len(t, results, 1)
		assert.Equal(t, "photo.jpg", results[0].Node.Name)

		capped := engine.Search(Options{MaxSize: 100})
		for _, res := range capped {
			assert.LessOrEqual(t, res.Node.Size, uint64(100))
		}
	})

	t.Run("HashSubstringSearch", func(t *testing.T) {
		results := engine.Search(Options{HashSubstring: "bbbb0000"})
		require.Len(t, results, 1)
		assert.Equal(t, "photo.jpg", results[0].Node.Name)
		assert.True(t, results[0].HashMatch)
		assert.GreaterOrEqual(t, results[0].Score, 15)
	})

	t.Run("EmptyQueryWithNoFiltersReturnsEverything", func(t *testing.T) {
		results := engine.Search(Options{IncludeDeleted: true})
		assert.Len(t, results, 7)
	})

	t.Run("ResultsOrderedByDescendingScore", func(t *testing.T) {
		results := engine.Search(Options{Query: "report", SearchInPath: true, IncludeDeleted: true})
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
		}
	})
}

// Search runs over an immutable snapshot; building an index must not mutate
// the forest. This is a cheap guard against regressions in Build.
func TestBuildDoesNotMutateForest(t *testing.T) {
	forest := sampleForest()
	before := image.CountNodes(forest)

	_ = Build(forest)

	assert.Equal(t, before, image.CountNodes(forest))
}
