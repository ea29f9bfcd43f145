package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeFrom(recs ...*FileRecord) *RecordStore {
	store := NewRecordStore()
	for _, rec := range recs {
		store.Insert(rec)
	}
	return store
}

func dirRecord(id, parent uint64, name string) *FileRecord {
	return &FileRecord{ID: id, ParentID: parent, Name: name, IsDirectory: true, Attributes: attrDirectory}
}

func fileRecord(id, parent uint64, name string, size uint64) *FileRecord {
	return &FileRecord{ID: id, ParentID: parent, Name: name, Size: size}
}

func TestBuildHierarchy(t *testing.T) {
	t.Run("BuildsTreeWithResolvedPaths", func(t *testing.T) {
		roots := BuildHierarchy(storeFrom(
			dirRecord(1, 0, ""),
			dirRecord(2, 1, "Users"),
			fileRecord(3, 2, "notes.txt", 100),
		))

		require.Len(t, roots, 1)
		root := roots[0]
		assert.Equal(t, "/", root.Path)

		require.Len(t, root.Children, 1)
		users := root.Children[0]
		assert.Equal(t, "/Users", users.Path)

		require.Len(t, users.Children, 1)
		assert.Equal(t, "/Users/notes.txt", users.Children[0].Path)
	})

	t.Run("ChildrenPresenceTracksContainerKind", func(t *testing.T) {
		roots := BuildHierarchy(storeFrom(
			dirRecord(1, 0, "empty"),
			fileRecord(2, 0, "plain.bin", 5),
		))

		require.Len(t, roots, 2)
		dir, file := roots[0], roots[1]

		assert.NotNil(t, dir.Children, "directories carry an empty slice, not nil")
		assert.Empty(t, dir.Children)
		assert.Equal(t, KindDirectory, dir.Kind)

		assert.Nil(t, file.Children, "files carry nil, meaning 'not a container'")
		assert.Equal(t, KindFile, file.Kind)
	})

	t.Run("HandlesChildrenArrivingBeforeParents", func(t *testing.T) {
		// Insertion order is child first; the two-pass build must not care.
		roots := BuildHierarchy(storeFrom(
			fileRecord(5, 4, "deep.txt", 1),
			dirRecord(4, 0, "dir"),
		))

		require.Len(t, roots, 1)
		require.Len(t, roots[0].Children, 1)
		assert.Equal(t, "/dir/deep.txt", roots[0].Children[0].Path)
	})

	t.Run("PromotesOrphansToRoots", func(t *testing.T) {
		roots := BuildHierarchy(storeFrom(
			dirRecord(1, 0, "real"),
			fileRecord(7, 999, "orphan.dat", 3), // parent never decoded
		))

		require.Len(t, roots, 2)
		assert.Equal(t, "/orphan.dat", roots[1].Path)
	})

	t.Run("BreaksParentCycleWithoutDroppingRecords", func(t *testing.T) {
		// 2 and 3 name each other as parent; neither can become a root by
		// the ordinary rules, so the first in insertion order is promoted
		// and the back-edge removed.
		roots := BuildHierarchy(storeFrom(
			dirRecord(2, 3, "ying"),
			dirRecord(3, 2, "yang"),
		))

		require.Len(t, roots, 1)
		ying := roots[0]
		assert.Equal(t, "/ying", ying.Path)
		require.Len(t, ying.Children, 1)
		yang := ying.Children[0]
		assert.Equal(t, "/ying/yang", yang.Path)
		assert.Empty(t, yang.Children, "the back-edge must be detached")
		assert.Len(t, CollectNodes(roots), 2)
	})

	t.Run("CycleRecoveryKeepsAttachedSubtree", func(t *testing.T) {
		// A file hanging off a cycle member must survive the promotion.
		roots := BuildHierarchy(storeFrom(
			dirRecord(1, 0, ""),
			dirRecord(2, 3, "a"),
			dirRecord(3, 2, "b"),
			fileRecord(4, 3, "trapped.txt", 9),
		))

		nodes := CollectNodes(roots)
		require.Len(t, nodes, 4)

		paths := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			paths[n.Path] = true
		}
		assert.True(t, paths["/a/b/trapped.txt"])
	})

	t.Run("EveryRecordAppearsExactlyOnce", func(t *testing.T) {
		store := storeFrom(
			dirRecord(1, 0, ""),
			dirRecord(2, 1, "a"),
			dirRecord(3, 1, "b"),
			fileRecord(4, 2, "f1", 1),
			fileRecord(5, 99, "orphan", 1),
			fileRecord(6, 6, "self-parent", 1),
		)

		nodes := CollectNodes(BuildHierarchy(store))

		assert.Len(t, nodes, store.Len())
		seen := make(map[uint64]bool)
		for _, n := range nodes {
			assert.False(t, seen[n.ID], "node %d appears twice", n.ID)
			seen[n.ID] = true
		}
	})

	t.Run("PathInvariantHoldsForWholeForest", func(t *testing.T) {
		roots := BuildHierarchy(storeFrom(
			dirRecord(1, 0, ""),
			dirRecord(2, 1, "Users"),
			dirRecord(3, 2, "alice"),
			fileRecord(4, 3, "a b.txt", 1),
		))

		var check func(n *FileSystemNode, parentPath string)
		check = func(n *FileSystemNode, parentPath string) {
			assert.Equal(t, parentPath+"/"+n.Name, n.Path)
			for _, c := range n.Children {
				check(c, n.Path)
			}
		}
		for _, root := range roots {
			check(root, "")
		}
	})

	t.Run("CopiesFingerprintsIntoMetadata", func(t *testing.T) {
		rec := fileRecord(1, 0, "hashed.bin", 10)
		rec.MD5 = "00112233445566778899aabbccddeeff"
		rec.SHA1 = "00112233445566778899aabbccddeeff00112233"

		roots := BuildHierarchy(storeFrom(rec))
		require.Len(t, roots, 1)
		require.NotNil(t, roots[0].Meta)
		assert.Equal(t, rec.MD5, roots[0].Meta.MD5)
		assert.Equal(t, rec.SHA1, roots[0].Meta.SHA1)
	})
}
