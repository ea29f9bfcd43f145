package image

import (
	"context"

	"github.com/mkoster/diskview/internal/binread"
	"github.com/mkoster/diskview/internal/logger"
)

// Directory index node layout. A node occupies the start of its block:
//
//	offset  size  field
//	0       2     flags (bit 0: leaf)
//	2       2     key count
//	4       ...   leaf:     entries, each (size u32, file record payload)
//	              internal: keyCount u64 keys, then keyCount+1 u64 child
//	                        block pointers
const (
	nodeHeaderSize = 4
	nodeFlagLeaf   = 0x0001
)

// walkItem is one pending traversal step: a block number and the depth at
// which it was discovered.
type walkItem struct {
	block uint64
	depth int
}

// walkDirectoryIndex traverses the B+Tree rooted at the geometry's root
// directory block, decoding leaf-level file records into the store. It
// returns the number of records inserted.
//
// The index is untrusted and may be corrupt or cyclic, so traversal uses an
// explicit worklist with two independent termination defenses: a depth cap
// carried per item and a total visited-block budget. Exceeding either
// silently abandons the branch; it never fails the parse. Every computed
// byte offset is bounds-checked before use and an out-of-range offset
// terminates that branch only.
//
// The context is checked periodically as a cooperative cancellation point;
// cancellation aside, yields do not change traversal results.
func walkDirectoryIndex(ctx context.Context, r *binread.Reader, geom *VolumeGeometry, store *RecordStore, limits Limits) int {
	if geom.Synthesized {
		return 0
	}

	inserted := 0
	visited := 0
	stack := []walkItem{{block: geom.RootDirBlock, depth: 0}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.depth >= limits.MaxTreeDepth {
			continue
		}
		visited++
		if visited > limits.BlockBudget {
			logger.Warn("directory index traversal exceeded block budget %d, stopping", limits.BlockBudget)
			break
		}
		if visited%32 == 0 && ctx.Err() != nil {
			break
		}

		offset, ok := geom.blockOffset(item.block, r.Len())
		if !ok {
			continue
		}
		flags, err := r.Uint16At(offset)
		if err != nil {
			continue
		}
		keyCount, err := r.Uint16At(offset + 2)
		if err != nil {
			continue
		}

		if flags&nodeFlagLeaf != 0 {
			inserted += walkLeaf(r, geom, store, item.block, offset+nodeHeaderSize, int(keyCount), limits)
			continue
		}

		stack = append(stack, internalChildren(r, geom, offset, int(keyCount), item.depth, limits)...)
	}

	logger.Debug("directory index walk visited %d blocks, inserted %d records", visited, inserted)
	return inserted
}

// walkLeaf decodes size-prefixed file records from a leaf node.
//
// Entry sizes are untrusted: a zero size cannot advance the cursor and an
// oversized one points outside the node, so either ends the leaf scan.
// Records that fail to decode are dropped individually and scanning resumes
// at the next entry boundary.
func walkLeaf(r *binread.Reader, geom *VolumeGeometry, store *RecordStore, block uint64, cursor, keyCount int, limits Limits) int {
	entries := keyCount
	if entries > limits.MaxLeafEntries {
		entries = limits.MaxLeafEntries
	}

	inserted := 0
	for i := range entries {
		entrySize, err := r.Uint32At(cursor)
		if err != nil {
			break
		}
		if entrySize == 0 || entrySize > geom.BlockSize {
			break
		}

		rec, _, err := decodeRecord(r, cursor+4)
		if err == nil {
			rec.Block = block
			rec.EntryIndex = i
			if store.Insert(rec) {
				inserted++
			}
		}

		cursor += 4 + int(entrySize)
	}
	return inserted
}

// internalChildren reads the child block pointers of an internal node and
// returns the in-range ones as worklist items one level deeper.
func internalChildren(r *binread.Reader, geom *VolumeGeometry, offset, keyCount, depth int, limits Limits) []walkItem {
	children := keyCount + 1
	if children > limits.MaxChildPointers {
		children = limits.MaxChildPointers
	}

	// Child pointers sit immediately after the key array.
	base := offset + nodeHeaderSize + keyCount*8

	items := make([]walkItem, 0, children)
	for i := range children {
		ptr, err := r.Uint64At(base + i*8)
		if err != nil {
			break
		}
		if ptr >= geom.TotalBlocks {
			continue
		}
		items = append(items, walkItem{block: ptr, depth: depth + 1})
	}
	return items
}
