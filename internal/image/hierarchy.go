package image

// BuildHierarchy converts the flat, identifier-keyed record store into a
// forest of FileSystemNodes.
//
// The build is arena-style and order-independent: records may arrive in any
// order (children before parents included), so it runs in three passes over
// the store's stable insertion order:
//
//  1. Materialize one node per record. Directory records get a non-nil,
//     empty Children slice; file records get nil Children (the nil/empty
//     distinction is meaningful to consumers).
//  2. Link parentage. A record is a root when its parent identifier is 0,
//     refers to itself, or does not resolve in the store — unresolvable
//     parents promote the record to a root rather than dropping it.
//  3. Recover parent-identifier cycles. Records whose parent chain loops
//     (2 -> 3 -> 2) link into each other in pass 2 without any member
//     becoming a root, leaving the whole component unreachable. The first
//     unreached member in insertion order is detached from its parent and
//     promoted to a root, which breaks the cycle and pulls the rest of the
//     component back in under it.
//  4. Assign paths top-down from the roots, so a parent's path is always
//     materialized before its children's ("/" + name for roots, parent path
//     + "/" + name below).
func BuildHierarchy(store *RecordStore) []*FileSystemNode {
	records := store.All()
	nodes := make(map[uint64]*FileSystemNode, len(records))

	for _, rec := range records {
		node := &FileSystemNode{
			ID:         rec.ID,
			Name:       rec.Name,
			Kind:       KindFile,
			Size:       rec.Size,
			CreatedAt:  rec.CreatedAt,
			ModifiedAt: rec.ModifiedAt,
			AccessedAt: rec.AccessedAt,
			Meta: &NodeMetadata{
				ID:            rec.ID,
				ParentID:      rec.ParentID,
				Attributes:    rec.Attributes,
				Deleted:       rec.IsDeleted,
				MD5:           rec.MD5,
				SHA1:          rec.SHA1,
				ContentDigest: rec.ContentDigest,
				Block:         rec.Block,
				EntryIndex:    rec.EntryIndex,
			},
		}
		if rec.IsDirectory {
			node.Kind = KindDirectory
			node.Children = []*FileSystemNode{}
		}
		nodes[rec.ID] = node
	}

	var roots []*FileSystemNode
	for _, rec := range records {
		node := nodes[rec.ID]

		if rec.ParentID == 0 || rec.ParentID == rec.ID {
			roots = append(roots, node)
			continue
		}

		parent, ok := nodes[rec.ParentID]
		if !ok || !parent.IsContainer() {
			// Orphan promotion: an unresolvable (or non-container) parent
			// makes the record a root, never a dropped node.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	reached := make(map[uint64]bool, len(nodes))
	var mark func(n *FileSystemNode)
	mark = func(n *FileSystemNode) {
		if reached[n.ID] {
			return
		}
		reached[n.ID] = true
		for _, child := range n.Children {
			mark(child)
		}
	}
	for _, root := range roots {
		mark(root)
	}

	for _, rec := range records {
		if reached[rec.ID] {
			continue
		}
		// Still unreached after rooting means the record sits in a
		// parent-identifier cycle: every member got linked under another
		// member in pass 2. Detach this one from its parent (the back-edge)
		// and promote it; marking then absorbs the rest of the component.
		node := nodes[rec.ID]
		parent := nodes[rec.ParentID]
		parent.Children = detachChild(parent.Children, node)
		roots = append(roots, node)
		mark(node)
	}

	var assign func(n *FileSystemNode, parentPath string)
	assign = func(n *FileSystemNode, parentPath string) {
		n.Path = parentPath + "/" + n.Name
		for _, child := range n.Children {
			assign(child, n.Path)
		}
	}
	for _, root := range roots {
		assign(root, "")
	}

	return roots
}

// detachChild removes node from children, preserving order.
func detachChild(children []*FileSystemNode, node *FileSystemNode) []*FileSystemNode {
	for i, child := range children {
		if child == node {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}
