package image

// Limits bound every loop that walks untrusted on-disk structure.
//
// Each limit is an independent defense: the depth cap and the per-offset
// bounds checks in the tree walker must both hold for traversal to terminate
// on adversarial input, and the scan caps guarantee forward progress when
// entry size fields are corrupt.
type Limits struct {
	// MaxTreeDepth caps recursion depth in the directory index walk.
	// Branches deeper than this are silently abandoned.
	MaxTreeDepth int

	// MaxLeafEntries caps the entries decoded from a single leaf node
	MaxLeafEntries int

	// MaxChildPointers caps the child pointers followed from a single
	// internal node
	MaxChildPointers int

	// MaxScanEntries caps the entries visited in one metadata-region scan
	MaxScanEntries int

	// MinEntryStep is the minimum forward step per metadata entry, applied
	// when a declared entry size is smaller (including zero)
	MinEntryStep int

	// BlockBudget caps the total number of index blocks visited in one
	// traversal, independent of depth
	BlockBudget int
}

// DefaultLimits returns the standard traversal bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxTreeDepth:     10,
		MaxLeafEntries:   100,
		MaxChildPointers: 50,
		MaxScanEntries:   1000,
		MinEntryStep:     128,
		BlockBudget:      4096,
	}
}

// sanitize replaces non-positive fields with defaults so a partially
// populated Limits from configuration cannot disable a defense.
func (l Limits) sanitize() Limits {
	def := DefaultLimits()
	if l.MaxTreeDepth <= 0 {
		l.MaxTreeDepth = def.MaxTreeDepth
	}
	if l.MaxLeafEntries <= 0 {
		l.MaxLeafEntries = def.MaxLeafEntries
	}
	if l.MaxChildPointers <= 0 {
		l.MaxChildPointers = def.MaxChildPointers
	}
	if l.MaxScanEntries <= 0 {
		l.MaxScanEntries = def.MaxScanEntries
	}
	if l.MinEntryStep <= 0 {
		l.MinEntryStep = def.MinEntryStep
	}
	if l.BlockBudget <= 0 {
		l.BlockBudget = def.BlockBudget
	}
	return l
}
