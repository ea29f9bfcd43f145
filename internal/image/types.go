package image

import (
	"time"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
)

// NodeKind classifies a FileSystemNode.
type NodeKind string

const (
	KindFile      NodeKind = "file"
	KindDirectory NodeKind = "directory"
	KindPartition NodeKind = "partition"
	KindImage     NodeKind = "image"
)

// VolumeGeometry describes the volume layout read from the superblock, or a
// synthesized stand-in when the superblock is absent or unreadable.
//
// Created once per parse and immutable afterwards.
type VolumeGeometry struct {
	// Signature is the 4-byte magic token found in the header
	Signature string

	// Version is the on-disk format revision
	Version uint32

	// BlockSize is the allocation unit in bytes; always > 0 and a power of two
	BlockSize uint32

	// SectorsPerBlock and BytesPerSector describe the physical layout
	SectorsPerBlock uint32
	BytesPerSector  uint32

	// TotalBlocks is the number of addressable blocks in the volume
	TotalBlocks uint64

	// RootDirBlock points at the root of the directory index tree
	RootDirBlock uint64

	// MetadataBlock points at the start of the flat metadata region
	MetadataBlock uint64

	// CheckpointBlock points at the most recent checkpoint
	CheckpointBlock uint64

	// VolumeID is the 128-bit volume identifier
	VolumeID uuid.UUID

	// CreatedAt and MountedAt are the volume lifecycle timestamps
	CreatedAt time.Time
	MountedAt time.Time

	// Synthesized is true when the geometry was not read from the image but
	// generated as a fallback. Downstream stages gate real-structure reads on
	// this flag.
	Synthesized bool
}

// FileRecord is the flat, identifier-keyed descriptor of one file or
// directory as decoded from the metadata region or the directory index.
//
// Records are owned by the RecordStore and mutated only during the scan and
// fingerprint stages; after the hierarchy is built they are treated as
// immutable.
type FileRecord struct {
	// ID uniquely identifies the record within the volume
	ID uint64

	// ParentID is the identifier of the containing directory; 0 marks a root
	// (or an orphan, which is promoted to a root)
	ParentID uint64

	// Name is the decoded UTF-16 name
	Name string

	// Size is the file size in bytes; 0 for directories
	Size uint64

	// Attributes is the raw attribute bitmask
	Attributes uint32

	// IsDirectory and IsDeleted are decoded from Attributes. They are
	// independent flags: a deleted directory carries both.
	IsDirectory bool
	IsDeleted   bool

	// CreatedAt, ModifiedAt and AccessedAt are the record timestamps
	CreatedAt  time.Time
	ModifiedAt time.Time
	AccessedAt time.Time

	// MD5 and SHA1 are fixed-length hex fingerprints attached by the
	// fingerprint stage; empty until then and for directories
	MD5  string
	SHA1 string

	// ContentDigest is the canonical digest of resolvable content bytes.
	// Empty when the fingerprint stage fell back to placeholder hashes.
	ContentDigest digest.Digest

	// Block and EntryIndex record where in the image the record was decoded
	// from (tree-locality hints; 0/-1 for synthetic records)
	Block      uint64
	EntryIndex int
}

// NodeMetadata is the optional low-level detail block attached to a
// FileSystemNode for consumers that need more than the presentation fields.
type NodeMetadata struct {
	ID            uint64
	ParentID      uint64
	Attributes    uint32
	Deleted       bool
	MD5           string
	SHA1          string
	ContentDigest digest.Digest
	Block         uint64
	EntryIndex    int
}

// FileSystemNode is the externally visible tree node built from a FileRecord.
//
// Children is non-nil (possibly empty) exactly when the node is a container
// kind; a nil Children slice means "not a container", not "no children".
type FileSystemNode struct {
	ID         uint64
	Name       string
	Kind       NodeKind
	Size       uint64
	CreatedAt  time.Time
	ModifiedAt time.Time
	AccessedAt time.Time

	// Path is the resolved absolute path: "/" + name for roots, parent path
	// + "/" + name otherwise
	Path string

	Children []*FileSystemNode

	Meta *NodeMetadata
}

// IsContainer reports whether the node can hold children.
func (n *FileSystemNode) IsContainer() bool {
	return n.Children != nil
}

// CollectNodes flattens a forest into a pre-order depth-first list containing
// every visited node regardless of kind.
func CollectNodes(roots []*FileSystemNode) []*FileSystemNode {
	var out []*FileSystemNode

	var visit func(n *FileSystemNode)
	visit = func(n *FileSystemNode) {
		out = append(out, n)
		for _, child := range n.Children {
			visit(child)
		}
	}

	for _, root := range roots {
		visit(root)
	}
	return out
}

// CountNodes returns the number of nodes in the forest via full recursive
// descent.
func CountNodes(roots []*FileSystemNode) int {
	count := 0
	var visit func(n *FileSystemNode)
	visit = func(n *FileSystemNode) {
		count++
		for _, child := range n.Children {
			visit(child)
		}
	}
	for _, root := range roots {
		visit(root)
	}
	return count
}
