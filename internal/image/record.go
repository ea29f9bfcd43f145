package image

import (
	"fmt"

	"github.com/mkoster/diskview/internal/binread"
)

// File record layout. Records appear both as metadata-region entries and as
// directory-index leaf entries, always with the same fixed layout:
//
//	offset  size  field
//	0       4     identifier
//	4       4     parent identifier (0 = root/orphan sentinel)
//	8       4     attribute bitmask
//	12      8     size (bytes)
//	20      8     creation timestamp (ticks)
//	28      8     modification timestamp (ticks)
//	36      8     access timestamp (ticks)
//	44      2     name length (UTF-16 code units)
//	46      2*n   name
const recordHeaderSize = 46

// Attribute bitmask positions. The directory bit and the deleted bit are
// independent flags: a deleted directory carries both.
//
// These positions mirror the format this viewer targets; a port to another
// on-disk format replaces them from that format's documentation rather than
// assuming they transfer.
const (
	attrDirectory uint32 = 0x10
	attrDeleted   uint32 = 0x80000000
)

// decodeRecord decodes a file record at an absolute buffer offset.
//
// A record whose name field would read past the buffer is a recoverable
// failure: the caller drops the record and continues at its next computed
// offset. Returns the record and its total encoded length in bytes.
func decodeRecord(r *binread.Reader, off int) (*FileRecord, int, error) {
	id, err := r.Uint32At(off)
	if err != nil {
		return nil, 0, fmt.Errorf("record identifier: %w", err)
	}
	parentID, err := r.Uint32At(off + 4)
	if err != nil {
		return nil, 0, fmt.Errorf("record parent: %w", err)
	}
	attrs, err := r.Uint32At(off + 8)
	if err != nil {
		return nil, 0, fmt.Errorf("record attributes: %w", err)
	}
	size, err := r.Uint64At(off + 12)
	if err != nil {
		return nil, 0, fmt.Errorf("record size: %w", err)
	}
	created, err := r.TimeAt(off + 20)
	if err != nil {
		return nil, 0, fmt.Errorf("record creation time: %w", err)
	}
	modified, err := r.TimeAt(off + 28)
	if err != nil {
		return nil, 0, fmt.Errorf("record modification time: %w", err)
	}
	accessed, err := r.TimeAt(off + 36)
	if err != nil {
		return nil, 0, fmt.Errorf("record access time: %w", err)
	}
	nameLen, err := r.Uint16At(off + 44)
	if err != nil {
		return nil, 0, fmt.Errorf("record name length: %w", err)
	}
	name, err := r.UTF16StringAt(off+recordHeaderSize, int(nameLen))
	if err != nil {
		return nil, 0, fmt.Errorf("record name: %w", err)
	}

	rec := &FileRecord{
		ID:          uint64(id),
		ParentID:    uint64(parentID),
		Name:        name,
		Size:        size,
		Attributes:  attrs,
		IsDirectory: attrs&attrDirectory != 0,
		IsDeleted:   attrs&attrDeleted != 0,
		CreatedAt:   created,
		ModifiedAt:  modified,
		AccessedAt:  accessed,
		EntryIndex:  -1,
	}
	return rec, recordHeaderSize + int(nameLen)*2, nil
}
