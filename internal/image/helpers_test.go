package image

import (
	"encoding/binary"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/mkoster/diskview/internal/binread"
)

// Test fixture builders. These encode the on-disk layouts documented in
// superblock.go, record.go and btree.go so tests can craft images byte by
// byte.

const (
	testBlockSize   = 4096
	testTotalBlocks = 16
)

// imageBuilder accumulates a fixed-size image buffer with absolute-offset
// writes.
type imageBuilder struct {
	buf []byte
}

func newImageBuilder(blocks int) *imageBuilder {
	return &imageBuilder{buf: make([]byte, blocks*testBlockSize)}
}

func (b *imageBuilder) putU16(off int, v uint16) {
	binary.LittleEndian.PutUint16(b.buf[off:], v)
}

func (b *imageBuilder) putU32(off int, v uint32) {
	binary.LittleEndian.PutUint32(b.buf[off:], v)
}

func (b *imageBuilder) putU64(off int, v uint64) {
	binary.LittleEndian.PutUint64(b.buf[off:], v)
}

func (b *imageBuilder) putBytes(off int, data []byte) {
	copy(b.buf[off:], data)
}

// writeSuperblock writes a valid header at the fixed superblock offset.
func (b *imageBuilder) writeSuperblock(rootDir, metadata, checkpoint uint64) {
	b.putBytes(superblockOffset, []byte(magicPrimary))
	b.putU32(superblockOffset+4, 1)
	b.putU32(superblockOffset+8, testBlockSize)
	b.putU32(superblockOffset+12, 8)
	b.putU32(superblockOffset+16, 512)
	b.putU64(superblockOffset+20, testTotalBlocks)
	b.putU64(superblockOffset+28, rootDir)
	b.putU64(superblockOffset+36, metadata)
	b.putU64(superblockOffset+44, checkpoint)

	id := uuid.MustParse("12345678-1234-5678-1234-567812345678")
	raw, _ := id.MarshalBinary()
	b.putBytes(superblockOffset+52, raw)

	created := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)
	b.putU64(superblockOffset+68, binread.TimeToTicks(created))
	b.putU64(superblockOffset+76, binread.TimeToTicks(created.Add(24*time.Hour)))
}

// encodeTestRecord renders a file record in its on-disk layout.
func encodeTestRecord(id, parent, attrs uint32, size uint64, name string) []byte {
	units := utf16.Encode([]rune(name))
	out := make([]byte, recordHeaderSize+len(units)*2)

	binary.LittleEndian.PutUint32(out[0:], id)
	binary.LittleEndian.PutUint32(out[4:], parent)
	binary.LittleEndian.PutUint32(out[8:], attrs)
	binary.LittleEndian.PutUint64(out[12:], size)

	ts := time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC)
	binary.LittleEndian.PutUint64(out[20:], binread.TimeToTicks(ts))
	binary.LittleEndian.PutUint64(out[28:], binread.TimeToTicks(ts.Add(time.Hour)))
	binary.LittleEndian.PutUint64(out[36:], binread.TimeToTicks(ts.Add(2*time.Hour)))

	binary.LittleEndian.PutUint16(out[44:], uint16(len(units)))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[recordHeaderSize+i*2:], u)
	}
	return out
}

// writeMetadataEntry writes one (type, size, payload) entry at off and
// returns the offset of the next entry, honoring the scanner's minimum step.
func (b *imageBuilder) writeMetadataEntry(off int, entryType uint32, payload []byte) int {
	b.putU32(off, entryType)
	b.putU32(off+4, uint32(len(payload)))
	b.putBytes(off+entryHeaderSize, payload)

	step := len(payload)
	if step < 128 {
		step = 128
	}
	return off + entryHeaderSize + step
}

// writeLeafNode writes a leaf index node holding the given records at the
// start of block.
func (b *imageBuilder) writeLeafNode(block uint64, records ...[]byte) {
	off := int(block) * testBlockSize
	b.putU16(off, nodeFlagLeaf)
	b.putU16(off+2, uint16(len(records)))

	cursor := off + nodeHeaderSize
	for _, rec := range records {
		b.putU32(cursor, uint32(len(rec)))
		b.putBytes(cursor+4, rec)
		cursor += 4 + len(rec)
	}
}

// writeInternalNode writes an internal index node with the given child block
// pointers at the start of block. One key per child-1 is emitted, matching
// the keyCount+1 pointer convention.
func (b *imageBuilder) writeInternalNode(block uint64, children ...uint64) {
	off := int(block) * testBlockSize
	keyCount := len(children) - 1
	if keyCount < 0 {
		keyCount = 0
	}

	b.putU16(off, 0)
	b.putU16(off+2, uint16(keyCount))

	base := off + nodeHeaderSize + keyCount*8
	for i, child := range children {
		b.putU64(base+i*8, child)
	}
}
