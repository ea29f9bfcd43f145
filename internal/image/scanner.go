package image

import (
	"github.com/mkoster/diskview/internal/binread"
	"github.com/mkoster/diskview/internal/logger"
)

// Metadata-region entry framing: each entry is (type u32, size u32, payload).
// Only file-record entries are decoded; every other type is skipped by its
// declared size.
const (
	entryHeaderSize = 8

	// entryTypeFileRecord tags a file-record payload ("FILE" little-endian)
	entryTypeFileRecord uint32 = 0x454C4946
)

// scanMetadata walks the flat metadata region and inserts every decodable
// file record into the store. It returns the number of records inserted.
//
// The region is not assumed well-formed. Declared entry sizes are clamped to
// limits.MinEntryStep so a zero or tiny size field cannot stall the scan, and
// the total number of entries visited is capped by limits.MaxScanEntries.
// Undecodable records are dropped individually; the scan itself never fails.
//
// Skipped entirely when the geometry was synthesized: there is no real
// region to read in that case.
func scanMetadata(r *binread.Reader, geom *VolumeGeometry, store *RecordStore, limits Limits) int {
	if geom.Synthesized {
		return 0
	}

	offset, ok := geom.blockOffset(geom.MetadataBlock, r.Len())
	if !ok || offset+entryHeaderSize > r.Len() {
		logger.Debug("metadata region at block %d outside %d-byte buffer, skipping scan", geom.MetadataBlock, r.Len())
		return 0
	}

	inserted := 0
	dropped := 0

	for entry := 0; entry < limits.MaxScanEntries; entry++ {
		entryType, err := r.Uint32At(offset)
		if err != nil {
			break
		}
		entrySize, err := r.Uint32At(offset + 4)
		if err != nil {
			break
		}

		if entryType == entryTypeFileRecord {
			rec, _, err := decodeRecord(r, offset+entryHeaderSize)
			if err != nil {
				dropped++
			} else {
				rec.Block = geom.MetadataBlock
				rec.EntryIndex = entry
				if store.Insert(rec) {
					inserted++
				}
			}
		}

		// Clamp guarantees forward progress on corrupt size fields.
		step := int(entrySize)
		if step < limits.MinEntryStep {
			step = limits.MinEntryStep
		}
		offset += entryHeaderSize + step

		if offset+entryHeaderSize > r.Len() {
			break
		}
	}

	if dropped > 0 {
		logger.Debug("metadata scan dropped %d undecodable records", dropped)
	}
	logger.Debug("metadata scan inserted %d records", inserted)
	return inserted
}
