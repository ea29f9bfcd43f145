// Package binread provides bounds-checked decoding primitives over a fixed
// byte buffer.
//
// Disk images are parsed fully in memory, so every accessor takes an absolute
// offset into the buffer rather than consuming a stream. All accessors return
// ErrOverrun (wrapped with field context) instead of panicking when a read
// would cross the end of the buffer; callers treat that as a recoverable
// per-record failure, not a parse failure.
//
// Integers are little-endian. Strings are UTF-16LE code units, either
// fixed-length or prefixed by a 16-bit code-unit count. Timestamps are 64-bit
// tick counts (100-nanosecond units since 1601-01-01 UTC).
package binread

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"
)

// ErrOverrun reports a read that would exceed the buffer bounds.
//
// It corresponds to a single undecodable field or record: the caller drops
// the record and continues scanning. It never aborts a parse.
var ErrOverrun = errors.New("read exceeds buffer bounds")

// epochDelta is the number of seconds between the tick epoch (1601-01-01)
// and the Unix epoch (1970-01-01).
const epochDelta = 11644473600

// Reader wraps an immutable byte buffer with offset-addressed accessors.
type Reader struct {
	buf []byte
}

// New creates a Reader over buf. The buffer is not copied; it must not be
// mutated for the lifetime of the Reader.
func New(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the buffer length in bytes.
func (r *Reader) Len() int {
	return len(r.buf)
}

// check validates that n bytes starting at off lie within the buffer.
func (r *Reader) check(off, n int) error {
	if off < 0 || n < 0 || off > len(r.buf)-n {
		return fmt.Errorf("offset %d length %d in buffer of %d: %w", off, n, len(r.buf), ErrOverrun)
	}
	return nil
}

// BytesAt returns a subslice of n bytes starting at off.
//
// The returned slice aliases the underlying buffer; callers must not modify
// it.
func (r *Reader) BytesAt(off, n int) ([]byte, error) {
	if err := r.check(off, n); err != nil {
		return nil, err
	}
	return r.buf[off : off+n], nil
}

// Uint16At decodes a little-endian uint16 at off.
func (r *Reader) Uint16At(off int) (uint16, error) {
	if err := r.check(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.buf[off:]), nil
}

// Uint32At decodes a little-endian uint32 at off.
func (r *Reader) Uint32At(off int) (uint32, error) {
	if err := r.check(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[off:]), nil
}

// Uint64At decodes a little-endian uint64 at off.
func (r *Reader) Uint64At(off int) (uint64, error) {
	if err := r.check(off, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(r.buf[off:]), nil
}

// UTF16StringAt decodes codeUnits UTF-16LE code units starting at off.
//
// Unpaired surrogates are replaced with U+FFFD by the utf16 package; a NUL
// code unit terminates the string early, matching how fixed-size name fields
// are padded on disk.
func (r *Reader) UTF16StringAt(off, codeUnits int) (string, error) {
	if err := r.check(off, codeUnits*2); err != nil {
		return "", err
	}

	units := make([]uint16, 0, codeUnits)
	for i := range codeUnits {
		u := binary.LittleEndian.Uint16(r.buf[off+i*2:])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}

// UUIDAt decodes a 128-bit identifier at off.
func (r *Reader) UUIDAt(off int) (uuid.UUID, error) {
	raw, err := r.BytesAt(off, 16)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.FromBytes(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("decode volume identifier: %w", err)
	}
	return id, nil
}

// TimeAt decodes a 64-bit tick timestamp at off and converts it to UTC.
func (r *Reader) TimeAt(off int) (time.Time, error) {
	ticks, err := r.Uint64At(off)
	if err != nil {
		return time.Time{}, err
	}
	return TicksToTime(ticks), nil
}

// TicksToTime converts a 100-nanosecond tick count since 1601-01-01 UTC to a
// time.Time. Zero ticks decode as the zero time so absent timestamps stay
// recognizable downstream.
func TicksToTime(ticks uint64) time.Time {
	if ticks == 0 {
		return time.Time{}
	}

	secs := int64(ticks/10_000_000) - epochDelta
	nanos := int64(ticks%10_000_000) * 100
	return time.Unix(secs, nanos).UTC()
}

// TimeToTicks converts a time.Time to a 100-nanosecond tick count since
// 1601-01-01 UTC. The zero time encodes as zero ticks. Used by tests and the
// synthetic generator to produce well-formed on-disk timestamps.
func TimeToTicks(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.Unix()+epochDelta)*10_000_000 + uint64(t.Nanosecond()/100)
}
