package binread

import (
	"encoding/binary"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerAccessors(t *testing.T) {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint16(buf[0:], 0xBEEF)
	binary.LittleEndian.PutUint32(buf[2:], 0xDEADBEEF)
	binary.LittleEndian.PutUint64(buf[6:], 0x0123456789ABCDEF)
	r := New(buf)

	t.Run("ReadsLittleEndianValues", func(t *testing.T) {
		v16, err := r.Uint16At(0)
		require.NoError(t, err)
		assert.Equal(t, uint16(0xBEEF), v16)

		v32, err := r.Uint32At(2)
		require.NoError(t, err)
		assert.Equal(t, uint32(0xDEADBEEF), v32)

		v64, err := r.Uint64At(6)
		require.NoError(t, err)
		assert.Equal(t, uint64(0x0123456789ABCDEF), v64)
	})

	t.Run("RejectsReadsPastEnd", func(t *testing.T) {
		_, err := r.Uint16At(15)
		assert.ErrorIs(t, err, ErrOverrun)

		_, err = r.Uint32At(13)
		assert.ErrorIs(t, err, ErrOverrun)

		_, err = r.Uint64At(9)
		assert.ErrorIs(t, err, ErrOverrun)
	})

	t.Run("RejectsNegativeOffsets", func(t *testing.T) {
		_, err := r.Uint32At(-1)
		assert.ErrorIs(t, err, ErrOverrun)
	})

	t.Run("RejectsHugeLengthWithoutOverflow", func(t *testing.T) {
		// off + n must not wrap around; the bounds check is written
		// subtraction-style to stay overflow-safe.
		_, err := r.BytesAt(8, int(^uint(0)>>1))
		assert.ErrorIs(t, err, ErrOverrun)
	})
}

func TestUTF16StringAt(t *testing.T) {
	t.Run("DecodesBasicString", func(t *testing.T) {
		units := utf16.Encode([]rune("Windows"))
		buf := make([]byte, len(units)*2)
		for i, u := range units {
			binary.LittleEndian.PutUint16(buf[i*2:], u)
		}

		s, err := New(buf).UTF16StringAt(0, len(units))
		require.NoError(t, err)
		assert.Equal(t, "Windows", s)
	})

	t.Run("StopsAtNulPadding", func(t *testing.T) {
		buf := make([]byte, 12)
		for i, u := range utf16.Encode([]rune("abc")) {
			binary.LittleEndian.PutUint16(buf[i*2:], u)
		}

		s, err := New(buf).UTF16StringAt(0, 6)
		require.NoError(t, err)
		assert.Equal(t, "abc", s)
	})

	t.Run("DecodesSurrogatePairs", func(t *testing.T) {
		units := utf16.Encode([]rune("📁 files"))
		buf := make([]byte, len(units)*2)
		for i, u := range units {
			binary.LittleEndian.PutUint16(buf[i*2:], u)
		}

		s, err := New(buf).UTF16StringAt(0, len(units))
		require.NoError(t, err)
		assert.Equal(t, "📁 files", s)
	})

	t.Run("FailsWhenLengthExceedsBuffer", func(t *testing.T) {
		_, err := New(make([]byte, 4)).UTF16StringAt(0, 3)
		assert.ErrorIs(t, err, ErrOverrun)
	})
}

func TestUUIDAt(t *testing.T) {
	want := uuid.MustParse("12345678-1234-5678-1234-567812345678")
	raw, err := want.MarshalBinary()
	require.NoError(t, err)

	got, err := New(raw).UUIDAt(0)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTickConversion(t *testing.T) {
	t.Run("RoundTripsWallClockTimes", func(t *testing.T) {
		want := time.Date(2024, time.March, 15, 9, 30, 12, 345678900, time.UTC)
		got := TicksToTime(TimeToTicks(want))
		assert.True(t, want.Equal(got), "want %v, got %v", want, got)
	})

	t.Run("UnixEpochIsKnownTickCount", func(t *testing.T) {
		// 11644473600 seconds between 1601 and 1970, in 100ns ticks.
		assert.Equal(t, uint64(116444736000000000), TimeToTicks(time.Unix(0, 0)))
	})

	t.Run("ZeroTicksDecodeAsZeroTime", func(t *testing.T) {
		assert.True(t, TicksToTime(0).IsZero())
	})
}
