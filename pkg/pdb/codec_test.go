package pdb

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func builtTable(t *testing.T) *Table {
	t.Helper()
	db := New[row](newRankProj())
	require.NoError(t, db.Build(context.Background(), swapPuzzle{}))
	return db.Table()
}

func TestCodec_RoundTrip(t *testing.T) {
	tbl := builtTable(t)

	b, err := MarshalTable(tbl)
	require.NoError(t, err)
	require.Equal(t, "PDB1", string(b[:4]))

	got, err := UnmarshalTable(b)
	require.NoError(t, err)
	require.True(t, tbl.Equal(got))
	require.Equal(t, tbl.Bytes(), got.Bytes())
}

func TestCodec_PreservesUnknown(t *testing.T) {
	db := New[row](wideProj{newRankProj()})
	require.NoError(t, db.Build(context.Background(), swapPuzzle{}))

	b, err := MarshalTable(db.Table())
	require.NoError(t, err)
	got, err := UnmarshalTable(b)
	require.NoError(t, err)
	require.Equal(t, Unknown, got.At(29))
	require.NoError(t, New[row](wideProj{newRankProj()}).Load(got))
}

func TestCodec_RejectsIncomplete(t *testing.T) {
	_, err := MarshalTable(NewTable("x", 4))
	require.ErrorIs(t, err, ErrIncomplete)

	_, err = MarshalTable(NewSeededTable("x", 4, 1))
	require.ErrorIs(t, err, ErrIncomplete)

	_, err = MarshalTable(nil)
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestCodec_Corrupt(t *testing.T) {
	b, err := MarshalTable(builtTable(t))
	require.NoError(t, err)

	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte("XDB1"), b[4:]...)},
		{"truncated header", b[:8]},
		{"truncated body", b[:len(b)-3]},
		{"bad state", func() []byte {
			c := append([]byte(nil), b...)
			c[4] = byte(StateSeeded)
			return c
		}()},
		{"oversized header", encodeRaw(t, "row-perm", 1<<30, []byte{0, 1, 2})},
		{"size above frame", encodeRaw(t, "row-perm", 1000, []byte{0, 1, 2})},
		{"size below frame", encodeRaw(t, "row-perm", 2, []byte{0, 1, 2})},
		{"bad checksum", func() []byte {
			c := append([]byte(nil), b...)
			// checksum follows magic, state, name length, name and size
			c[4+1+2+len("row-perm")+4] ^= 0xFF
			return c
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalTable(tt.input)
			require.ErrorIs(t, err, ErrCorruptTable)
		})
	}
}

// encodeRaw writes a table header claiming size entries followed by a zstd
// frame of body.
func encodeRaw(t *testing.T, name string, size uint32, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(byte(StateComplete))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(name))))
	buf.WriteString(name)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, size))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, xxhash.Sum64(body)))

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(body, buf.Bytes())
}

func TestCodec_RawHeaderMatchesMarshal(t *testing.T) {
	tbl := builtTable(t)
	got, err := UnmarshalTable(encodeRaw(t, tbl.Name(), tbl.Size(), tbl.Bytes()))
	require.NoError(t, err)
	require.True(t, tbl.Equal(got))
}

func TestDatabase_Decode(t *testing.T) {
	b, err := MarshalTable(builtTable(t))
	require.NoError(t, err)

	db := New[row](newRankProj())
	tbl, err := db.Decode(b)
	require.NoError(t, err)
	require.True(t, db.Complete())
	require.Equal(t, tbl, db.Table())

	other := New[row](wideProj{newRankProj()})
	_, err = other.Decode(b)
	require.ErrorIs(t, err, ErrTableMismatch)
	require.False(t, other.Complete())

	_, err = db.Decode(encodeRaw(t, "row-perm", MaxTableSize+1, []byte{0}))
	require.ErrorIs(t, err, ErrCorruptTable)
}
