package pdb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

// Encoded table layout:
//
//	magic    [4]byte  "PDB1"
//	state    uint8
//	nameLen  uint16
//	name     [nameLen]byte
//	size     uint32
//	checksum uint64   xxhash64 of the raw entries
//	body     zstd frame of the size entries in index order
var magic = [4]byte{'P', 'D', 'B', '1'}

const maxNameLen = 1<<16 - 1

// MaxTableSize bounds the entry count UnmarshalTable accepts. It covers the
// largest corner encoding (8! * 3^7 entries) with room to spare.
const MaxTableSize = 1 << 27

var (
	encoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	})
	decoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(0),
			zstd.WithDecoderMaxMemory(MaxTableSize))
	})
)

// MarshalTable encodes a Complete table.
func MarshalTable(t *Table) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil table", ErrIncomplete)
	}
	if t.state != StateComplete {
		return nil, fmt.Errorf("%w: %s is %s", ErrIncomplete, t.name, t.state)
	}
	if len(t.name) > maxNameLen {
		return nil, fmt.Errorf("pdb: table name too long (%d bytes)", len(t.name))
	}
	enc, err := encoder()
	if err != nil {
		return nil, fmt.Errorf("pdb: init zstd encoder: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(byte(t.state))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(t.name)))
	buf.WriteString(t.name)
	_ = binary.Write(&buf, binary.LittleEndian, t.Size())
	_ = binary.Write(&buf, binary.LittleEndian, xxhash.Sum64(t.data))
	return enc.EncodeAll(t.data, buf.Bytes()), nil
}

// UnmarshalTable decodes a table produced by MarshalTable, verifying its
// checksum. Tables larger than MaxTableSize are rejected before the body is
// decompressed.
func UnmarshalTable(b []byte) (*Table, error) {
	return unmarshalTable(b, nil)
}

// Decode loads a table produced by MarshalTable. The header must name this
// database's projection and size; a mismatch is rejected before the body is
// decompressed.
func (db *Database[S]) Decode(b []byte) (*Table, error) {
	want, size := db.proj.Name(), db.proj.Size()
	t, err := unmarshalTable(b, func(name string, n uint32) error {
		if name != want || n != size {
			return fmt.Errorf("%w: got %s/%d, want %s/%d", ErrTableMismatch, name, n, want, size)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := db.Load(t); err != nil {
		return nil, err
	}
	return t, nil
}

func unmarshalTable(b []byte, check func(name string, size uint32) error) (*Table, error) {
	r := bytes.NewReader(b)

	var m [4]byte
	if _, err := r.Read(m[:]); err != nil || m != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptTable)
	}
	st, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptTable, err)
	}
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return nil, fmt.Errorf("%w: name length: %w", ErrCorruptTable, err)
	}
	name := make([]byte, nameLen)
	if n, _ := r.Read(name); n != int(nameLen) {
		return nil, fmt.Errorf("%w: truncated name", ErrCorruptTable)
	}
	var hdr struct {
		Size uint32
		Sum  uint64
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorruptTable, err)
	}
	if State(st) != StateComplete {
		return nil, fmt.Errorf("%w: unexpected state %s", ErrCorruptTable, State(st))
	}
	if hdr.Size > MaxTableSize {
		return nil, fmt.Errorf("%w: size %d exceeds %d", ErrCorruptTable, hdr.Size, MaxTableSize)
	}
	if check != nil {
		if err := check(string(name), hdr.Size); err != nil {
			return nil, err
		}
	}

	body := b[len(b)-r.Len():]
	// An empty table encodes to no frame at all.
	if len(body) > 0 {
		var fh zstd.Header
		if err := fh.Decode(body); err != nil {
			return nil, fmt.Errorf("%w: frame header: %w", ErrCorruptTable, err)
		}
		if fh.HasFCS && fh.FrameContentSize != uint64(hdr.Size) {
			return nil, fmt.Errorf("%w: frame holds %d entries, header says %d", ErrCorruptTable, fh.FrameContentSize, hdr.Size)
		}
	}

	dec, err := decoder()
	if err != nil {
		return nil, fmt.Errorf("pdb: init zstd decoder: %w", err)
	}
	data, err := dec.DecodeAll(body, make([]byte, 0, hdr.Size))
	if err != nil {
		return nil, fmt.Errorf("%w: body: %w", ErrCorruptTable, err)
	}
	if uint32(len(data)) != hdr.Size {
		return nil, fmt.Errorf("%w: body has %d entries, header says %d", ErrCorruptTable, len(data), hdr.Size)
	}
	if xxhash.Sum64(data) != hdr.Sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptTable)
	}
	return &Table{name: string(name), data: data, state: StateComplete}, nil
}
