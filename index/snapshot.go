package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/percept/bitvec"
)

// ErrBadSnapshot indicates a snapshot stream that is truncated, corrupt or
// of an unknown version.
var ErrBadSnapshot = errors.New("index: malformed snapshot")

var snapshotMagic = [8]byte{'P', 'C', 'P', 'T', 'I', 'D', 'X', '1'}

const snapshotVersion = uint8(1)

// Save writes a zstd-compressed snapshot of the index to w. The magic and
// version are written uncompressed so readers can sniff the stream.
func (x *Index) Save(w io.Writer) error {
	if _, err := w.Write(snapshotMagic[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{snapshotVersion}); err != nil {
		return err
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if err := binary.Write(zw, binary.LittleEndian, uint32(x.bits)); err != nil {
		zw.Close()
		return err
	}
	if err := binary.Write(zw, binary.LittleEndian, uint64(len(x.slots))); err != nil {
		zw.Close()
		return err
	}

	for slot, e := range x.entries {
		if e.fp == nil || x.free.Test(uint(slot)) {
			continue
		}
		if err := binary.Write(zw, binary.LittleEndian, e.id); err != nil {
			zw.Close()
			return err
		}
		// Fingerprints are persisted as their binary-digit encoding; it is
		// fixed width and parses back to identical words.
		enc, err := e.fp.Encode(2)
		if err != nil {
			zw.Close()
			return err
		}
		if _, err := io.WriteString(zw, enc); err != nil {
			zw.Close()
			return err
		}
	}

	return zw.Close()
}

// Load reads a snapshot produced by Save.
func Load(r io.Reader) (*Index, error) {
	var header [9]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if [8]byte(header[:8]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrBadSnapshot)
	}
	if header[8] != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, header[8])
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	defer zr.Close()

	var bits uint32
	if err := binary.Read(zr, binary.LittleEndian, &bits); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	var count uint64
	if err := binary.Read(zr, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}

	x, err := New(int(bits))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}

	buf := make([]byte, bits)
	for i := uint64(0); i < count; i++ {
		var id uint64
		if err := binary.Read(zr, binary.LittleEndian, &id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
		}
		if _, err := io.ReadFull(zr, buf); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
		}
		fp, err := bitvec.FromBitString(string(buf))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
		}
		if err := x.Add(id, fp); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
		}
	}
	return x, nil
}
