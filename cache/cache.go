// Package cache persists DP1/DP2 reachability tensors (package reach) to
// disk, content-addressed by the target state and depth that produced
// them, so a repeated run against the same target skips tensor
// construction entirely.
//
// There is no disk-cache analog in the original Rust implementation (it
// recomputes DP1/DP2 every run, and only leaves commented-out bincode
// serialization as a sketch in forward1.rs/forward2.rs); this package
// generalizes dfa/lazy.Cache's bounded in-memory state cache to a
// persistent one, since the tensors here are expensive enough to be worth
// keeping across process runs.
package cache

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/tanzaku/yokaidouchuuki/bitset"
	"github.com/tanzaku/yokaidouchuuki/internal/conv"
	"github.com/tanzaku/yokaidouchuuki/state"
)

// ErrCorrupt is returned by Load when a cache file's contents don't match
// its recorded length, or its header doesn't match the expected magic.
var ErrCorrupt = errors.New("cache: corrupt tensor file")

const magic = "YKDC" // "yokai dp cache"

// Key identifies one cached tensor: the kind of tensor (DP1 or DP2), the
// target state and total password length it was built for, and the
// backward table depth used to build it (the tensor's shape depends on
// target length minus backward depth).
type Key struct {
	Kind          string
	Target        state.HashState
	TargetLen     int
	BackwardDepth int
}

// fileName returns the content-addressed file name for k: an FNV-1a hash
// of its fields, so identical (kind, target, lengths) always resolve to
// the same file regardless of process, matching a content-addressed cache
// rather than one keyed by an arbitrary counter.
func (k Key) fileName() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%x%x%x%x%x%x%x|%d|%d",
		k.Kind,
		k.Target.F4, k.Target.F5, k.Target.F7, k.Target.F8, k.Target.F9, k.Target.Fa, k.Target.Fb,
		k.TargetLen, k.BackwardDepth)
	return fmt.Sprintf("%s-%016x.bin", k.Kind, h.Sum64())
}

// Store persists cells (a flat slice of BitSet256 tensor cells, in the
// tensor's own index order) to dir, under k's content-addressed file name.
func Store(dir string, k Key, cells []bitset.BitSet256) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: creating cache dir: %w", err)
	}
	path := filepath.Join(dir, k.fileName())

	tmp, err := os.CreateTemp(dir, "tensor-*.tmp")
	if err != nil {
		return fmt.Errorf("cache: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	var lenBuf [8]byte
	// Tensors are built from DP1AxisWidth/DP2AxisWidth * 0x100 * 0x100 *
	// (maxLen+1) cells; IntToUint32 documents that this always fits well
	// short of a 32-bit count even though the on-disk field is 64-bit.
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(conv.IntToUint32(len(cells))))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	for _, cell := range cells {
		b := cell.Bytes()
		if _, err := w.Write(b[:]); err != nil {
			return fmt.Errorf("cache: writing tensor cell: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("cache: flushing tensor file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cache: finalizing tensor file: %w", err)
	}
	return nil
}

// Load reads back a tensor previously written by Store. It returns
// (nil, false, nil) if no cache file exists for k, and a non-nil error
// only for I/O failures or corruption (ErrCorrupt).
func Load(dir string, k Key) ([]bitset.BitSet256, bool, error) {
	path := filepath.Join(dir, k.fileName())
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: opening tensor file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, false, fmt.Errorf("%w: reading header: %v", ErrCorrupt, err)
	}
	if string(header) != magic {
		return nil, false, fmt.Errorf("%w: bad magic %q", ErrCorrupt, header)
	}

	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, false, fmt.Errorf("%w: reading length: %v", ErrCorrupt, err)
	}
	n64 := binary.LittleEndian.Uint64(lenBuf[:])
	if n64 > math.MaxUint32 {
		return nil, false, fmt.Errorf("%w: implausible cell count %d", ErrCorrupt, n64)
	}
	n := conv.Uint64ToUint32(n64)

	cells := make([]bitset.BitSet256, n)
	var cellBuf [32]byte
	for i := range cells {
		if _, err := io.ReadFull(r, cellBuf[:]); err != nil {
			return nil, false, fmt.Errorf("%w: reading cell %d: %v", ErrCorrupt, i, err)
		}
		cells[i] = bitset.FromBytes(cellBuf)
	}

	if _, err := r.ReadByte(); err != io.EOF {
		return nil, false, fmt.Errorf("%w: trailing data after %d cells", ErrCorrupt, n)
	}

	return cells, true, nil
}
