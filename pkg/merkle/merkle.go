package merkle

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/MuriData/maci-core/pkg/field"
)

// ---------------------------------------------------------------------------
// Tree persistence (binary format)
//
// Format:
//   uint32(depth) | uint32(nextIndex)
//   For each level 0..depth:
//     uint32(count)
//     For each entry:
//       uint32(index) | [32]byte(value, canonical big-endian field encoding)
//
// Zero hashes are NOT stored — they are recomputed from zeroLeaf on load.
// This mirrors the level-indexed, sorted-index layout the reference
// sparse-tree serializer used, adapted to an append/update tree that also
// persists nextIndex.
// ---------------------------------------------------------------------------

// SaveTree writes t to w in a deterministic binary format.
func SaveTree(t *Tree, w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, uint32(t.depth)); err != nil {
		return fmt.Errorf("write depth: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(t.nextIndex)); err != nil {
		return fmt.Errorf("write nextIndex: %w", err)
	}

	for lvl := 0; lvl <= t.depth; lvl++ {
		m := t.levels[lvl]
		if err := binary.Write(w, binary.BigEndian, uint32(len(m))); err != nil {
			return fmt.Errorf("write level %d count: %w", lvl, err)
		}

		indices := make([]int, 0, len(m))
		for idx := range m {
			indices = append(indices, idx)
		}
		sort.Ints(indices)

		for _, idx := range indices {
			if err := binary.Write(w, binary.BigEndian, uint32(idx)); err != nil {
				return fmt.Errorf("write level %d index %d: %w", lvl, idx, err)
			}
			b := m[idx].Bytes()
			if _, err := w.Write(b[:]); err != nil {
				return fmt.Errorf("write level %d value %d: %w", lvl, idx, err)
			}
		}
	}

	return nil
}

// LoadTree reads a Tree previously written by SaveTree. zeroLeaf must
// match the value the tree was created with, since zero hashes are
// recomputed rather than stored.
func LoadTree(r io.Reader, zeroLeaf field.Element) (*Tree, error) {
	var depth, nextIndex uint32
	if err := binary.Read(r, binary.BigEndian, &depth); err != nil {
		return nil, fmt.Errorf("read depth: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &nextIndex); err != nil {
		return nil, fmt.Errorf("read nextIndex: %w", err)
	}

	t := NewTree(int(depth), zeroLeaf)
	t.nextIndex = int(nextIndex)

	for lvl := 0; lvl <= int(depth); lvl++ {
		var count uint32
		if err := binary.Read(r, binary.BigEndian, &count); err != nil {
			return nil, fmt.Errorf("read level %d count: %w", lvl, err)
		}

		var buf [32]byte
		for j := 0; j < int(count); j++ {
			var idx uint32
			if err := binary.Read(r, binary.BigEndian, &idx); err != nil {
				return nil, fmt.Errorf("read level %d index: %w", lvl, err)
			}
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, fmt.Errorf("read level %d value: %w", lvl, err)
			}
			t.levels[lvl][int(idx)] = field.FromBytes(buf[:])
		}
	}

	return t, nil
}
