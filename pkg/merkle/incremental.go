package merkle

import (
	"errors"
	"fmt"

	"github.com/MuriData/maci-core/pkg/field"
	"github.com/MuriData/maci-core/pkg/poseidon"
)

// ErrTreeFull is returned by Insert once a tree's capacity (2^depth leaves)
// is exhausted.
var ErrTreeFull = errors.New("merkle: tree is full")

// ErrIndexOutOfRange is returned by Update/GetPath/GetPathUpdate for an
// index outside [0, 2^depth).
var ErrIndexOutOfRange = errors.New("merkle: index out of range")

// hashNode is the two-to-one compression function used at every internal
// node: H(left, right). Routing it through poseidon.Hash keeps node
// hashing on the same Poseidon hash H the rest of the module uses.
func hashNode(left, right field.Element) field.Element {
	return poseidon.Hash(left, right)
}

// Tree is a fixed-depth, incrementally-updatable Merkle tree. It supports
// appending new leaves one at a time and overwriting existing ones in
// place, which is what the MACI state and message trees both need: state
// tree leaves are appended on sign-up and overwritten on message
// processing, the message tree only ever appends.
//
// Only real leaves and the internal nodes on their paths are stored;
// every other position is implied by the zero-subtree hashes NewTree
// precomputes for each level.
type Tree struct {
	depth      int
	zeroHashes []field.Element          // zeroHashes[i] = hash of an all-zero subtree at level i, len depth+1
	levels     []map[int]field.Element  // levels[0] = leaves, levels[depth] has (at most) the root
	nextIndex  int                      // next free leaf index for Insert
}

// NewTree builds an empty fixed-depth tree whose unfilled leaves read as
// zeroLeaf.
func NewTree(depth int, zeroLeaf field.Element) *Tree {
	zh := make([]field.Element, depth+1)
	zh[0] = zeroLeaf
	for i := 1; i <= depth; i++ {
		zh[i] = hashNode(zh[i-1], zh[i-1])
	}

	levels := make([]map[int]field.Element, depth+1)
	for i := range levels {
		levels[i] = make(map[int]field.Element)
	}

	return &Tree{depth: depth, zeroHashes: zh, levels: levels}
}

// Depth returns the tree's fixed depth.
func (t *Tree) Depth() int { return t.depth }

// Capacity returns 2^depth, the maximum number of leaves the tree holds.
func (t *Tree) Capacity() int { return 1 << uint(t.depth) }

// NumLeaves returns the number of leaves written so far via Insert (leaves
// overwritten via Update at an index below NumLeaves do not change this
// count).
func (t *Tree) NumLeaves() int { return t.nextIndex }

// Root returns the current root hash.
func (t *Tree) Root() field.Element {
	if r, ok := t.levels[t.depth][0]; ok {
		return r
	}
	return t.zeroHashes[t.depth]
}

// leafAt returns the value stored at a leaf index, or the zero leaf if
// unwritten.
func (t *Tree) leafAt(index int) field.Element {
	if v, ok := t.levels[0][index]; ok {
		return v
	}
	return t.zeroHashes[0]
}

// Insert appends leaf at the next free index and returns that index.
func (t *Tree) Insert(leaf field.Element) (int, error) {
	if t.nextIndex >= t.Capacity() {
		return 0, ErrTreeFull
	}
	index := t.nextIndex
	t.levels[0][index] = leaf
	t.recomputePath(index)
	t.nextIndex++
	return index, nil
}

// Update overwrites the leaf at index, which must already be within
// [0, Capacity()). It does not advance NumLeaves, whether or not the
// index was written before.
func (t *Tree) Update(index int, leaf field.Element) error {
	if index < 0 || index >= t.Capacity() {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	t.levels[0][index] = leaf
	t.recomputePath(index)
	return nil
}

// recomputePath rehashes every node on the path from index's leaf to the
// root. Siblings absent from a level's map read as that level's zero hash.
func (t *Tree) recomputePath(index int) {
	idx := index
	current := t.leafAt(index)
	t.levels[0][index] = current

	for level := 0; level < t.depth; level++ {
		var left, right field.Element
		if idx%2 == 0 {
			left = current
			right = t.siblingAt(level, idx+1)
		} else {
			left = t.siblingAt(level, idx-1)
			right = current
		}
		current = hashNode(left, right)
		idx /= 2
		t.levels[level+1][idx] = current
	}
}

func (t *Tree) siblingAt(level, idx int) field.Element {
	if v, ok := t.levels[level][idx]; ok {
		return v
	}
	return t.zeroHashes[level]
}

// Path is a Merkle inclusion path: Siblings[i] is the sibling hash at
// level i and PathIndices[i] is 0 if the tree node on the path is the
// left child at that level, 1 if it is the right child — the same
// left/right convention circuits consume for sequential hashing up to
// the root.
type Path struct {
	Siblings    []field.Element
	PathIndices []int
}

// GetPath returns the inclusion path for the leaf at index under the
// tree's current contents.
func (t *Tree) GetPath(index int) (Path, error) {
	if index < 0 || index >= t.Capacity() {
		return Path{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	siblings := make([]field.Element, t.depth)
	pathIndices := make([]int, t.depth)
	idx := index
	for level := 0; level < t.depth; level++ {
		if idx%2 == 0 {
			siblings[level] = t.siblingAt(level, idx+1)
			pathIndices[level] = 0
		} else {
			siblings[level] = t.siblingAt(level, idx-1)
			pathIndices[level] = 1
		}
		idx /= 2
	}
	return Path{Siblings: siblings, PathIndices: pathIndices}, nil
}

// PathUpdate bundles everything a circuit needs to verify a single leaf
// transition: the leaf's unchanged inclusion path (siblings only depend
// on the OTHER leaves, which Update does not touch), the old and new
// leaf values, and the old and new roots they produce.
type PathUpdate struct {
	Path    Path
	OldLeaf field.Element
	NewLeaf field.Element
	OldRoot field.Element
	NewRoot field.Element
}

// GetPathUpdate computes a PathUpdate for writing newLeaf at index, then
// actually performs the write (the tree's root and stored leaf reflect
// newLeaf once this returns). Callers that need the pre-update root
// without mutating the tree should read Root() (and GetPath for the path)
// instead.
func (t *Tree) GetPathUpdate(index int, newLeaf field.Element) (PathUpdate, error) {
	path, err := t.GetPath(index)
	if err != nil {
		return PathUpdate{}, err
	}
	oldLeaf := t.leafAt(index)
	oldRoot := t.Root()

	if err := t.Update(index, newLeaf); err != nil {
		return PathUpdate{}, err
	}

	return PathUpdate{
		Path:    path,
		OldLeaf: oldLeaf,
		NewLeaf: newLeaf,
		OldRoot: oldRoot,
		NewRoot: t.Root(),
	}, nil
}

// Copy returns a deep clone of the tree, independent of further mutation
// on the receiver.
func (t *Tree) Copy() *Tree {
	clone := &Tree{
		depth:     t.depth,
		nextIndex: t.nextIndex,
	}
	clone.zeroHashes = append([]field.Element(nil), t.zeroHashes...)
	clone.levels = make([]map[int]field.Element, len(t.levels))
	for i, m := range t.levels {
		cm := make(map[int]field.Element, len(m))
		for k, v := range m {
			cm[k] = v
		}
		clone.levels[i] = cm
	}
	return clone
}
