package merkle

import (
	"bytes"
	"testing"

	"github.com/MuriData/maci-core/pkg/field"
)

func TestSaveLoadTreeRoundTrip(t *testing.T) {
	depth := 4
	zero := field.Zero()
	tr := NewTree(depth, zero)
	for i := 0; i < 5; i++ {
		if _, err := tr.Insert(field.FromInt64(int64(i + 1))); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := SaveTree(tr, &buf); err != nil {
		t.Fatalf("SaveTree: %v", err)
	}

	loaded, err := LoadTree(&buf, zero)
	if err != nil {
		t.Fatalf("LoadTree: %v", err)
	}

	if !field.Equal(loaded.Root(), tr.Root()) {
		t.Fatalf("loaded root = %s, want %s", loaded.Root().String(), tr.Root().String())
	}
	if loaded.NumLeaves() != tr.NumLeaves() {
		t.Fatalf("loaded NumLeaves() = %d, want %d", loaded.NumLeaves(), tr.NumLeaves())
	}

	// The loaded tree must support further inserts picking up where the
	// original left off.
	if _, err := loaded.Insert(field.FromInt64(999)); err != nil {
		t.Fatalf("Insert on loaded tree: %v", err)
	}
	if _, err := tr.Insert(field.FromInt64(999)); err != nil {
		t.Fatalf("Insert on original tree: %v", err)
	}
	if !field.Equal(loaded.Root(), tr.Root()) {
		t.Fatalf("roots diverge after inserting into both trees post round-trip")
	}
}
