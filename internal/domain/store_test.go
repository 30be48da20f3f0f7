package domain

import "testing"

func TestChunk(t *testing.T) {
	muts := make([]Mutation, 1000)
	for i := range muts {
		muts[i] = Mutation{Table: TableTeams, Key: map[string]any{"id": i}}
	}

	chunks := Chunk(muts, 499)
	if len(chunks) != 3 {
		t.Fatalf("Chunk() returned %d chunks, want 3", len(chunks))
	}
	for i, want := range []int{499, 499, 2} {
		if len(chunks[i]) != want {
			t.Errorf("chunk %d has %d mutations, want %d", i, len(chunks[i]), want)
		}
	}

	// Order is preserved across chunk boundaries.
	if chunks[1][0].Key["id"] != 499 || chunks[2][1].Key["id"] != 999 {
		t.Error("Chunk() did not preserve mutation order")
	}
}

func TestChunkEdgeCases(t *testing.T) {
	if got := Chunk(nil, 10); got != nil {
		t.Errorf("Chunk(nil) = %v, want nil", got)
	}
	if got := Chunk([]Mutation{{Table: TableRaces}}, 0); got != nil {
		t.Errorf("Chunk(limit=0) = %v, want nil", got)
	}
	if got := Chunk([]Mutation{{Table: TableRaces}}, 10); len(got) != 1 || len(got[0]) != 1 {
		t.Errorf("Chunk() under the limit should be a single chunk, got %v", got)
	}
}
