package x86

import "testing"

func TestFrameScalarAllocSkipsReservedBlocks(t *testing.T) {
	fr := newFrame()
	base := fr.allocBlock(3) // -8 .. -24
	if base != -8 {
		t.Fatalf("block base = %d, want -8", base)
	}
	off := fr.allocSlot()
	if off != -32 {
		t.Fatalf("scalar slot = %d, want -32 (past the block)", off)
	}
	if fr.overlapsReserved(off, off+wordSize-1) {
		t.Fatalf("scalar slot %d landed inside a reserved range", off)
	}
}

func TestFrameBlockAvoidsEarlierBlock(t *testing.T) {
	fr := newFrame()
	a := fr.allocBlock(2)
	b := fr.allocBlock(2)
	if a == b {
		t.Fatalf("blocks share a base offset %d", a)
	}
	if b > a-2*wordSize+wordSize {
		t.Fatalf("second block base %d overlaps first block at %d", b, a)
	}
}

func TestFrameInlineWinsOverIndirect(t *testing.T) {
	fr := newFrame()
	fr.bindInline("p", -8)
	fr.bindIndirect("p", -16)
	loc, ok := fr.lookup("p")
	if !ok || loc.Kind != StoreInline || loc.Offset != -8 {
		t.Fatalf("lookup(p) = %+v, want inline at -8", loc)
	}

	fr.bindIndirect("q", -24)
	fr.bindInline("q", -32)
	loc, _ = fr.lookup("q")
	if loc.Kind != StoreInline || loc.Offset != -32 {
		t.Fatalf("inline rebind did not replace indirect: %+v", loc)
	}
}

func TestFrameGetOrAllocIsStable(t *testing.T) {
	fr := newFrame()
	a := fr.getOrAlloc("v")
	b := fr.getOrAlloc("v")
	if a != b {
		t.Fatalf("second reference moved the slot: %d then %d", a, b)
	}
}

func TestFrameSizeRoundsToSixteen(t *testing.T) {
	fr := newFrame()
	fr.allocSlot()
	if got := fr.size(); got != 16 {
		t.Fatalf("size after one slot = %d, want 16", got)
	}
	fr.allocSlot()
	fr.allocSlot()
	if got := fr.size(); got != 32 {
		t.Fatalf("size after three slots = %d, want 32", got)
	}
	if got := fr.size() % 16; got != 0 {
		t.Fatalf("size not 16-aligned: rem %d", got)
	}
}

func TestFrameFloatTags(t *testing.T) {
	fr := newFrame()
	off := fr.allocSlot()
	fr.markFloat(off)
	if !fr.isFloat(off) {
		t.Fatal("slot lost its float tag")
	}
	fr.clearFloat(off)
	if fr.isFloat(off) {
		t.Fatal("float tag survived an integer overwrite")
	}
}
