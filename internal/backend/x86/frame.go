package x86

// wordSize is the only value granularity the backend knows: every
// scalar, pointer, field and array element occupies one 8-byte slot.
const wordSize = 8

// StorageKind distinguishes how a name's stack slot relates to its data.
type StorageKind uint8

const (
	// StoreInline means the data itself lives at the recorded offset;
	// for composites, fields count down from that base offset.
	StoreInline StorageKind = iota
	// StoreIndirect means the recorded offset holds a pointer to where
	// the data actually lives.
	StoreIndirect
)

// Location is the single tagged representation of where a name lives.
// A name has exactly one Location; inline and indirect are mutually
// exclusive by construction.
type Location struct {
	Kind   StorageKind
	Offset int64
}

// arrayInfo records a fixed array's frame layout.
type arrayInfo struct {
	Base      int64
	Len       int
	ElemWords int
	// ElemType is the element record type name; empty for scalar
	// elements. Drives the value-vs-address indexing duality.
	ElemType string
}

type offsetRange struct {
	lo int64 // most negative byte covered
	hi int64 // least negative byte covered
}

// frame is the per-function location/type registry. It is created empty
// at the start of lowering a function and discarded at the end; nothing
// in it outlives one function.
type frame struct {
	locs          map[string]Location
	floatSlots    map[int64]bool
	recordTypes   map[string]string
	arrays        map[string]arrayInfo
	elemAddrTemps map[string]bool

	reserved []offsetRange
	next     int64
	low      int64
}

func newFrame() *frame {
	return &frame{
		locs:          make(map[string]Location, 16),
		floatSlots:    make(map[int64]bool, 4),
		recordTypes:   make(map[string]string, 4),
		arrays:        make(map[string]arrayInfo, 4),
		elemAddrTemps: make(map[string]bool, 4),
		next:          -wordSize,
	}
}

// lookup returns the location bound to name.
func (fr *frame) lookup(name string) (Location, bool) {
	loc, ok := fr.locs[name]
	return loc, ok
}

// bindInline records name as direct storage at offset. Inline always
// wins: it overwrites any earlier indirect binding for the same name.
func (fr *frame) bindInline(name string, offset int64) {
	fr.locs[name] = Location{Kind: StoreInline, Offset: offset}
}

// bindIndirect records name as pointer storage at offset. If the name
// already has an inline binding, the inline one takes priority and the
// indirect bind is dropped.
func (fr *frame) bindIndirect(name string, offset int64) {
	if loc, ok := fr.locs[name]; ok && loc.Kind == StoreInline {
		return
	}
	fr.locs[name] = Location{Kind: StoreIndirect, Offset: offset}
}

// getOrAlloc returns name's slot, lazily reserving the next free one on
// first reference. Allocation skips over any offset range reserved for
// a composite so scalar slots never overlap composite storage.
func (fr *frame) getOrAlloc(name string) int64 {
	if loc, ok := fr.locs[name]; ok {
		return loc.Offset
	}
	off := fr.allocSlot()
	fr.bindInline(name, off)
	return off
}

// allocSlot reserves one free word.
func (fr *frame) allocSlot() int64 {
	off := fr.next
	for fr.overlapsReserved(off, off+wordSize-1) {
		off -= wordSize
	}
	fr.next = off - wordSize
	fr.touch(off)
	return off
}

// allocBlock reserves words contiguous slots and returns the base
// offset: the block occupies base, base-8, ... base-8*(words-1).
func (fr *frame) allocBlock(words int) int64 {
	if words < 1 {
		words = 1
	}
	base := fr.next
	span := int64(words) * wordSize
	for fr.overlapsReserved(base-span+wordSize, base+wordSize-1) {
		base -= wordSize
	}
	fr.reserve(base, words)
	fr.next = base - span
	return base
}

// reserve marks the block rooted at base as composite storage so later
// scalar allocation cannot land inside it.
func (fr *frame) reserve(base int64, words int) {
	if words < 1 {
		words = 1
	}
	lo := base - int64(words-1)*wordSize
	fr.reserved = append(fr.reserved, offsetRange{lo: lo, hi: base + wordSize - 1})
	fr.touch(lo)
}

func (fr *frame) overlapsReserved(lo, hi int64) bool {
	for _, r := range fr.reserved {
		if lo <= r.hi && hi >= r.lo {
			return true
		}
	}
	return false
}

func (fr *frame) touch(off int64) {
	if off < fr.low {
		fr.low = off
	}
}

// markFloat tags a slot as holding a scalar double. The tag persists
// for the function's lifetime: float-ness is a property of the slot.
func (fr *frame) markFloat(offset int64) { fr.floatSlots[offset] = true }

// isFloat reports whether a slot was tagged as float.
func (fr *frame) isFloat(offset int64) bool { return fr.floatSlots[offset] }

// clearFloat untags a slot after an integer result overwrites it.
func (fr *frame) clearFloat(offset int64) { delete(fr.floatSlots, offset) }

// setRecordType remembers that name holds a value of a record type.
func (fr *frame) setRecordType(name, typeName string) { fr.recordTypes[name] = typeName }

// recordType returns name's record type, if known.
func (fr *frame) recordType(name string) (string, bool) {
	t, ok := fr.recordTypes[name]
	return t, ok
}

// setArray remembers a fixed array's layout for name.
func (fr *frame) setArray(name string, info arrayInfo) { fr.arrays[name] = info }

// array returns name's array layout, if known.
func (fr *frame) array(name string) (arrayInfo, bool) {
	info, ok := fr.arrays[name]
	return info, ok
}

// markElemAddr tags a temporary as holding the address of one element
// inside an array of records, rather than the element's data.
func (fr *frame) markElemAddr(name string) { fr.elemAddrTemps[name] = true }

// isElemAddr reports whether name holds an element address.
func (fr *frame) isElemAddr(name string) bool { return fr.elemAddrTemps[name] }

// size returns the frame byte count rounded up so rsp stays 16-byte
// aligned at every call site.
func (fr *frame) size() int64 {
	used := -fr.low
	if rem := used % 16; rem != 0 {
		used += 16 - rem
	}
	return used
}
