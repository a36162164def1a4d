package rhmap

import (
	"math/bits"
	"unsafe"
)

// MinLog2 is the smallest log2_capacity a RawMap ever allocates at: 64
// slots.
const MinLog2 = 6

// maxLog2 is the largest log2_capacity the tagged base pointer's low six
// bits can encode.
const maxLog2 = 63

// capMask isolates the six low bits of data that hold log2_capacity.
const capMask = 0x3f

// loadFactorNumerator / loadFactorDenominator implement the 75% load-factor
// bound as an integer ratio (floor(cap*75/100)).
const loadFactorNumerator = 75
const loadFactorDenominator = 100

// hashCellInfo is the CellInfo for the Hash-word array segment of the
// allocation; every RawMap uses the same one regardless of K, V.
var hashCellInfo = NewCellInfo(8, 8)

// RawMap is the mutable, layout-identical header both the typed and
// type-erased APIs operate on. Its zero value is a valid, unallocated map.
type RawMap struct {
	// data is 0 (empty, unallocated) or base|log2_capacity, where
	// log2_capacity occupies the low six bits and base is the cache-line
	// aligned allocation address.
	data uintptr

	// len is the number of valid (non-empty, non-tombstone) entries.
	len int

	allocator Allocator
}

// NewRawMap returns a zero-initialized RawMap bound to the given allocator.
// No allocation happens until the first Insert/Add/Reserve.
func NewRawMap(allocator Allocator) *RawMap {
	return &RawMap{allocator: allocator}
}

func log2OfData(data uintptr) uintptr { return data & capMask }
func baseOfData(data uintptr) unsafe.Pointer {
	if data == 0 {
		return nil
	}
	return unsafe.Pointer(data &^ capMask)
}
func capOfData(data uintptr) uintptr {
	if data == 0 {
		return 0
	}
	return uintptr(1) << log2OfData(data)
}

// Cap returns the map's current capacity (0 if never allocated).
func (m *RawMap) Cap() uintptr { return capOfData(m.data) }

// Len returns the number of live entries.
func (m *RawMap) Len() int { return m.len }

func (m *RawMap) base() unsafe.Pointer { return baseOfData(m.data) }

// ceilLog2 returns the smallest e such that 1<<e >= v, for v >= 1.
func ceilLog2(v uintptr) uintptr {
	if v <= 1 {
		return 0
	}
	return uintptr(64 - bits.LeadingZeros64(uint64(v-1)))
}

// threshold returns floor(capacity * 75 / 100), the point at which len+1
// reaching it must trigger a grow.
func threshold(capacity uintptr) uintptr {
	return capacity * loadFactorNumerator / loadFactorDenominator
}

// --- allocation layout ---

// layout describes the byte offsets of every segment within one RawMap
// allocation for a given descriptor and capacity.
type layout struct {
	capacity    uintptr
	keysOff     uintptr
	valsOff     uintptr
	hashesOff   uintptr
	scratchKOff uintptr
	scratchVOff uintptr
	total       uintptr
}

func computeLayout(info *MapInfo, capacity uintptr) layout {
	var l layout
	l.capacity = capacity

	_, keysBytes := info.Key.CellsFor(capacity)
	_, valsBytes := info.Value.CellsFor(capacity)
	_, hashesBytes := hashCellInfo.CellsFor(capacity)
	_, scratchKBytes := info.Key.CellsFor(2)
	_, scratchVBytes := info.Value.CellsFor(2)

	l.keysOff = 0
	l.valsOff = l.keysOff + keysBytes
	l.hashesOff = l.valsOff + valsBytes
	l.scratchKOff = l.hashesOff + hashesBytes
	l.scratchVOff = l.scratchKOff + scratchKBytes
	l.total = l.scratchVOff + scratchVBytes
	return l
}

func (l layout) keysBase(base unsafe.Pointer) unsafe.Pointer   { return unsafe.Add(base, l.keysOff) }
func (l layout) valsBase(base unsafe.Pointer) unsafe.Pointer   { return unsafe.Add(base, l.valsOff) }
func (l layout) hashesBase(base unsafe.Pointer) unsafe.Pointer { return unsafe.Add(base, l.hashesOff) }
func (l layout) scratchKeysBase(base unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(base, l.scratchKOff)
}
func (l layout) scratchValsBase(base unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(base, l.scratchVOff)
}

func copyBytes(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}

// --- raw accessors over a live allocation ---

type view struct {
	info   *MapInfo
	base   unsafe.Pointer
	layout layout
}

func makeView(m *RawMap, info *MapInfo) view {
	return view{info: info, base: m.base(), layout: computeLayout(info, m.Cap())}
}

func (v view) hashAt(i uintptr) Hash {
	p := (*Hash)(ptrAt(v.layout.hashesBase(v.base), hashCellInfo, i))
	return *p
}
func (v view) setHashAt(i uintptr, h Hash) {
	p := (*Hash)(ptrAt(v.layout.hashesBase(v.base), hashCellInfo, i))
	*p = h
}
func (v view) keyAt(i uintptr) unsafe.Pointer {
	return ptrAt(v.layout.keysBase(v.base), v.info.Key, i)
}
func (v view) valAt(i uintptr) unsafe.Pointer {
	return ptrAt(v.layout.valsBase(v.base), v.info.Value, i)
}
func (v view) scratchKey(idx uintptr) unsafe.Pointer {
	return ptrAt(v.layout.scratchKeysBase(v.base), v.info.Key, idx)
}
func (v view) scratchVal(idx uintptr) unsafe.Pointer {
	return ptrAt(v.layout.scratchValsBase(v.base), v.info.Value, idx)
}

func (v view) writeEntry(i uintptr, keyPtr, valPtr unsafe.Pointer, h Hash) {
	copyBytes(v.keyAt(i), keyPtr, v.info.Key.sizeOfType)
	copyBytes(v.valAt(i), valPtr, v.info.Value.sizeOfType)
	v.setHashAt(i, h)
}

// --- allocate / free ---

func rawAllocateAt(info *MapInfo, log2Capacity uintptr, allocator Allocator) (*RawMap, error) {
	if log2Capacity > maxLog2 {
		return nil, errCapacityOverflow(log2Capacity)
	}
	capacity := uintptr(1) << log2Capacity
	l := computeLayout(info, capacity)

	ptr, err := allocator.Alloc(l.total, CacheLineSize)
	if err != nil {
		return nil, errAllocFailed("alloc", err)
	}
	checkAligned(ptr, CacheLineSize)

	return &RawMap{
		data:      uintptr(ptr) | log2Capacity,
		len:       0,
		allocator: allocator,
	}, nil
}

func ensureAllocated(m *RawMap, info *MapInfo) error {
	if m.data != 0 {
		return nil
	}
	fresh, err := rawAllocateAt(info, MinLog2, m.allocator)
	if err != nil {
		return err
	}
	m.data = fresh.data
	return nil
}

// rawFree releases the current allocation (if any) and resets the map to
// its zero state.
func rawFree(m *RawMap, info *MapInfo) error {
	if m.data == 0 {
		return nil
	}
	l := computeLayout(info, m.Cap())
	if err := m.allocator.Free(m.base(), l.total); err != nil {
		return errAllocFailed("free", err)
	}
	m.data = 0
	m.len = 0
	return nil
}

// --- probing engine ---

// rawLookup computes h = hasher(key, 0), then walks the probe sequence
// starting at h's desired slot until it hits an empty slot, an occupied
// slot (live or tombstone) whose own probe distance is shorter than how far
// we've already walked
// (meaning our key would have displaced it had it been here), or a slot
// whose hash and key both match.
func rawLookup(m *RawMap, info *MapInfo, keyPtr unsafe.Pointer) (unsafe.Pointer, bool) {
	if m.data == 0 {
		return nil, false
	}
	v := makeView(m, info)
	cap := m.Cap()
	mask := cap - 1

	h := info.Hasher(keyPtr, 0)
	pos := h.desired(cap)
	var d uintptr

	for {
		e := v.hashAt(pos)
		switch {
		case e.empty():
			return nil, false
		case d > probeDistance(e, pos, cap):
			return nil, false
		case e == h && info.Equals(keyPtr, v.keyAt(pos)):
			return v.valAt(pos), true
		}
		pos = (pos + 1) & mask
		d++
	}
}

func rawExists(m *RawMap, info *MapInfo, keyPtr unsafe.Pointer) bool {
	_, ok := rawLookup(m, info, keyPtr)
	return ok
}

// rawInsert stores key/value, updating in place if the key is already
// present. It grows the table first if the load factor would be exceeded,
// then walks the probe sequence with the classic Robin Hood rule: whenever
// the resident of a slot has probed less far than the entry being carried,
// the carried entry takes that slot and the resident is carried onward in
// its place. The two scratch key/value slots hold the displaced entry
// during that hand-off so the swap never needs a third full-size buffer.
func rawInsert(m *RawMap, info *MapInfo, keyPtr, valPtr unsafe.Pointer) (unsafe.Pointer, error) {
	if err := ensureAllocated(m, info); err != nil {
		return nil, err
	}
	if uintptr(m.len+1) >= threshold(m.Cap()) {
		if err := rawGrow(m, info); err != nil {
			return nil, err
		}
	}

	v := makeView(m, info)
	cap := m.Cap()
	mask := cap - 1

	h := info.Hasher(keyPtr, 0)
	pos := h.desired(cap)
	var d uintptr

	carryKey, carryVal := keyPtr, valPtr
	carryHash := h
	original := true
	scratchIdx := uintptr(0)

	var resultAddr unsafe.Pointer
	overwritten := false

	for {
		e := v.hashAt(pos)

		if e.empty() {
			v.writeEntry(pos, carryKey, carryVal, carryHash)
			if original {
				resultAddr = v.valAt(pos)
			}
			break
		}

		if original && e == h && info.Equals(keyPtr, v.keyAt(pos)) {
			v.writeEntry(pos, carryKey, carryVal, carryHash)
			resultAddr = v.valAt(pos)
			overwritten = true
			break
		}

		pd := probeDistance(e, pos, cap)
		if pd < d {
			if e.tombstone() {
				v.writeEntry(pos, carryKey, carryVal, carryHash)
				if original {
					resultAddr = v.valAt(pos)
				}
				break
			}

			existKey, existVal := v.keyAt(pos), v.valAt(pos)
			sKey, sVal := v.scratchKey(scratchIdx), v.scratchVal(scratchIdx)
			copyBytes(sKey, existKey, info.Key.sizeOfType)
			copyBytes(sVal, existVal, info.Value.sizeOfType)
			savedHash := e

			v.writeEntry(pos, carryKey, carryVal, carryHash)
			if original {
				resultAddr = v.valAt(pos)
				original = false
			}

			carryKey, carryVal, carryHash = sKey, sVal, savedHash
			scratchIdx = 1 - scratchIdx
			d = pd
		} else {
			pos = (pos + 1) & mask
			d++
		}
	}

	if !overwritten {
		m.len++
	}
	return resultAddr, nil
}

// rawAdd is the no-return-value sibling of rawInsert.
func rawAdd(m *RawMap, info *MapInfo, keyPtr, valPtr unsafe.Pointer) error {
	_, err := rawInsert(m, info, keyPtr, valPtr)
	return err
}

// rawAddWithHash places an entry using an already-computed hash, without
// the update-in-place check or growth trigger. It is only used during
// grow/shrink migration, where every stored hash is trusted as-is (no
// rehashing) and every key is already known to be unique.
func rawAddWithHash(m *RawMap, info *MapInfo, hash Hash, keyPtr, valPtr unsafe.Pointer) {
	v := makeView(m, info)
	cap := m.Cap()
	mask := cap - 1

	pos := hash.desired(cap)
	var d uintptr

	carryKey, carryVal := keyPtr, valPtr
	carryHash := hash
	scratchIdx := uintptr(0)

	for {
		e := v.hashAt(pos)

		if e.empty() {
			v.writeEntry(pos, carryKey, carryVal, carryHash)
			return
		}

		pd := probeDistance(e, pos, cap)
		if pd < d {
			existKey, existVal := v.keyAt(pos), v.valAt(pos)
			sKey, sVal := v.scratchKey(scratchIdx), v.scratchVal(scratchIdx)
			copyBytes(sKey, existKey, info.Key.sizeOfType)
			copyBytes(sVal, existVal, info.Value.sizeOfType)
			savedHash := e

			v.writeEntry(pos, carryKey, carryVal, carryHash)

			carryKey, carryVal, carryHash = sKey, sVal, savedHash
			scratchIdx = 1 - scratchIdx
			d = pd
		} else {
			pos = (pos + 1) & mask
			d++
		}
	}
}

// rawErase locates the entry the same way rawLookup does, then sets the top
// bit of its hash word and decrements len. Keys and values are left in
// place as dead data.
func rawErase(m *RawMap, info *MapInfo, keyPtr unsafe.Pointer) bool {
	if m.data == 0 {
		return false
	}
	v := makeView(m, info)
	cap := m.Cap()
	mask := cap - 1

	h := info.Hasher(keyPtr, 0)
	pos := h.desired(cap)
	var d uintptr

	for {
		e := v.hashAt(pos)
		switch {
		case e.empty():
			return false
		case d > probeDistance(e, pos, cap):
			return false
		case e == h && info.Equals(keyPtr, v.keyAt(pos)):
			v.setHashAt(pos, markTombstone(e))
			m.len--
			return true
		}
		pos = (pos + 1) & mask
		d++
	}
}

// rawClear zeroes the hash-word array and resets len. Keys and values
// remain in place as dead data.
func rawClear(m *RawMap, info *MapInfo) {
	if m.data == 0 {
		m.len = 0
		return
	}
	v := makeView(m, info)
	_, hashesBytes := hashCellInfo.CellsFor(m.Cap())
	clear(unsafe.Slice((*byte)(v.layout.hashesBase(v.base)), hashesBytes))
	m.len = 0
}

// --- growth, shrink, reserve ---

// migrate reinserts every valid entry of the old region into a freshly
// allocated region at newLog2Capacity using each entry's stored hash (no
// rehashing), then frees the old region.
func migrate(m *RawMap, info *MapInfo, newLog2Capacity uintptr) error {
	oldView := makeView(m, info)
	oldCap := m.Cap()

	fresh, err := rawAllocateAt(info, newLog2Capacity, m.allocator)
	if err != nil {
		return err
	}

	newRaw := &RawMap{data: fresh.data, len: 0, allocator: m.allocator}

	for i := uintptr(0); i < oldCap; i++ {
		e := oldView.hashAt(i)
		if !e.valid() {
			continue
		}
		rawAddWithHash(newRaw, info, e, oldView.keyAt(i), oldView.valAt(i))
	}
	newRaw.len = m.len

	oldLayout := computeLayout(info, oldCap)
	if err := m.allocator.Free(oldView.base, oldLayout.total); err != nil {
		return errAllocFailed("free", err)
	}

	m.data = newRaw.data
	return nil
}

// rawGrow doubles the table's capacity, migrating every live entry into the
// new region.
func rawGrow(m *RawMap, info *MapInfo) error {
	if m.data == 0 {
		return ensureAllocated(m, info)
	}
	newLog2 := log2OfData(m.data) + 1
	if newLog2 > maxLog2 {
		return errCapacityOverflow(newLog2)
	}
	return migrate(m, info, newLog2)
}

// rawShrink halves the table's capacity if doing so would keep the load
// factor within bounds; otherwise it is a no-op.
func rawShrink(m *RawMap, info *MapInfo) error {
	if m.data == 0 {
		return nil
	}
	cap := m.Cap()
	if cap>>1 < (uintptr(1) << MinLog2) {
		return nil
	}
	if uintptr(m.len) >= threshold(cap>>1) {
		return nil
	}
	return migrate(m, info, log2OfData(m.data)-1)
}

// rawReserve grows the table to a capacity of 1<<ceilLog2(max(n,
// 1<<MinLog2)) slots; it does not account for the load factor, so that
// capacity is at least n but can hold fewer than n entries before the next
// grow. On a never-allocated table it only allocates at MinLog2 and
// returns, whatever n is; a second call then sizes the table to n.
func rawReserve(m *RawMap, info *MapInfo, n uintptr) error {
	minCap := uintptr(1) << MinLog2
	want := n
	if want < minCap {
		want = minCap
	}
	log2New := ceilLog2(want)

	if m.Cap() >= uintptr(1)<<log2New {
		return nil
	}
	if m.data == 0 {
		return ensureAllocated(m, info)
	}
	if log2New > maxLog2 {
		return errCapacityOverflow(log2New)
	}
	return migrate(m, info, log2New)
}

// Stats reports the instantaneous load/tombstone ratios, mirroring the
// teacher's CollectInfo/FixedBlockMapInfo.
type Stats struct {
	LoadFactor      float64
	TombstoneFactor float64
	RecommendGrow   bool
	RecommendShrink bool
}

func rawStats(m *RawMap, info *MapInfo) Stats {
	if m.data == 0 {
		return Stats{}
	}
	v := makeView(m, info)
	cap := m.Cap()
	var tombstones uintptr
	for i := uintptr(0); i < cap; i++ {
		if v.hashAt(i).tombstone() {
			tombstones++
		}
	}
	load := float64(m.len) / float64(cap)
	tomb := float64(tombstones) / float64(cap)
	return Stats{
		LoadFactor:      load,
		TombstoneFactor: tomb,
		RecommendGrow:   uintptr(m.len+1) >= threshold(cap),
		RecommendShrink: cap > (1<<MinLog2) && uintptr(m.len) < threshold(cap>>1),
	}
}
