package model

// Bitmask holds one bit per dispatchable output, bit i set meaning load i is
// energized (or, for an override mask, requested on).
type Bitmask uint32

// IsSet reports whether bit i is set.
func (b Bitmask) IsSet(i int) bool { return b&(1<<uint(i)) != 0 }

// Set sets bit i.
func (b *Bitmask) Set(i int) { *b |= 1 << uint(i) }

// Clear clears bit i.
func (b *Bitmask) Clear(i int) { *b &^= 1 << uint(i) }

// Split separates the mask into the local port bits and the remote byte sent
// over the radio link. Loads [0, nLocal) map to local bits in place; the
// remaining loads pack into the low bits of the remote byte, so remote load 0
// is the load at index nLocal.
func (b Bitmask) Split(nLocal int) (local uint16, remote uint8) {
	local = uint16(b) & (1<<uint(nLocal) - 1)
	remote = uint8(b >> uint(nLocal))
	return local, remote
}
