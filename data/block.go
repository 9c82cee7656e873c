package data

// block tracks the capacity and growth policy of one of a Store's
// blocks (spec §3.3); each block grows independently of the others.
// Store owns six of these, one per BlockNames entry; the data,
// instruction and jump-table blocks hold Cells, the two symbol-table
// blocks hold index entries, and the custom_data block only counts
// custom cells kept in the data block, but the growth policy is
// shared by every block, so it lives here rather than being
// duplicated per block kind.
type block struct {
	settings StorageSettings
	cap      int
}

func newBlock(s StorageSettings) block {
	if s.InitialSize <= 0 {
		s.InitialSize = DefaultSettings().InitialSize
	}
	return block{settings: s, cap: s.InitialSize}
}

// grow returns the new capacity needed to hold at least n elements,
// or the current capacity if that already suffices. A zero MaxSize
// means unbounded; a nonzero one caps growth and grow returns the cap
// unchanged (callers must treat a still-insufficient capacity as
// arena exhaustion).
func (b *block) grow(n int) int {
	for b.cap < n {
		next := b.cap
		switch b.settings.Strategy {
		case FixedIncrement:
			inc := b.settings.Increment
			if inc <= 0 {
				inc = DefaultSettings().Increment
			}
			next = b.cap + inc
		default: // Doubling
			next = b.cap * 2
			if next == 0 {
				next = DefaultSettings().InitialSize
			}
		}
		if next <= b.cap {
			break
		}
		b.cap = next
		if b.settings.MaxSize > 0 && b.cap >= b.settings.MaxSize {
			b.cap = b.settings.MaxSize
			break
		}
	}
	return b.cap
}

func (b *block) full(n int) bool {
	return b.settings.MaxSize > 0 && n > b.settings.MaxSize
}
