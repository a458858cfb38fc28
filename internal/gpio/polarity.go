package gpio

// EffectiveLevel converts a logical state to the raw level that encodes it.
// With invert set, logical true is driven Low.
func EffectiveLevel(logical, invert bool) Level {
	if logical != invert {
		return High
	}
	return Low
}

// EffectiveLogical converts a raw level to its logical state.
// With invert set (active-low), Low reads as true.
func EffectiveLogical(raw Level, invert bool) bool {
	return (raw == High) != invert
}
