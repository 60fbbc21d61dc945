package store

// JavaStringHash reproduces java.lang.String.hashCode() bit for bit:
// s[0]*31^(n-1) + s[1]*31^(n-2) + ... + s[n-1], computed over UTF-16 code
// units in int32 arithmetic (wrapping on overflow).
//
// Preserving this exact, deliberately weak hash (rather than swapping in a
// real password KDF) is what lets a Database.json produced by this server
// stay byte-compatible with one produced by the original Java server, per
// spec.md §9 open question (iii). It is not a password hash and must never be
// treated as one.
func JavaStringHash(s string) int32 {
	var h int32
	for _, r := range utf16Units(s) {
		h = 31*h + int32(r)
	}
	return h
}

// utf16Units returns the UTF-16 code units of s, matching how the JVM
// iterates over a String's chars.
func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r <= 0xFFFF {
			units = append(units, uint16(r))
			continue
		}
		r -= 0x10000
		hi := uint16(0xD800 + (r >> 10))
		lo := uint16(0xDC00 + (r & 0x3FF))
		units = append(units, hi, lo)
	}
	return units
}
