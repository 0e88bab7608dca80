package domain

// Zero overwrites a byte slice with zeros to clear sensitive key material
// from memory. Callers hold unwrapped key material for the minimum lifetime
// needed for a single encrypt or decrypt call and zero it after use.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
