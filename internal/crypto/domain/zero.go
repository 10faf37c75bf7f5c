package domain

// Zero overwrites a byte slice in place. Call it on plaintext and key
// material as soon as they fall out of use.
func Zero(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
