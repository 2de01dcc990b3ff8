package common

// WipeByteArray overwrites b with zeros. Use it on password buffers once
// they have been sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
