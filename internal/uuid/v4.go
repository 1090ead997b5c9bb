package uuid

import "crypto/rand"

// V4 generates a version 4 (random) UUID.
func V4() (output UUID) {
	_, _ = rand.Read(output[:])
	output[6] = (output[6] & 0x0f) | 0x40
	output[8] = (output[8] & 0x3f) | 0x80
	return
}
