package rsaengine

import "runtime"

// ZeroizeBytes overwrites buf with zeros. runtime.KeepAlive keeps the stores
// from being eliminated (golang/go#33325). Copies made by the garbage
// collector or by math libraries are out of reach.
func ZeroizeBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}
