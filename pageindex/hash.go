package pageindex

// splitmix64 finalizes a page base address into a well-mixed 64-bit
// hash. This is the same avalanche shape the pack's other open-address
// hash tables use to scramble pointer-derived keys before probing
// (compare codewanderer42820-evm_triarb's hashPtrLen xorshift-multiply
// chain) — SplitMix64's finalizer is the textbook instance of that
// idiom and is what spec.md names explicitly.
func splitmix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
