package utils

import "math/rand"

// Shuffle returns a shuffled copy of the input (Fisher-Yates). The
// input slice is left untouched.
func Shuffle[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// PickRandom returns up to n random elements of items.
func PickRandom[T any](items []T, n int) []T {
	shuffled := Shuffle(items)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
