package engine

import "github.com/cespare/xxhash/v2"

// Luck maps a key to a reproducible value in [0,1).
// The top 53 bits of the key's xxhash become the mantissa of the result.
func Luck(key string) float64 {
	return float64(xxhash.Sum64String(key)>>11) / (1 << 53)
}
