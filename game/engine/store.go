package engine

// TokenStore holds the mutated values of tokens, keyed by seed key.
// Absent keys mean the token is untouched and has value 1.
type TokenStore interface {
	Get(key string) (int, bool)
	Set(key string, value int)
}

// MemoryStore is the map-backed TokenStore persisted with each session
type MemoryStore map[string]int

// Get returns the stored value for key
func (s MemoryStore) Get(key string) (int, bool) {
	v, ok := s[key]
	return v, ok
}

// Set overwrites the value for key; 0 marks the token as removed
func (s MemoryStore) Set(key string, value int) {
	s[key] = value
}

// ValueOf returns the effective value of a token, defaulting to 1
func ValueOf(store TokenStore, key string) int {
	if store == nil {
		return 1
	}
	if v, ok := store.Get(key); ok {
		return v
	}
	return 1
}

// Sanitize drops entries that could not have been written by the game:
// negative values, non powers of two and keys that do not parse.
// It returns the number of dropped entries.
func (s MemoryStore) Sanitize() int {
	dropped := 0
	for key, v := range s {
		_, _, err := ParseSeedKey(key)
		if err != nil || !validTokenValue(v) {
			delete(s, key)
			dropped++
		}
	}
	return dropped
}

// Merge copies every entry of other into s
func (s MemoryStore) Merge(other map[string]int) {
	for k, v := range other {
		s[k] = v
	}
}

func validTokenValue(v int) bool {
	return v == 0 || isPowerOfTwo(v)
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}
