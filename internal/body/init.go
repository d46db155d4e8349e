package body

import "math/rand"

// Randomize seeds positions and velocities of every body with uniform
// values in [-1, 1). The same seed always produces the same store.
func Randomize(s *Store, seed int64) {
	r := rand.New(rand.NewSource(seed))
	for i := range s.buf {
		s.buf[i] = 2*r.Float32() - 1
	}
}
