// Package checker validates the final body store of a run and ties a
// throughput figure to a salted fingerprint of the exact final state.
package checker

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/san-kum/nbodybench/internal/body"
)

// Report summarizes validation of a final body store.
type Report struct {
	Bodies      int
	NonFinite   int // count of NaN/Inf fields across the store
	FirstBad    int // body index of the first non-finite field, -1 if none
	Fingerprint uint64
}

// Verify checks that every field of every body is finite and computes
// the salted fingerprint. A non-finite state returns the report along
// with an error describing the first offender.
func Verify(s *body.Store, salt int64) (Report, error) {
	rep := Report{Bodies: s.Len(), FirstBad: -1}

	for i, v := range s.Raw() {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			rep.NonFinite++
			if rep.FirstBad == -1 {
				rep.FirstBad = i / body.Stride
			}
		}
	}

	rep.Fingerprint = Fingerprint(s, salt)

	if rep.NonFinite > 0 {
		return rep, fmt.Errorf("checker: %d non-finite fields, first at body %d", rep.NonFinite, rep.FirstBad)
	}
	return rep, nil
}

// Fingerprint hashes the exact bit patterns of the store, FNV-1a seeded
// with the verification salt. Two runs agree iff their final states are
// bit-identical.
func Fingerprint(s *body.Store, salt int64) uint64 {
	h := fnv.New64a()

	var b8 [8]byte
	binary.LittleEndian.PutUint64(b8[:], uint64(salt))
	h.Write(b8[:])

	var b4 [4]byte
	for _, v := range s.Raw() {
		binary.LittleEndian.PutUint32(b4[:], math.Float32bits(v))
		h.Write(b4[:])
	}
	return h.Sum64()
}

// Score is the performance record of a completed run.
type Score struct {
	Bodies                 int     `json:"bodies"`
	GigaInteractionsPerSec float64 `json:"giga_interactions_per_sec"`
	Salt                   int64   `json:"salt"`
	Fingerprint            uint64  `json:"fingerprint"`
}

func NewScore(rep Report, gigaInteractions float64, salt int64) Score {
	return Score{
		Bodies:                 rep.Bodies,
		GigaInteractionsPerSec: gigaInteractions,
		Salt:                   salt,
		Fingerprint:            rep.Fingerprint,
	}
}
