package montecarlo

import (
	"crypto/rand"
	"encoding/binary"
)

// defaultSeedSource supplies a master seed read from crypto/rand when the
// config omits one. Overridable via SetSeedSource so tests can pin an
// otherwise-random run.
var defaultSeedSource = func() int64 {
	var b [8]byte
	rand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// SetSeedSource overrides the master-seed source used when a run's config
// leaves Seed nil. Intended for tests that need a reproducible "unseeded"
// run without threading a seed through every call site.
func SetSeedSource(f func() int64) { defaultSeedSource = f }
