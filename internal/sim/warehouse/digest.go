package warehouse

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// StateDigest is a deterministic fingerprint of the full simulation
// state. Two identically-seeded envs fed the same action stream produce
// identical digests tick for tick; replay verification depends on this.
func (e *Env) StateDigest() string {
	h := sha256.New()
	var tmp [8]byte

	w64 := func(v uint64) {
		binary.LittleEndian.PutUint64(tmp[:], v)
		h.Write(tmp[:])
	}
	wi := func(v int) { w64(uint64(int64(v))) }
	wf := func(v float64) { w64(math.Float64bits(v)) }
	wb := func(b bool) {
		if b {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}

	w64(e.tick)
	wi(e.episode)
	wi(e.stepCount)
	wi(e.deliveredCount)

	for _, a := range e.agents {
		wi(int(a.ID))
		wi(a.Cell.X)
		wi(a.Cell.Y)
		wi(int(a.Heading))
		wi(a.Carrying)
		wf(a.EpisodeReward)
	}
	for i, it := range e.items {
		wi(it.ID)
		wi(it.Cell.X)
		wi(it.Cell.Y)
		wi(int(it.State))
		wi(int(it.CarriedBy))
		wi(it.returnTicks)
		wb(e.deliveredOnce[i])
	}
	for _, z := range e.zones {
		wi(z.ID)
		wi(z.Delivered)
	}
	for _, id := range e.queue.Requested() {
		wi(id)
	}

	return hex.EncodeToString(h.Sum(nil))
}
