package gallery

import (
	"math/rand"
	"slices"

	"github.com/chewxy/math32"

	"github.com/jmylchreest/atrium/internal/scene"
)

// SeatPosition is one precomputed slot of the audience pool.
type SeatPosition struct {
	Position scene.Vec3 `json:"position"`
	Rotation float32    `json:"rotation"`
	Index    int        `json:"index"`
}

const seatPoolSize = 100

// seatRings lays the pool out as four concentric arcs around the stage.
var seatRings = []struct {
	count  int
	radius float32
}{
	{18, 19},
	{22, 21.5},
	{28, 24},
	{32, 26.5},
}

// newSeatPool precomputes the audience pool: ring placement with seeded
// jitter, then a seeded shuffle. The result is a pure function of seed and
// is never regenerated for the life of the gallery.
func newSeatPool(seed int64) []SeatPosition {
	rng := rand.New(rand.NewSource(seed))
	pool := make([]SeatPosition, 0, seatPoolSize)
	for _, ring := range seatRings {
		for i := 0; i < ring.count; i++ {
			angle := (float32(i)+0.5)/float32(ring.count)*2*math32.Pi +
				(rng.Float32()-0.5)*0.08
			r := ring.radius + (rng.Float32()-0.5)*1.2
			x := r * math32.Cos(angle)
			z := r * math32.Sin(angle)
			pool = append(pool, SeatPosition{
				Position: scene.V3(x, rng.Float32()*0.15, z),
				Rotation: math32.Atan2(-x, -z),
			})
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for i := range pool {
		pool[i].Index = i
	}
	return pool
}

// GetAudienceSeatPositions returns a copy of the fixed seat pool.
func (g *Gallery) GetAudienceSeatPositions() []SeatPosition {
	out := make([]SeatPosition, len(g.seatPool))
	copy(out, g.seatPool)
	return out
}

// AddAudienceSeat materializes the seat at the given pool index. Returns
// false when the index is out of range or the seat is already present.
func (g *Gallery) AddAudienceSeat(index int) bool {
	if index < 0 || index >= len(g.seatPool) {
		return false
	}
	if _, ok := g.seats[index]; ok {
		return false
	}
	seat := buildSeat(g.theme, g.seatPool[index])
	g.seatsGroup.Add(seat)
	g.register(seat, speedNormal)
	g.seats[index] = seat
	return true
}

// RemoveAudienceSeat tears down the seat at the given pool index. Returns
// false when no seat is present there.
func (g *Gallery) RemoveAudienceSeat(index int) bool {
	seat, ok := g.seats[index]
	if !ok {
		return false
	}
	g.unregister(seat)
	scene.DetachAndDispose(seat)
	delete(g.seats, index)
	return true
}

// UpdateAudienceSeats reconciles the visible seat set against a desired
// subscriber count. Counts within maxDisplay show seats 0..count-1; larger
// counts show a uniform sample of maxDisplay indices drawn from the first
// count slots by partial Fisher-Yates shuffle. Seats outside the target set
// are removed, missing ones are added.
func (g *Gallery) UpdateAudienceSeats(count, maxDisplay int) {
	if count < 0 {
		count = 0
	}
	if count > len(g.seatPool) {
		count = len(g.seatPool)
	}
	if maxDisplay < 0 {
		maxDisplay = 0
	}

	var target []int
	if count <= maxDisplay {
		target = make([]int, count)
		for i := range target {
			target[i] = i
		}
	} else {
		idx := make([]int, count)
		for i := range idx {
			idx[i] = i
		}
		for i := 0; i < maxDisplay; i++ {
			j := i + g.rng.Intn(count-i)
			idx[i], idx[j] = idx[j], idx[i]
		}
		target = idx[:maxDisplay]
	}

	want := make(map[int]bool, len(target))
	for _, i := range target {
		want[i] = true
	}
	for i := range g.seats {
		if !want[i] {
			g.RemoveAudienceSeat(i)
		}
	}
	for _, i := range target {
		if _, ok := g.seats[i]; !ok {
			g.AddAudienceSeat(i)
		}
	}
}

// SeatCount returns the number of currently materialized seats.
func (g *Gallery) SeatCount() int { return len(g.seats) }

// VisibleSeatIndices returns the materialized seat indices, sorted.
func (g *Gallery) VisibleSeatIndices() []int {
	out := make([]int, 0, len(g.seats))
	for i := range g.seats {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}
