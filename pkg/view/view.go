// Package view holds the state of one mounted landing view: the environment
// gate and the two randomized collections it guards.
package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/klazomenai/landing-service/pkg/field"
)

// ErrCorruptSnapshot is returned when a stored snapshot breaks a view invariant
var ErrCorruptSnapshot = errors.New("corrupt view snapshot")

// Gate is a one-shot latch. It starts closed and opens exactly once.
type Gate struct {
	open bool
}

// Open flips the gate and reports whether this call was the one that opened it
func (g *Gate) Open() bool {
	if g.open {
		return false
	}
	g.open = true
	return true
}

// IsOpen reports whether the gate has flipped
func (g *Gate) IsOpen() bool {
	return g.open
}

// Generator produces fresh collections for a view
type Generator interface {
	GenerateStars() []field.Star
	GenerateParticles() []field.Particle
}

// View is one mounted landing page. A View is not safe for concurrent use;
// the HTTP layer loads, mutates and stores it within a single request.
type View struct {
	ID        string
	MountedAt time.Time

	gate      Gate
	stars     []field.Star
	particles []field.Particle
}

// Mount starts a new view with the gate closed and no markers
func Mount(id string) *View {
	return &View{
		ID:        id,
		MountedAt: time.Now().UTC(),
	}
}

// Activate runs the client-capable pass. The first call opens the gate and
// replaces both collections; later calls leave the view untouched.
func (v *View) Activate(gen Generator) bool {
	if !v.gate.Open() {
		return false
	}
	v.stars = gen.GenerateStars()
	v.particles = gen.GenerateParticles()
	return true
}

// Ready reports whether the gate has opened
func (v *View) Ready() bool {
	return v.gate.IsOpen()
}

// Stars returns a copy of the starfield, empty before activation
func (v *View) Stars() []field.Star {
	out := make([]field.Star, len(v.stars))
	copy(out, v.stars)
	return out
}

// Particles returns a copy of the particle layer, empty before activation
func (v *View) Particles() []field.Particle {
	out := make([]field.Particle, len(v.particles))
	copy(out, v.particles)
	return out
}

// Snapshot is the stored form of a view
type Snapshot struct {
	ID        string           `json:"id"`
	MountedAt time.Time        `json:"mounted_at"`
	Ready     bool             `json:"ready"`
	Stars     []field.Star     `json:"stars,omitempty"`
	Particles []field.Particle `json:"particles,omitempty"`
}

// Snapshot captures the view for storage
func (v *View) Snapshot() Snapshot {
	return Snapshot{
		ID:        v.ID,
		MountedAt: v.MountedAt,
		Ready:     v.gate.IsOpen(),
		Stars:     v.Stars(),
		Particles: v.Particles(),
	}
}

// Restore rebuilds a view from a snapshot, checking every invariant
func Restore(s Snapshot) (*View, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrCorruptSnapshot)
	}

	v := &View{ID: s.ID, MountedAt: s.MountedAt}

	if !s.Ready {
		if len(s.Stars) != 0 || len(s.Particles) != 0 {
			return nil, fmt.Errorf("%w: markers present before activation", ErrCorruptSnapshot)
		}
		return v, nil
	}

	if len(s.Stars) != field.StarCount {
		return nil, fmt.Errorf("%w: expected %d stars, got %d", ErrCorruptSnapshot, field.StarCount, len(s.Stars))
	}
	if len(s.Particles) != field.ParticleCount {
		return nil, fmt.Errorf("%w: expected %d particles, got %d", ErrCorruptSnapshot, field.ParticleCount, len(s.Particles))
	}
	for i, star := range s.Stars {
		if star.ID != i || !star.Valid() {
			return nil, fmt.Errorf("%w: star %d invalid", ErrCorruptSnapshot, i)
		}
	}
	for i, p := range s.Particles {
		if p.ID != i || !p.Valid() {
			return nil, fmt.Errorf("%w: particle %d invalid", ErrCorruptSnapshot, i)
		}
	}

	v.gate.Open()
	v.stars = append([]field.Star(nil), s.Stars...)
	v.particles = append([]field.Particle(nil), s.Particles...)
	return v, nil
}
