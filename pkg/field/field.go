// Package field generates the randomized star and particle collections
// drawn behind the landing hero.
package field

import (
	"math/rand"
)

const (
	// StarCount is the number of stars in every generated starfield
	StarCount = 150
	// ParticleCount is the number of floating particles per view
	ParticleCount = 15

	// Star ranges
	starSizeMin   = 1.0
	starSizeSpan  = 3.0
	starDelaySpan = 3.0

	// Particle ranges
	particleDurationMin  = 4.0
	particleDurationSpan = 4.0
	particleDelaySpan    = 4.0

	// Positions are percentages of the containing area
	positionSpan = 100.0
)

// Star is one twinkling marker of the starfield
type Star struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`     // Horizontal position, percent [0,100)
	Y     float64 `json:"y"`     // Vertical position, percent [0,100)
	Size  float64 `json:"size"`  // Diameter in pixels [1,4)
	Delay float64 `json:"delay"` // Animation start offset in seconds [0,3)
}

// Particle is one floating marker drifting upward and fading
type Particle struct {
	ID       int     `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Duration float64 `json:"duration"` // Full cycle length in seconds [4,8)
	Delay    float64 `json:"delay"`    // Animation start offset in seconds [0,4)
}

// Source yields uniform values in [0,1)
type Source interface {
	Float64() float64
}

// Generator draws star and particle collections from a uniform source
type Generator struct {
	src Source
}

// globalSource draws from the runtime's randomly seeded generator and is
// safe for concurrent use.
type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// NewGenerator creates a generator backed by src.
// A nil src uses the process-wide random source, which is safe for concurrent use.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = globalSource{}
	}
	return &Generator{src: src}
}

// GenerateStars returns exactly StarCount stars with ids 0..StarCount-1
func (g *Generator) GenerateStars() []Star {
	stars := make([]Star, StarCount)
	for i := range stars {
		stars[i] = Star{
			ID:    i,
			X:     g.src.Float64() * positionSpan,
			Y:     g.src.Float64() * positionSpan,
			Size:  g.src.Float64()*starSizeSpan + starSizeMin,
			Delay: g.src.Float64() * starDelaySpan,
		}
	}
	return stars
}

// GenerateParticles returns exactly ParticleCount particles with ids 0..ParticleCount-1
func (g *Generator) GenerateParticles() []Particle {
	particles := make([]Particle, ParticleCount)
	for i := range particles {
		particles[i] = Particle{
			ID:       i,
			X:        g.src.Float64() * positionSpan,
			Y:        g.src.Float64() * positionSpan,
			Duration: particleDurationMin + g.src.Float64()*particleDurationSpan,
			Delay:    g.src.Float64() * particleDelaySpan,
		}
	}
	return particles
}

// GenerateStars draws a starfield from the process-wide source
func GenerateStars() []Star {
	return NewGenerator(nil).GenerateStars()
}

// GenerateParticles draws a particle layer from the process-wide source
func GenerateParticles() []Particle {
	return NewGenerator(nil).GenerateParticles()
}

// Valid reports whether every field of s lies in its documented range
func (s Star) Valid() bool {
	return inRange(s.X, 0, positionSpan) &&
		inRange(s.Y, 0, positionSpan) &&
		inRange(s.Size, starSizeMin, starSizeMin+starSizeSpan) &&
		inRange(s.Delay, 0, starDelaySpan)
}

// Valid reports whether every field of p lies in its documented range
func (p Particle) Valid() bool {
	return inRange(p.X, 0, positionSpan) &&
		inRange(p.Y, 0, positionSpan) &&
		inRange(p.Duration, particleDurationMin, particleDurationMin+particleDurationSpan) &&
		inRange(p.Delay, 0, particleDelaySpan)
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v < hi
}
