package view

import (
	"errors"
	"testing"

	"github.com/klazomenai/landing-service/pkg/field"
)

// countingGenerator records how often each collection was generated
type countingGenerator struct {
	gen       *field.Generator
	stars     int
	particles int
}

func newCountingGenerator() *countingGenerator {
	return &countingGenerator{gen: field.NewGenerator(nil)}
}

func (c *countingGenerator) GenerateStars() []field.Star {
	c.stars++
	return c.gen.GenerateStars()
}

func (c *countingGenerator) GenerateParticles() []field.Particle {
	c.particles++
	return c.gen.GenerateParticles()
}

func TestGate_OpensOnce(t *testing.T) {
	var g Gate

	if g.IsOpen() {
		t.Fatal("Expected gate to start closed")
	}
	if !g.Open() {
		t.Error("Expected first Open to flip the gate")
	}
	if g.Open() {
		t.Error("Expected second Open to report no change")
	}
	if !g.IsOpen() {
		t.Error("Expected gate to stay open")
	}
}

func TestMount_StartsEmpty(t *testing.T) {
	v := Mount("view-1")

	if v.Ready() {
		t.Error("Expected gate closed after mount")
	}
	if len(v.Stars()) != 0 {
		t.Errorf("Expected 0 stars before activation, got %d", len(v.Stars()))
	}
	if len(v.Particles()) != 0 {
		t.Errorf("Expected 0 particles before activation, got %d", len(v.Particles()))
	}
	if v.MountedAt.IsZero() {
		t.Error("Expected mount time to be set")
	}
}

func TestActivate_MountScenario(t *testing.T) {
	v := Mount("view-1")
	gen := newCountingGenerator()

	if !v.Activate(gen) {
		t.Fatal("Expected first activation to generate")
	}

	if !v.Ready() {
		t.Error("Expected gate open after activation")
	}

	stars := v.Stars()
	if len(stars) != field.StarCount {
		t.Fatalf("Expected %d stars, got %d", field.StarCount, len(stars))
	}
	for i, s := range stars {
		if s.ID != i || !s.Valid() {
			t.Errorf("Invalid star %d: %+v", i, s)
		}
	}

	particles := v.Particles()
	if len(particles) != field.ParticleCount {
		t.Fatalf("Expected %d particles, got %d", field.ParticleCount, len(particles))
	}
	for i, p := range particles {
		if p.ID != i || !p.Valid() {
			t.Errorf("Invalid particle %d: %+v", i, p)
		}
	}
}

func TestActivate_CollectionsImmutableAfterGate(t *testing.T) {
	v := Mount("view-1")
	gen := newCountingGenerator()

	v.Activate(gen)
	first := v.Stars()

	if v.Activate(gen) {
		t.Error("Expected second activation to be a no-op")
	}
	if gen.stars != 1 || gen.particles != 1 {
		t.Errorf("Expected one generation each, got stars=%d particles=%d", gen.stars, gen.particles)
	}

	second := v.Stars()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Star %d changed after second activation", i)
		}
	}
}

func TestStars_ReturnsCopy(t *testing.T) {
	v := Mount("view-1")
	v.Activate(newCountingGenerator())

	stars := v.Stars()
	stars[0].X = -1

	if v.Stars()[0].X == -1 {
		t.Error("Expected caller mutation not to reach the view")
	}
}

func TestRemount_RegeneratesFromScratch(t *testing.T) {
	gen := field.NewGenerator(nil)

	a := Mount("a")
	a.Activate(gen)
	b := Mount("b")
	b.Activate(gen)

	sa, sb := a.Stars()[0], b.Stars()[0]
	if sa.X == sb.X && sa.Y == sb.Y {
		t.Error("Expected independent values across mounts")
	}
}

func TestSnapshotRestore(t *testing.T) {
	v := Mount("view-1")
	v.Activate(newCountingGenerator())

	restored, err := Restore(v.Snapshot())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if !restored.Ready() {
		t.Error("Expected restored view to be ready")
	}
	if restored.ID != v.ID {
		t.Errorf("Expected id %s, got %s", v.ID, restored.ID)
	}
	if restored.Stars()[42] != v.Stars()[42] {
		t.Error("Expected star values to survive a snapshot")
	}

	// The gate stays latched on restored views
	if restored.Activate(newCountingGenerator()) {
		t.Error("Expected restored view not to regenerate")
	}
}

func TestSnapshotRestore_Unactivated(t *testing.T) {
	restored, err := Restore(Mount("view-1").Snapshot())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.Ready() {
		t.Error("Expected gate to stay closed")
	}
}

func TestRestore_RejectsCorruptSnapshots(t *testing.T) {
	v := Mount("view-1")
	v.Activate(newCountingGenerator())
	good := v.Snapshot()

	shortStars := good
	shortStars.Stars = good.Stars[:10]

	badID := good
	badID.Stars = append([]field.Star(nil), good.Stars...)
	badID.Stars[3].ID = 99

	outOfRange := good
	outOfRange.Particles = append([]field.Particle(nil), good.Particles...)
	outOfRange.Particles[0].Duration = 9

	earlyMarkers := Snapshot{ID: "x", Stars: good.Stars}

	tests := []struct {
		name string
		snap Snapshot
	}{
		{name: "missing id", snap: Snapshot{}},
		{name: "short starfield", snap: shortStars},
		{name: "non-sequential ids", snap: badID},
		{name: "out of range particle", snap: outOfRange},
		{name: "markers before gate", snap: earlyMarkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore(tt.snap)
			if !errors.Is(err, ErrCorruptSnapshot) {
				t.Errorf("Expected ErrCorruptSnapshot, got %v", err)
			}
		})
	}
}
