package field

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Timing curves understood by the stylesheet
const (
	EaseInOut = "ease-in-out"
	EaseOut   = "ease-out"
	Linear    = "linear"
)

// Transition describes how one marker or hero element animates
type Transition struct {
	Duration float64 // Seconds per cycle
	Delay    float64 // Seconds before the first cycle starts
	Repeat   bool    // Loop forever when true, play once otherwise
	Ease     string
}

// Keyframes lists the waypoints an animated property passes through
type Keyframes struct {
	Opacity    []float64
	Scale      []float64
	TranslateY []float64 // Device-independent pixels
	Rotate     []float64 // Degrees
}

var (
	// StarKeyframes is the twinkle every star runs
	StarKeyframes = Keyframes{
		Opacity: []float64{0.4, 1, 0.4},
		Scale:   []float64{0.8, 1.3, 0.8},
	}

	// ParticleKeyframes floats a particle 80px up and back while it fades in and out
	ParticleKeyframes = Keyframes{
		TranslateY: []float64{0, -80, 0},
		Opacity:    []float64{0, 1, 0},
	}

	// HaloKeyframes is the pulse behind the call-to-action
	HaloKeyframes = Keyframes{
		Scale:   []float64{1, 1.1, 1},
		Opacity: []float64{0, 0.1, 0},
	}

	// SpinKeyframes turns the heading sparkle a full circle
	SpinKeyframes = Keyframes{
		Rotate: []float64{0, 360},
	}
)

// CSS renders k as an @keyframes rule called name. Waypoints are spaced
// evenly from 0% to 100%; a property with fewer waypoints holds its last value.
func (k Keyframes) CSS(name string) string {
	steps := max(len(k.Opacity), len(k.Scale), len(k.TranslateY), len(k.Rotate))

	var b strings.Builder
	fmt.Fprintf(&b, "@keyframes %s{", name)
	for i := 0; i < steps; i++ {
		pct := 0.0
		if steps > 1 {
			pct = float64(i) * 100 / float64(steps-1)
		}
		fmt.Fprintf(&b, "%s%%{", seconds(pct))
		if len(k.Opacity) > 0 {
			fmt.Fprintf(&b, "opacity:%s;", seconds(waypoint(k.Opacity, i)))
		}

		var transforms []string
		if len(k.TranslateY) > 0 {
			transforms = append(transforms, "translateY("+seconds(waypoint(k.TranslateY, i))+"px)")
		}
		if len(k.Scale) > 0 {
			transforms = append(transforms, "scale("+seconds(waypoint(k.Scale, i))+")")
		}
		if len(k.Rotate) > 0 {
			transforms = append(transforms, "rotate("+seconds(waypoint(k.Rotate, i))+"deg)")
		}
		if len(transforms) > 0 {
			fmt.Fprintf(&b, "transform:%s;", strings.Join(transforms, " "))
		}
		b.WriteString("}")
	}
	b.WriteString("}")
	return b.String()
}

func waypoint(values []float64, i int) float64 {
	if i >= len(values) {
		return values[len(values)-1]
	}
	return values[i]
}

// StarTransition returns the looping twinkle timing for s.
// Cycle length is 2 + (delay mod 2) seconds.
func StarTransition(s Star) Transition {
	return Transition{
		Duration: 2 + math.Mod(s.Delay, 2),
		Delay:    s.Delay,
		Repeat:   true,
		Ease:     EaseInOut,
	}
}

// ParticleTransition returns the looping float timing for p
func ParticleTransition(p Particle) Transition {
	return Transition{
		Duration: p.Duration,
		Delay:    p.Delay,
		Repeat:   true,
		Ease:     EaseInOut,
	}
}

// HaloTransition returns the call-to-action pulse timing
func HaloTransition() Transition {
	return Transition{Duration: 2, Repeat: true, Ease: EaseInOut}
}

// Entrance is a one-shot transition from an offset state to rest
type Entrance struct {
	Transition Transition
	FromY      float64 // Initial vertical offset in px
	FromScale  float64 // Initial scale, 0 means unscaled
}

// Hero entrance animations, in play order
var (
	HeadingEntrance  = Entrance{FromY: -50, Transition: Transition{Duration: 1, Delay: 0, Ease: EaseOut}}
	SubtitleEntrance = Entrance{FromY: 20, Transition: Transition{Duration: 1, Delay: 0.3, Ease: EaseOut}}
	FeatureEntrance  = Entrance{FromY: 30, Transition: Transition{Duration: 1, Delay: 0.6, Ease: EaseOut}}
	CTAEntrance      = Entrance{FromScale: 0.8, Transition: Transition{Duration: 1, Delay: 0.9, Ease: EaseOut}}
	FootnoteEntrance = Entrance{Transition: Transition{Duration: 1, Delay: 1.2, Ease: EaseOut}}
)

// SparkleSpin rotates the heading icon a full turn every 10 seconds
var SparkleSpin = Transition{Duration: 10, Repeat: true, Ease: Linear}

// CSS renders t as inline animation declarations
func (t Transition) CSS() string {
	var b strings.Builder
	fmt.Fprintf(&b, "animation-duration:%ss;", seconds(t.Duration))
	fmt.Fprintf(&b, "animation-delay:%ss;", seconds(t.Delay))
	fmt.Fprintf(&b, "animation-timing-function:%s;", t.Ease)
	if t.Repeat {
		b.WriteString("animation-iteration-count:infinite;")
	} else {
		b.WriteString("animation-iteration-count:1;animation-fill-mode:both;")
	}
	return b.String()
}

// seconds formats v with at most three decimals and no trailing zeros
func seconds(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// truncated formats v cut down to three decimals so a value below a
// bound never renders at the bound
func truncated(v float64) string {
	return strconv.FormatFloat(math.Floor(v*1000)/1000, 'f', -1, 64)
}

// Percent formats a position for a left/top style value
func Percent(v float64) string {
	return truncated(v) + "%"
}

// Pixels formats a length for a width/height style value
func Pixels(v float64) string {
	return truncated(v) + "px"
}
