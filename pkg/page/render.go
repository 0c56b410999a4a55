// Package page renders the landing view, its marker layers and the chat
// placeholder from the embedded templates.
package page

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/klazomenai/landing-service/pkg/field"
	"github.com/klazomenai/landing-service/pkg/view"
	"github.com/klazomenai/landing-service/web"
)

// ErrGateClosed is returned when layers are requested before the view activated
var ErrGateClosed = errors.New("environment gate closed")

// Marker is one positioned, animated star or particle
type Marker struct {
	ID    int
	Style template.CSS
}

// Layers is the data behind the star and particle layers
type Layers struct {
	Stars     []Marker
	Particles []Marker
}

// Entrances carries the inline timing of every hero element
type Entrances struct {
	Heading  template.CSS
	Subtitle template.CSS
	Features template.CSS
	CTA      template.CSS
	Footnote template.CSS
	Sparkle  template.CSS
	Halo     template.CSS
}

// LandingData is the data behind the landing document
type LandingData struct {
	Hero      Hero
	Entrances Entrances
	Keyframes template.CSS
	ViewID    string
	LayersURL string
	Ready     bool
	Layers    Layers
}

// Renderer executes the embedded templates
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Landing renders the full document. The marker layers appear only once
// the view's environment gate is open.
func (r *Renderer) Landing(w io.Writer, v *view.View, layersURL string) error {
	data := LandingData{
		Hero:      DefaultHero(),
		Entrances: defaultEntrances(),
		Keyframes: keyframeSheet(),
		ViewID:    v.ID,
		LayersURL: layersURL,
		Ready:     v.Ready(),
	}
	if data.Ready {
		data.Layers = buildLayers(v)
	}
	return r.templates.ExecuteTemplate(w, "landing.html", data)
}

// Layers renders the star and particle fragment for the client-capable pass
func (r *Renderer) Layers(w io.Writer, v *view.View) error {
	if !v.Ready() {
		return ErrGateClosed
	}
	return r.templates.ExecuteTemplate(w, "layers", buildLayers(v))
}

// Chat renders the placeholder secondary view
func (r *Renderer) Chat(w io.Writer) error {
	return r.templates.ExecuteTemplate(w, "chat.html", DefaultHero())
}

func buildLayers(v *view.View) Layers {
	stars := v.Stars()
	particles := v.Particles()

	layers := Layers{
		Stars:     make([]Marker, len(stars)),
		Particles: make([]Marker, len(particles)),
	}
	for i, s := range stars {
		layers.Stars[i] = Marker{ID: s.ID, Style: starStyle(s)}
	}
	for i, p := range particles {
		layers.Particles[i] = Marker{ID: p.ID, Style: particleStyle(p)}
	}
	return layers
}

// Styles are assembled only from formatted numbers and fixed keywords.
func starStyle(s field.Star) template.CSS {
	size := field.Pixels(s.Size)
	return template.CSS("left:" + field.Percent(s.X) +
		";top:" + field.Percent(s.Y) +
		";width:" + size +
		";height:" + size +
		";" + field.StarTransition(s).CSS())
}

func particleStyle(p field.Particle) template.CSS {
	return template.CSS("left:" + field.Percent(p.X) +
		";top:" + field.Percent(p.Y) +
		";" + field.ParticleTransition(p).CSS())
}

func entranceStyle(e field.Entrance) template.CSS {
	css := e.Transition.CSS() + "--from-y:" + field.Pixels(e.FromY) + ";"
	scale := e.FromScale
	if scale == 0 {
		scale = 1
	}
	css += "--from-scale:" + strconv.FormatFloat(scale, 'f', -1, 64) + ";"
	return template.CSS(css)
}

// Animation names referenced by the stylesheet
const (
	twinkleAnimation = "twinkle"
	floatAnimation   = "float"
	haloAnimation    = "halo"
	spinAnimation    = "spin"
)

// keyframeSheet renders the looping animations from their waypoint tables
func keyframeSheet() template.CSS {
	return template.CSS(field.StarKeyframes.CSS(twinkleAnimation) +
		field.ParticleKeyframes.CSS(floatAnimation) +
		field.HaloKeyframes.CSS(haloAnimation) +
		field.SpinKeyframes.CSS(spinAnimation))
}

func defaultEntrances() Entrances {
	return Entrances{
		Heading:  entranceStyle(field.HeadingEntrance),
		Subtitle: entranceStyle(field.SubtitleEntrance),
		Features: entranceStyle(field.FeatureEntrance),
		CTA:      entranceStyle(field.CTAEntrance),
		Footnote: entranceStyle(field.FootnoteEntrance),
		Sparkle:  template.CSS(field.SparkleSpin.CSS()),
		Halo:     template.CSS(field.HaloTransition().CSS()),
	}
}
