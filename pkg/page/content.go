package page

// ChatPath is the only navigation target of the landing view
const ChatPath = "/chat"

// Feature is one labeled badge under the subtitle
type Feature struct {
	Label string
	Icon  string // Icon name from the embedded sprite
	Tone  string // Color family used by the stylesheet
	Tilt  int    // Hover rotation in degrees
}

// Hero is the static copy of the landing view
type Hero struct {
	TitleLead   string
	TitleAccent string
	Subtitle    string
	Tagline     string
	Features    []Feature
	CTALabel    string
	CTAHref     string
	Footnote    string
}

// DefaultHero returns the landing copy
func DefaultHero() Hero {
	return Hero{
		TitleLead:   "Career",
		TitleAccent: "Guide AI",
		Subtitle:    "Your intelligent career companion powered by cutting-edge AI technology",
		Tagline:     "Get personalized guidance, discover opportunities, and accelerate your professional journey",
		Features: []Feature{
			{Label: "AI Powered", Icon: "brain", Tone: "blue", Tilt: 5},
			{Label: "Personalized", Icon: "target", Tone: "purple", Tilt: -5},
			{Label: "Fast Results", Icon: "zap", Tone: "pink", Tilt: 5},
		},
		CTALabel: "Start Your Journey",
		CTAHref:  ChatPath,
		Footnote: "✨ Join thousands of professionals who have transformed their careers",
	}
}
