package feedback

import (
	"sort"
	"strings"
)

// Selector names the request field a profile reads its style key from.
type Selector string

const (
	SelectorPerspective Selector = "perspective"
	SelectorTone        Selector = "tone"
)

// Output field names used in the JSON response.
const (
	OutputFieldContent = "content"
	OutputFieldOutput  = "output"
)

// Profile describes one variant of the feedback handler: which style
// templates it offers, how the answer is structured and which generation
// defaults it uses when the service configuration leaves them unset.
type Profile struct {
	Name         string
	Selector     Selector
	OutputField  string
	Styles       map[string]string
	DefaultStyle string
	Directive    string

	AcceptsNotes     bool
	AcceptsDurations bool

	Model       string
	MaxTokens   int
	Temperature float64
}

// DefaultProfileName is the profile served on the bare endpoint.
const DefaultProfileName = "perspective"

const structureDirective = `Antwortstruktur:
1) Spiegele Gefühl & Bedürfnis.
2) Kurze Erklärung (1–2 Sätze) oder ein passender Bibelbezug.
3) 1–3 konkrete Mikro-Schritte für heute.
4) Abschluss: eine Reflexionsfrage oder ein kurzes Zitat.`

const toneDirective = `Antwortstruktur:
1) Spiegele in einem Satz, was du verstanden hast (Gefühl, Bedürfnis).
2) Eine kurze Einordnung.
3) Ein bis zwei kleine, machbare Schritte.
4) Eine offene Frage zur Selbstwahrnehmung.`

const reflectionDirective = `Antwortstruktur:
1) Spiegele Gefühl & Bedürfnis, beziehe die Notizen als Zusatzmaterial ein.
2) Kurze Erklärung oder Schriftbezug (Röm 5,3–5; Jak 1,2–4; Mt 11,28–30 nur wenn passend).
3) 2–3 konkrete Mikro-Schritte; berücksichtige, wie viel Zeit pro Schritt verwendet wurde.
4) Abschlussfrage oder kurzes Zitat.`

var profiles = map[string]*Profile{
	"perspective": {
		Name:         "perspective",
		Selector:     SelectorPerspective,
		OutputField:  OutputFieldOutput,
		Styles:       perspectiveStyles,
		DefaultStyle: "psychologisch",
		Directive:    structureDirective,
		Model:        "gpt-4o-mini",
		MaxTokens:    500,
		Temperature:  0.7,
	},
	"tone": {
		Name:         "tone",
		Selector:     SelectorTone,
		OutputField:  OutputFieldContent,
		Styles:       toneStyles,
		DefaultStyle: "warm",
		Directive:    toneDirective,
		Model:        "gpt-4o-mini",
		MaxTokens:    400,
		Temperature:  0.6,
	},
	"reflection": {
		Name:             "reflection",
		Selector:         SelectorPerspective,
		OutputField:      OutputFieldContent,
		Styles:           perspectiveStyles,
		DefaultStyle:     "psychologisch",
		Directive:        reflectionDirective,
		AcceptsNotes:     true,
		AcceptsDurations: true,
		Model:            "gpt-4o",
		MaxTokens:        700,
		Temperature:      0.5,
	},
}

// LookupProfile finds a profile by name, case-insensitively.
func LookupProfile(name string) (*Profile, bool) {
	p, ok := profiles[normalizeKey(name)]
	return p, ok
}

// DefaultProfile returns the perspective profile.
func DefaultProfile() *Profile {
	return profiles[DefaultProfileName]
}

// ProfileNames returns all profile names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StyleKeys returns the profile's style keys, sorted.
func (p *Profile) StyleKeys() []string {
	keys := make([]string, 0, len(p.Styles))
	for k := range p.Styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResolveStyle maps a selector value to a style key and its template.
// Unknown or empty values fall back to the profile's default style.
func (p *Profile) ResolveStyle(selector string) (key, template string) {
	key = normalizeKey(selector)
	if tmpl, ok := p.Styles[key]; ok {
		return key, tmpl
	}
	return p.DefaultStyle, p.Styles[p.DefaultStyle]
}

// Selection returns the raw style selector from the request field this
// profile reads.
func (p *Profile) Selection(req CoachingRequest) string {
	if p.Selector == SelectorTone {
		return req.Tone
	}
	return req.Perspective
}

func (p *Profile) String() string {
	return p.Name + " (" + string(p.Selector) + ": " + strings.Join(p.StyleKeys(), ", ") + ")"
}
