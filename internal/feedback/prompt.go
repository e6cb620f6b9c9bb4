package feedback

import (
	"sort"
	"strconv"
	"strings"

	"github.com/nbjcoach/nbjfeedback/pkg/llm"
)

const persona = `Du bist ein einfühlsamer, christlich geerdeter Coach mit biblisch-psychologischem Hintergrund.
Antworte kurz, klar, respektvoll und ohne Druck. Vermeide religiöse Floskeln.
Leiden und Not werden in Reifeprozessen durchlebt (Röm 5,3-5; Jak 1,2-4). Jesus nimmt die Last
nicht einfach weg, sondern gibt Kraft, sie zu tragen (Mt 11,28-30), ohne billige Vertröstung.
Sei sachlich und praxisnah (Selbstreflexion, konkrete Schritte), maximal 6–8 kurze Absätze.
Ziel: Hilfe zur Selbstreflexion entlang NBJ (Not-Bedürfnis-Jesus).`

const thirdPartyNotice = `Hinweis: Alle Angaben stammen vom Nutzer selbst und dienen seiner eigenen Reflexion. ` +
	`Behandle sie nicht als Aussagen über Dritte und ziehe keine Schlüsse über andere Personen.`

// Prompt is the composed system and user message pair.
type Prompt struct {
	System string
	User   string
	Style  string
}

// Messages returns the prompt as chat messages.
func (p Prompt) Messages() []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: p.System},
		{Role: llm.RoleUser, Content: p.User},
	}
}

// BuildPrompt composes the system instruction and the user message for a
// request. The result depends only on its inputs.
func BuildPrompt(p *Profile, req CoachingRequest) Prompt {
	style, template := p.ResolveStyle(p.Selection(req))

	var sys strings.Builder
	sys.WriteString(persona)
	sys.WriteString("\n\nSprache: ")
	sys.WriteString(LanguageName(req.LanguageCode()))
	sys.WriteString("\nPerspektive: ")
	sys.WriteString(style)
	sys.WriteString("\n\n")
	sys.WriteString(template)
	sys.WriteString("\n\n")
	sys.WriteString(p.Directive)

	var user strings.Builder
	user.WriteString("Sprache: ")
	user.WriteString(req.LanguageCode())
	user.WriteString("\nNBJ-Schritt: ")
	user.WriteString(strconv.Itoa(req.StepNumber()))
	user.WriteString("\nEingabetext: ")
	user.WriteString(req.Text)
	if p.AcceptsNotes && strings.TrimSpace(req.Notes) != "" {
		user.WriteString("\nNotizen (Zusatzmaterial): ")
		user.WriteString(req.Notes)
	}
	if p.AcceptsDurations && len(req.Durations) > 0 {
		user.WriteString("\nDauer pro Schritt (Sekunden): ")
		user.WriteString(formatDurations(req.Durations))
	}
	user.WriteString("\n\n")
	user.WriteString(thirdPartyNotice)

	return Prompt{System: sys.String(), User: user.String(), Style: style}
}

// formatDurations renders the map as "k=v" pairs in a stable order:
// numeric keys ascending first, then the rest lexically.
func formatDurations(d map[string]float64) string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			if a != b {
				return a < b
			}
			return keys[i] < keys[j]
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.FormatFloat(d[k], 'f', -1, 64))
	}
	return strings.Join(parts, ", ")
}
