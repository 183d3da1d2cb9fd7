// internal/appconfig/personas.go
package appconfig

import (
	"math/rand"
	"strings"
)

// Persona is a selectable host personality for the script agent.
type Persona struct {
	Name        string
	Label       string
	Description string
}

// Gender is the assumed gender label of a voice, used only to pick a host display name.
type Gender string

const (
	GenderFemale Gender = "Female"
	GenderMale   Gender = "Male"
)

// Voice is a selectable text-to-speech voice.
type Voice struct {
	ID     string
	Label  string
	Gender Gender
}

var personas = []Persona{
	{
		Name:        "standard",
		Label:       "Standard (Informative & Balanced)",
		Description: "You are professional but approachable. You want to understand the truth.",
	},
	{
		Name:        "debate",
		Label:       "Heated Debate (Skeptic vs Believer)",
		Description: "You are a skeptic. You question everything and play devil's advocate. You want to find holes in the argument.",
	},
	{
		Name:        "eli5",
		Label:       "ELI5 (Simple & Fun)",
		Description: "You explain things like I'm 5. You use simple analogies and avoid jargon. You are super excited.",
	},
	{
		Name:        "deepdive",
		Label:       "Deep Dive (Technical & Niche)",
		Description: "You are a technical expert. You love the gritty details and complex math. You use technical jargon freely.",
	},
}

var voices = []Voice{
	{ID: "alloy", Label: "Alloy (Female)", Gender: GenderFemale},
	{ID: "echo", Label: "Echo (Male)", Gender: GenderMale},
	{ID: "fable", Label: "Fable (Male)", Gender: GenderMale},
	{ID: "onyx", Label: "Onyx (Male)", Gender: GenderMale},
	{ID: "nova", Label: "Nova (Female)", Gender: GenderFemale},
	{ID: "shimmer", Label: "Shimmer (Female)", Gender: GenderFemale},
}

var hostNames = map[Gender][]string{
	GenderFemale: {"Sarah", "Emma", "Chloe", "Olivia", "Ava"},
	GenderMale:   {"Mike", "David", "James", "Robert", "John"},
}

// Personas returns the selectable personas in display order.
func Personas() []Persona {
	out := make([]Persona, len(personas))
	copy(out, personas)
	return out
}

// PersonaNames returns the persona identifiers in display order.
func PersonaNames() []string {
	names := make([]string, 0, len(personas))
	for _, p := range personas {
		names = append(names, p.Name)
	}
	return names
}

// LookupPersona finds a persona by identifier, case-insensitively.
func LookupPersona(name string) (Persona, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range personas {
		if p.Name == name {
			return p, true
		}
	}
	return Persona{}, false
}

// Voices returns the selectable voices in display order.
func Voices() []Voice {
	out := make([]Voice, len(voices))
	copy(out, voices)
	return out
}

// VoiceIDs returns the voice identifiers in display order.
func VoiceIDs() []string {
	ids := make([]string, 0, len(voices))
	for _, v := range voices {
		ids = append(ids, v.ID)
	}
	return ids
}

// LookupVoice finds a voice by identifier, case-insensitively.
func LookupVoice(id string) (Voice, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, v := range voices {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}

// HostName picks a display name for the host matching the voice's gender.
// A nil rng uses the package-level source.
func HostName(voice Voice, rng *rand.Rand) string {
	names := hostNames[voice.Gender]
	if len(names) == 0 {
		names = hostNames[GenderFemale]
	}
	if rng == nil {
		return names[rand.Intn(len(names))]
	}
	return names[rng.Intn(len(names))]
}
