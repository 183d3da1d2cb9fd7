// Package transcript turns script-agent output into speaker-attributed turns.
//
// Two paths exist. Structured output ({"dialogue":[{"speaker","text"}]}) is
// decoded and validated directly. Free text is split on speaker labels by
// Segment, which tolerates bold markup and the "Researcher" synonym.
package transcript

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Speaker labels.
const (
	SpeakerHost  = "Host"
	SpeakerGuest = "Guest"
	// SpeakerNone marks an untagged turn that is routed to the default voice.
	SpeakerNone = ""
)

// Turn is one speaker-attributed span of dialogue.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Transcript is the script as produced by the script agent plus its turns.
type Transcript struct {
	Raw   string
	Turns []Turn
}

var labelPattern = regexp.MustCompile(`(\**Host\**:|\**Guest\**:|\**Researcher\**:)`)

// Segment splits text on speaker labels. Content before the first label is
// discarded. When no label is present the trimmed input becomes one untagged turn.
func Segment(text string) []Turn {
	bounds := labelPattern.FindAllStringIndex(text, -1)
	if len(bounds) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []Turn{{Speaker: SpeakerNone, Text: trimmed}}
	}

	var turns []Turn
	for i, b := range bounds {
		speaker := speakerForLabel(text[b[0]:b[1]])
		end := len(text)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}
		content := strings.TrimSpace(text[b[1]:end])
		if content == "" {
			continue
		}
		turns = append(turns, Turn{Speaker: speaker, Text: stripLeadingBold(content)})
	}
	return turns
}

func speakerForLabel(label string) string {
	name := strings.TrimSuffix(strings.Trim(label, "*"), ":")
	name = strings.Trim(name, "*")
	if name == SpeakerHost {
		return SpeakerHost
	}
	return SpeakerGuest
}

// stripLeadingBold removes the closing "**" left behind by labels written as "**Host:**".
func stripLeadingBold(s string) string {
	if strings.HasPrefix(s, "**") {
		return strings.TrimSpace(strings.TrimPrefix(s, "**"))
	}
	return s
}

// Render writes turns back out in "Speaker: text" lines. Untagged turns are written bare.
func Render(turns []Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		if t.Speaker != SpeakerNone {
			b.WriteString(t.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

const dialogueSchema = `{
  "type": "object",
  "required": ["dialogue"],
  "properties": {
    "dialogue": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["speaker", "text"],
        "properties": {
          "speaker": {"type": "string", "enum": ["Host", "Guest"]},
          "text": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

var dialogueLoader = gojsonschema.NewStringLoader(dialogueSchema)

// DecodeStructured parses a JSON dialogue document and validates it against
// the dialogue schema.
func DecodeStructured(raw string) ([]Turn, error) {
	payload := strings.TrimSpace(stripCodeFence(raw))
	if payload == "" {
		return nil, fmt.Errorf("empty dialogue document")
	}

	result, err := gojsonschema.Validate(dialogueLoader, gojsonschema.NewStringLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("parse dialogue: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid dialogue: %s", strings.Join(msgs, "; "))
	}

	var doc struct {
		Dialogue []Turn `json:"dialogue"`
	}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("decode dialogue: %w", err)
	}
	turns := make([]Turn, 0, len(doc.Dialogue))
	for _, t := range doc.Dialogue {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		turns = append(turns, Turn{Speaker: t.Speaker, Text: text})
	}
	return turns, nil
}

// FromOutput builds a Transcript from script output. Structured output is
// preferred; anything that fails validation falls back to Segment.
func FromOutput(output string, structured bool) (Transcript, bool) {
	if structured {
		if turns, err := DecodeStructured(output); err == nil && len(turns) > 0 {
			return Transcript{Raw: Render(turns), Turns: turns}, true
		}
	}
	return Transcript{Raw: strings.TrimSpace(output), Turns: Segment(output)}, false
}

func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		trimmed = trimmed[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
}
