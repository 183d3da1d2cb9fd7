package transcript

import (
	"strings"
	"testing"
)

func TestSegmentAlternatingLabels(t *testing.T) {
	text := "Host: Welcome to the show.\nGuest: Thanks for having me.\nHost: Let's dig in.\nGuest: Sure."
	turns := Segment(text)
	want := []Turn{
		{SpeakerHost, "Welcome to the show."},
		{SpeakerGuest, "Thanks for having me."},
		{SpeakerHost, "Let's dig in."},
		{SpeakerGuest, "Sure."},
	}
	if len(turns) != len(want) {
		t.Fatalf("expected %d turns, got %d: %+v", len(want), len(turns), turns)
	}
	for i := range want {
		if turns[i] != want[i] {
			t.Fatalf("turn %d = %+v, want %+v", i, turns[i], want[i])
		}
	}
}

func TestSegmentResearcherIsGuest(t *testing.T) {
	turns := Segment("Host: Hi.\nResearcher: Hello there.")
	if len(turns) != 2 || turns[1].Speaker != SpeakerGuest || turns[1].Text != "Hello there." {
		t.Fatalf("expected Researcher mapped to Guest, got %+v", turns)
	}
}

func TestSegmentBoldLabels(t *testing.T) {
	turns := Segment("**Host:** Hi everyone.\n**Guest**: Great to be here.")
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %+v", turns)
	}
	if turns[0].Speaker != SpeakerHost || turns[0].Text != "Hi everyone." {
		t.Fatalf("unexpected first turn %+v", turns[0])
	}
	if turns[1].Speaker != SpeakerGuest || turns[1].Text != "Great to be here." {
		t.Fatalf("unexpected second turn %+v", turns[1])
	}
}

func TestSegmentDiscardsPreamble(t *testing.T) {
	turns := Segment("Episode 12: Transformers\n\nHost: Hello.\nGuest: Hi.")
	if len(turns) != 2 || turns[0].Text != "Hello." {
		t.Fatalf("expected preamble dropped, got %+v", turns)
	}
}

func TestSegmentNoLabels(t *testing.T) {
	turns := Segment("  Just a monologue about graphs.  \n")
	if len(turns) != 1 {
		t.Fatalf("expected one untagged turn, got %+v", turns)
	}
	if turns[0].Speaker != SpeakerNone || turns[0].Text != "Just a monologue about graphs." {
		t.Fatalf("unexpected untagged turn %+v", turns[0])
	}
	if got := Segment("   "); len(got) != 0 {
		t.Fatalf("expected no turns for blank input, got %+v", got)
	}
}

func TestSegmentKeepsLabelledContent(t *testing.T) {
	text := "Host: one two three.\nGuest: four: five six."
	var joined []string
	for _, turn := range Segment(text) {
		joined = append(joined, turn.Text)
	}
	got := strings.Join(joined, " ")
	if got != "one two three. four: five six." {
		t.Fatalf("content lost: %q", got)
	}
}

func TestDecodeStructured(t *testing.T) {
	raw := "```json\n{\"dialogue\":[{\"speaker\":\"Host\",\"text\":\"Hi I'm Sam.\"},{\"speaker\":\"Guest\",\"text\":\" Thanks Sam. \"}]}\n```"
	turns, err := DecodeStructured(raw)
	if err != nil {
		t.Fatalf("DecodeStructured returned error: %v", err)
	}
	if len(turns) != 2 || turns[1].Text != "Thanks Sam." {
		t.Fatalf("unexpected turns %+v", turns)
	}
}

func TestDecodeStructuredRejectsUnknownSpeaker(t *testing.T) {
	_, err := DecodeStructured(`{"dialogue":[{"speaker":"Narrator","text":"hello"}]}`)
	if err == nil || !strings.Contains(err.Error(), "invalid dialogue") {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestFromOutputFallsBackToSegmenter(t *testing.T) {
	tr, structured := FromOutput("Host: Hi.\nGuest: Hello.", true)
	if structured {
		t.Fatal("expected fallback for plain-text output")
	}
	if len(tr.Turns) != 2 {
		t.Fatalf("expected segmented turns, got %+v", tr.Turns)
	}

	tr, structured = FromOutput(`{"dialogue":[{"speaker":"Host","text":"Hi."}]}`, true)
	if !structured || tr.Raw != "Host: Hi." {
		t.Fatalf("expected structured transcript, got %+v structured=%v", tr, structured)
	}
}
