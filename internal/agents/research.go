package agents

import (
	"regexp"
	"strings"

	"github.com/mwiater/paper2pod/internal/providers"
)

// AuthorNotFound is the value the research agent writes when the paper does
// not name its lead author. The script then uses GuestFallbackName.
const AuthorNotFound = "AUTHOR_NOT_FOUND"

// GuestFallbackName is how the host refers to a guest whose name is unknown.
const GuestFallbackName = "our guest researcher"

// Research is the output of the research stage.
type Research struct {
	Summary     string
	LeadAuthor  string
	AuthorFound bool
}

// GuestName returns the lead author or the generic fallback.
func (r Research) GuestName() string {
	if r.AuthorFound {
		return r.LeadAuthor
	}
	return GuestFallbackName
}

// NewResearcher returns the research agent, armed with the given search tool.
func NewResearcher(search providers.ToolDefinition) Agent {
	return Agent{
		Role: "Senior Academic Researcher",
		Goal: "Extract comprehensive and accurate information from the provided PDF, including the Lead Author's name.",
		Backstory: "You are an expert academic researcher. Your job is to read papers and extract key findings, " +
			"methodologies, and limitations. You are rigorous and fact-based. You verify everything against the text.",
		Tools: []providers.ToolDefinition{search},
	}
}

// ResearchTask is the research stage's task.
func ResearchTask() Task {
	return Task{
		Description: "Search the PDF and extract the main arguments, methodology, results, and limitations. " +
			"ALSO, explicitly find the name of the Lead Author (first author) of the paper. " +
			"Be detailed and cite specific sections if possible. Only use facts returned by the search tool.\n\n" +
			"Finish with a single line of the form 'Lead Author: <full name>'. If the search results do not " +
			"name the lead author, write 'Lead Author: " + AuthorNotFound + "'. Never guess a name.",
		ExpectedOutput: "A detailed summary of the paper with key facts, citations, AND the name of the Lead Author.",
	}
}

var leadAuthorPattern = regexp.MustCompile(`(?im)^[ \t*_#>-]*(?:lead|first)[ \t]+author[ \t]*\**[ \t]*[:\-][ \t]*\**[ \t]*(.*)$`)

// ExtractLeadAuthor finds the "Lead Author:" line in a research summary.
// It reports false when the line is missing, blank, or a not-found marker.
func ExtractLeadAuthor(summary string) (string, bool) {
	matches := leadAuthorPattern.FindAllStringSubmatch(summary, -1)
	if len(matches) == 0 {
		return AuthorNotFound, false
	}
	name := cleanAuthor(matches[len(matches)-1][1])
	if isNotFound(name) {
		return AuthorNotFound, false
	}
	return name, true
}

// ParseResearch wraps a research summary with its extracted author.
func ParseResearch(summary string) Research {
	author, found := ExtractLeadAuthor(summary)
	return Research{Summary: summary, LeadAuthor: author, AuthorFound: found}
}

func cleanAuthor(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_`\"' ")
	s = strings.TrimRight(s, ".,;")
	return strings.TrimSpace(s)
}

func isNotFound(name string) bool {
	lower := strings.ToLower(name)
	if lower == "" || strings.EqualFold(name, AuthorNotFound) {
		return true
	}
	switch lower {
	case "unknown", "n/a", "none", "not stated", "not mentioned":
		return true
	}
	return strings.Contains(lower, "not found") || strings.HasPrefix(lower, "unknown")
}
