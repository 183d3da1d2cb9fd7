package agents

import (
	"fmt"

	"github.com/mwiater/paper2pod/internal/appconfig"
)

// NewScriptWriter returns the podcast host agent for persona.
func NewScriptWriter(persona appconfig.Persona) Agent {
	return Agent{
		Role: "Podcast Host",
		Goal: "Create an engaging podcast script based on the research findings.",
		Backstory: fmt.Sprintf("You are a charismatic podcast host. %s You turn dry academic facts into "+
			"entertaining conversations. You are talking to the Researcher.", persona.Description),
	}
}

// ScriptTask builds the script stage's task. research becomes its context.
func ScriptTask(hostName string, research Research, structured bool) Task {
	guest := "the Guest (the Lead Author found in the research)"
	naming := "The Guest should be referred to as 'Dr. [Last Name]' or by their full name."
	if research.AuthorFound {
		guest = fmt.Sprintf("the Guest (%s, the Lead Author)", research.LeadAuthor)
	} else {
		naming = fmt.Sprintf("The lead author's name is unknown. Refer to the Guest as '%s' and do not invent a name.", GuestFallbackName)
	}

	description := fmt.Sprintf(`Write a dialogue script for a podcast episode between the Host (named %[1]s) and %[2]s.

Use the research findings to inform the conversation.
The Host (%[1]s) should introduce themselves and the Guest by name.
%[3]s
`, hostName, guest, naming)

	task := Task{Context: []string{research.Summary}, Async: true}
	if structured {
		task.JSONMode = true
		task.Description = description + `
Respond with a JSON object and nothing else, in this shape:
{"dialogue":[{"speaker":"Host","text":"Welcome back everyone, I'm ` + hostName + `..."},{"speaker":"Guest","text":"Thanks for having me, ` + hostName + `."}]}
"speaker" must be exactly "Host" or "Guest". The first entry must be the Host.`
		task.ExpectedOutput = `A JSON object with a "dialogue" array of {"speaker","text"} records.`
		return task
	}

	task.Description = description + fmt.Sprintf(`
IMPORTANT FORMATTING RULES:
1. The output must START IMMEDIATELY with the dialogue. Do NOT include any title, 'Podcast Script', or markdown headers at the top.
2. Use strictly 'Host:' and 'Guest:' as the speaker labels for the dialogue blocks, even though they use their names in the text.
Example:
Host: Welcome back everyone, I'm %[1]s...
Guest: Thanks for having me, %[1]s.`, hostName)
	task.ExpectedOutput = `A podcast script in dialogue format starting immediately with "Host:".`
	return task
}
