package service

import (
	"strings"

	"github.com/andreypavlenko/scout/modules/concierge/model"
)

// intentKeywords maps lowercased trigger phrases to intents, checked in
// order: the more specific intents first.
var intentKeywords = []struct {
	intent  model.QuestionType
	phrases []string
}{
	{model.IntentLinkedInPost, []string{
		"linkedin post", "linkedin", "write a post", "generate post",
		"draft a post", "social post",
	}},
	{model.IntentFeedbackFlow, []string{
		"meeting feedback", "feedback session", "start feedback",
		"give feedback", "capture feedback",
	}},
	{model.IntentDirections, []string{
		"directions", "how do i get to", "how to get to", "way to",
		"navigate to", "route to",
	}},
	{model.IntentStartupInfo, []string{
		"startup", "company", "companies", "founder", "funding", "invest",
	}},
	{model.IntentEventInfo, []string{
		"event", "session", "schedule", "agenda", "talk", "keynote", "workshop",
	}},
}

// ClassifyIntent lower-cases the question and matches it against the intent
// keyword table. A user-context hint breaks ties when nothing matches.
func ClassifyIntent(question string, userContext *model.UserContext) model.QuestionType {
	q := strings.ToLower(question)

	for _, entry := range intentKeywords {
		for _, phrase := range entry.phrases {
			if strings.Contains(q, phrase) {
				return entry.intent
			}
		}
	}

	if userContext != nil && userContext.Hint != "" {
		switch model.QuestionType(userContext.Hint) {
		case model.IntentLinkedInPost, model.IntentFeedbackFlow, model.IntentDirections,
			model.IntentStartupInfo, model.IntentEventInfo:
			return model.QuestionType(userContext.Hint)
		}
	}

	return model.IntentGeneral
}
