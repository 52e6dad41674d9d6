package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andreypavlenko/scout/internal/platform/llm"
	"github.com/andreypavlenko/scout/modules/concierge/model"
)

const (
	linkedInTemperature = 0.8
	linkedInMaxTokens   = 2500
)

const linkedInSystemPrompt = `You write LinkedIn posts for conference attendees. Every post follows this structure, in order:

1. Hook: one attention-grabbing opening line
2. Context: one or two sentences of setup
3. Body: three to five short bullet points
4. Evidence: one concrete number, quote, or observation
5. Tags: mention the given people or companies with @
6. Call to action: one closing line inviting engagement
7. Hashtags: five to eight relevant hashtags on the final line

Write in first person, keep it under 250 words, no emojis unless the topic begs for one.`

// GenerateLinkedInPost runs the deterministic-template post sub-flow.
func (o *Orchestrator) GenerateLinkedInPost(ctx context.Context, req *model.LinkedInPostRequest) (string, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return "", model.ErrTopicRequired
	}
	if !o.gateway.Available() {
		return "", model.ErrUnavailable
	}

	temp := linkedInTemperature
	resp, err := o.gateway.Complete(ctx, &llm.Request{
		System: linkedInSystemPrompt,
		Messages: []llm.Message{
			llm.NewUserMessage(linkedInPrompt(req)),
		},
		MaxTokens:   linkedInMaxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return "", classifyGatewayError(err)
	}
	if resp.Content == "" {
		return "", model.ErrInternal
	}

	return resp.Content, nil
}

func linkedInPrompt(req *model.LinkedInPostRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	if len(req.KeyPoints) > 0 {
		b.WriteString("Key points:\n")
		for _, point := range req.KeyPoints {
			fmt.Fprintf(&b, "- %s\n", point)
		}
	}
	if len(req.PeopleCompaniesToTag) > 0 {
		fmt.Fprintf(&b, "Tag: %s\n", strings.Join(req.PeopleCompaniesToTag, ", "))
	}
	if req.CallToAction != "" {
		fmt.Fprintf(&b, "Call to action: %s\n", req.CallToAction)
	}
	if req.Link != "" {
		fmt.Fprintf(&b, "Include this link: %s\n", req.Link)
	}
	return b.String()
}
