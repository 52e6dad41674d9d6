package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/andreypavlenko/scout/internal/platform/llm"
	"github.com/andreypavlenko/scout/internal/platform/logger"
	"github.com/andreypavlenko/scout/modules/concierge/model"
	"github.com/andreypavlenko/scout/modules/concierge/tools"
	"go.uber.org/zap"
)

// maxToolIterations bounds the tool-call loop.
const maxToolIterations = 5

const conciergeSystemPrompt = `You are the concierge of a startup discovery conference app. You answer questions about the startup corpus and conference events using the provided tools. Be concise and factual; when tools return no results, say so instead of guessing.`

// completer is the slice of the LLM gateway the orchestrator needs.
type completer interface {
	Complete(ctx context.Context, req *llm.Request) (*llm.Response, error)
	Available() bool
}

// DirectionsProvider is the external Maps collaborator.
type DirectionsProvider interface {
	Directions(ctx context.Context, from, to string) (string, error)
}

// Orchestrator classifies concierge questions and answers them: specialized
// sub-flows for posts, feedback, and directions; a bounded tool-call loop for
// everything else.
type Orchestrator struct {
	gateway    completer
	registry   *tools.Registry
	directions DirectionsProvider
	log        *logger.Logger
}

// NewOrchestrator creates an orchestrator. directions may be nil when no
// Maps collaborator is configured.
func NewOrchestrator(gateway completer, registry *tools.Registry, directions DirectionsProvider, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		gateway:    gateway,
		registry:   registry,
		directions: directions,
		log:        log,
	}
}

// Answer handles one concierge question.
func (o *Orchestrator) Answer(ctx context.Context, req *model.AskRequest) (*model.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, model.ErrQuestionRequired
	}

	intent := ClassifyIntent(question, req.UserContext)

	switch intent {
	case model.IntentLinkedInPost:
		answer, err := o.GenerateLinkedInPost(ctx, &model.LinkedInPostRequest{Topic: question})
		if err != nil {
			return nil, err
		}
		return &model.AskResponse{Answer: answer, QuestionType: intent}, nil

	case model.IntentFeedbackFlow:
		// The feedback machine owns its own state; the concierge hands the
		// client over to it.
		return &model.AskResponse{
			Answer:       "Let's capture your meeting feedback. Open the meeting and start a feedback session; I'll ask three short questions.",
			QuestionType: intent,
		}, nil

	case model.IntentDirections:
		return o.answerDirections(ctx, question)

	default:
		return o.toolLoop(ctx, question, intent, req.UserContext)
	}
}

func (o *Orchestrator) answerDirections(ctx context.Context, question string) (*model.AskResponse, error) {
	if o.directions == nil {
		return &model.AskResponse{
			Answer:       "Directions are not available right now. The venue staff at the info desk can point you the right way.",
			QuestionType: model.IntentDirections,
		}, nil
	}

	answer, err := o.directions.Directions(ctx, "", question)
	if err != nil {
		o.log.Warn("directions provider failed", zap.Error(err))
		return nil, model.ErrServiceBusy
	}
	return &model.AskResponse{Answer: answer, QuestionType: model.IntentDirections}, nil
}

// toolLoop drives the model against the tool registry: execute requested
// tool calls sequentially, feed results back, and stop on a final text
// answer or after maxToolIterations rounds.
func (o *Orchestrator) toolLoop(ctx context.Context, question string, intent model.QuestionType, userContext *model.UserContext) (*model.AskResponse, error) {
	if !o.gateway.Available() {
		return nil, model.ErrUnavailable
	}

	messages := []llm.Message{llm.NewUserMessage(question)}
	defs := o.registry.Defs()
	correctionUsed := false
	lastContent := ""

	for iteration := 0; iteration < maxToolIterations; iteration++ {
		resp, err := o.gateway.Complete(ctx, &llm.Request{
			System:   o.systemPrompt(userContext),
			Messages: messages,
			Tools:    defs,
		})
		if err != nil {
			return nil, classifyGatewayError(err)
		}

		if len(resp.ToolCalls) == 0 {
			if resp.Content == "" {
				break
			}
			return &model.AskResponse{Answer: resp.Content, QuestionType: intent}, nil
		}

		if resp.Content != "" {
			lastContent = resp.Content
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// Tool calls run sequentially in the order the model emitted them;
		// reordering would visibly reorder results.
		for _, call := range resp.ToolCalls {
			result, err := o.registry.Execute(ctx, call.Name, call.Input)

			var invalidArgs *tools.InvalidArgsError
			switch {
			case errors.As(err, &invalidArgs):
				if correctionUsed {
					o.log.Warn("tool arguments invalid after correction",
						zap.String("tool", call.Name),
						zap.String("detail", invalidArgs.Detail),
					)
					return nil, model.ErrInternal
				}
				correctionUsed = true
				messages = append(messages, llm.NewToolResultMessage(
					call.ID,
					fmt.Sprintf("Invalid arguments: %s. Correct the arguments and call the tool again.", invalidArgs.Detail),
					true,
				))

			case errors.Is(err, tools.ErrUnknownTool):
				messages = append(messages, llm.NewToolResultMessage(
					call.ID,
					fmt.Sprintf("Unknown tool %q. Available tools: %s.", call.Name, strings.Join(o.registry.Names(), ", ")),
					true,
				))

			case err != nil:
				return nil, classifyGatewayError(err)

			default:
				payload, marshalErr := json.Marshal(result)
				if marshalErr != nil {
					payload = []byte(`{"success":false,"error":"unencodable tool result"}`)
				}
				messages = append(messages, llm.NewToolResultMessage(call.ID, string(payload), !result.Success))
			}
		}
	}

	if lastContent != "" {
		return &model.AskResponse{Answer: lastContent, QuestionType: intent}, nil
	}
	return &model.AskResponse{
		Answer:       "I could not gather enough information from the available tools to answer that.",
		QuestionType: intent,
	}, nil
}

func (o *Orchestrator) systemPrompt(userContext *model.UserContext) string {
	if userContext == nil {
		return conciergeSystemPrompt
	}

	var b strings.Builder
	b.WriteString(conciergeSystemPrompt)
	if userContext.Role != "" {
		fmt.Fprintf(&b, "\nThe user is a %s.", userContext.Role)
	}
	if len(userContext.Interests) > 0 {
		fmt.Fprintf(&b, "\nTheir interests: %s.", strings.Join(userContext.Interests, ", "))
	}
	if userContext.Location != "" {
		fmt.Fprintf(&b, "\nThey are currently at: %s.", userContext.Location)
	}
	return b.String()
}

// classifyGatewayError maps gateway errors onto the concierge error surface;
// raw transport errors never escape the orchestrator.
func classifyGatewayError(err error) error {
	switch {
	case errors.Is(err, llm.ErrCircuitOpen):
		// Keep the breaker error in the chain so handlers can surface the
		// remaining cooldown as Retry-After.
		return fmt.Errorf("%w: %w", model.ErrServiceBusy, err)
	case errors.Is(err, llm.ErrRateLimited):
		return model.ErrServiceBusy
	case errors.Is(err, llm.ErrUnavailable):
		return model.ErrUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return model.ErrInternal
	}
}
