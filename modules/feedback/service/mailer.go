package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andreypavlenko/scout/modules/feedback/model"
	"github.com/resend/resend-go/v2"
)

// ResendMailer sends insight recap emails through Resend. User ids in this
// deployment are the attendee email addresses; anything else is skipped.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer creates a mailer with the given API key and sender.
func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// SendInsightRecap mails the structured Q/A of a completed session.
func (m *ResendMailer) SendInsightRecap(ctx context.Context, userID string, insight *model.Insight) error {
	if !strings.Contains(userID, "@") {
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "<h2>Your meeting notes on %s</h2>", insight.StartupName)
	for _, qa := range insight.StructuredQA {
		fmt.Fprintf(&body, "<p><b>%s</b><br>%s</p>", qa.Question, qa.Answer)
	}

	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{userID},
		Subject: fmt.Sprintf("Meeting feedback: %s", insight.StartupName),
		Html:    body.String(),
	})
	return err
}
