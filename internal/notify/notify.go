// Package notify is the outbound notification collaborator. The core never
// depends on it; only the password-reset flow sends anything.
package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier delivers an out-of-band message to a user-controlled destination.
type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

// TwilioNotifier sends SMS through the Twilio REST API.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

func NewTwilio(accountSID, authToken, from string) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioNotifier{client: client, from: from}
}

func (n *TwilioNotifier) Send(_ context.Context, to, body string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.from)
	params.SetBody(body)

	if _, err := n.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// Noop drops every message. Used when no Twilio credentials are configured
// and in tests.
type Noop struct{}

func (Noop) Send(context.Context, string, string) error { return nil }
