package alerting

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// slackBlock is one element of a Slack Block Kit payload.
type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackPayload struct {
	Channel string       `json:"channel,omitempty"`
	Text    string       `json:"text"`
	Blocks  []slackBlock `json:"blocks"`
}

// SlackNotifier delivers alerts to a Slack incoming webhook.
type SlackNotifier struct {
	client  *fiber.Client
	timeout time.Duration
}

// NewSlackNotifier builds a notifier with a bounded request timeout.
func NewSlackNotifier(timeout time.Duration) *SlackNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SlackNotifier{
		client:  &fiber.Client{},
		timeout: timeout,
	}
}

// Send posts a structured block message to the webhook. A non-2xx response
// or transport failure is returned as an error; it never panics.
func (n *SlackNotifier) Send(webhookURL, channel, title, message string, details map[string]string) error {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: title},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: message},
		},
	}
	if len(details) > 0 {
		elements := make([]slackText, 0, len(details))
		for key, value := range details {
			elements = append(elements, slackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s:* %s", key, value),
			})
		}
		blocks = append(blocks, slackBlock{Type: "context", Elements: elements})
	}

	payload := slackPayload{
		Channel: channel,
		Text:    title,
		Blocks:  blocks,
	}

	agent := n.client.Post(webhookURL)
	agent.Timeout(n.timeout)
	agent.JSON(payload)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("slack webhook: %w", errs[0])
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("slack webhook returned %d: %s", code, string(body))
	}
	return nil
}
