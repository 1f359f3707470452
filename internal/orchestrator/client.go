// Package orchestrator is the read-only client for the external
// workflow-automation engine. All calls resolve their base URL and
// credential through the environment router at call time.
package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"flowpulse/internal/environment"
	"flowpulse/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// ErrWorkflowNotFound is returned when the orchestrator has no such workflow.
var ErrWorkflowNotFound = errors.New("workflow not found in orchestrator")

// Workflow is the orchestrator's workflow representation. Only the fields
// this service consumes are decoded; the raw definition rides along as-is.
type Workflow struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Active bool           `json:"active"`
	Tags   []string       `json:"tags"`
	Nodes  []any          `json:"nodes"`
	Raw    map[string]any `json:"-"`
}

// Client talks to the orchestrator of the current environment.
type Client struct {
	router  *environment.Router
	client  *fiber.Client
	timeout time.Duration
}

// NewClient builds a Client routed through env.
func NewClient(env *environment.Router) *Client {
	return &Client{
		router:  env,
		client:  &fiber.Client{},
		timeout: 15 * time.Second,
	}
}

func (c *Client) get(path string) ([]byte, int, error) {
	agent := c.client.Get(c.router.ApiURL() + path)
	agent.Timeout(c.timeout)
	for k, v := range c.router.ApiHeaders() {
		agent.Set(k, v)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, 0, fmt.Errorf("orchestrator request %s: %w", path, errs[0])
	}
	return body, code, nil
}

// ListWorkflows fetches the workflow list from the current environment.
func (c *Client) ListWorkflows() ([]Workflow, error) {
	body, code, err := c.get("/workflows")
	if err != nil {
		return nil, err
	}
	if code < 200 || code >= 300 {
		return nil, fmt.Errorf("orchestrator returned %d listing workflows", code)
	}

	// Both a bare array and the {"data": [...]} envelope are accepted.
	var workflows []Workflow
	if err := utils.Unmarshal(body, &workflows); err == nil {
		return workflows, nil
	}
	var envelope struct {
		Data []Workflow `json:"data"`
	}
	if err := utils.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode workflow list: %w", err)
	}
	return envelope.Data, nil
}

// GetWorkflow fetches one workflow definition by orchestrator id.
func (c *Client) GetWorkflow(id string) (*Workflow, map[string]any, error) {
	body, code, err := c.get("/workflows/" + id)
	if err != nil {
		return nil, nil, err
	}
	if code == fiber.StatusNotFound {
		return nil, nil, ErrWorkflowNotFound
	}
	if code < 200 || code >= 300 {
		return nil, nil, fmt.Errorf("orchestrator returned %d fetching workflow %s", code, id)
	}

	var wf Workflow
	if err := utils.Unmarshal(body, &wf); err != nil {
		return nil, nil, fmt.Errorf("decode workflow %s: %w", id, err)
	}
	raw, err := utils.FromJSON[map[string]any](string(body))
	if err != nil {
		return nil, nil, fmt.Errorf("decode workflow %s: %w", id, err)
	}
	wf.Raw = raw
	return &wf, raw, nil
}
