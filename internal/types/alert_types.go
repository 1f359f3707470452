package types

// CreateAlertRequest raises an alert manually.
type CreateAlertRequest struct {
	WorkflowID  string `json:"workflowId" validate:"required"`
	ExecutionID string `json:"executionId"`
	Type        string `json:"type" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Message     string `json:"message"`
}

// ListAlertsRequest filters the alert list.
type ListAlertsRequest struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	WorkflowID string `json:"workflowId"`
	Status     string `json:"status"`
	Type       string `json:"type"`
}

// AcknowledgeAlertRequest acknowledges one alert.
type AcknowledgeAlertRequest struct {
	AcknowledgedBy string `json:"acknowledgedBy"`
}

// UpsertAlertConfigRequest creates or replaces a workflow's alert
// configuration.
type UpsertAlertConfigRequest struct {
	SlackEnabled    bool     `json:"slackEnabled"`
	SlackWebhookURL string   `json:"slackWebhookUrl"`
	SlackChannel    string   `json:"slackChannel"`
	EmailEnabled    bool     `json:"emailEnabled"`
	EmailRecipients []string `json:"emailRecipients"`

	OnError                bool  `json:"onError"`
	OnWarning              bool  `json:"onWarning"`
	OnSlowExecution        bool  `json:"onSlowExecution"`
	SlowExecutionThreshold int64 `json:"slowExecutionThreshold"`
	CoalesceWindow         int64 `json:"coalesceWindow"`
}
