// internal/workers/reviews/manage-review-token/models.go
package managereviewtoken

import "time"

type Action string

const (
	ActionIssue       Action = "issue"
	ActionVerify      Action = "verify"
	ActionRevoke      Action = "revoke"
	ActionDismiss     Action = "dismiss"
	ActionIsDismissed Action = "is-dismissed"
)

type Input struct {
	Action    Action `json:"action"`
	ReviewID  string `json:"reviewId,omitempty"`
	Token     string `json:"token,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

type Output struct {
	Action    Action     `json:"action"`
	ReviewID  string     `json:"reviewId,omitempty"`
	Token     string     `json:"token,omitempty"`
	Valid     bool       `json:"valid"`
	Dismissed bool       `json:"dismissed"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
