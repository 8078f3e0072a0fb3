// internal/workers/reviews/notify-coach-review/models.go
package notifycoachreview

type Input struct {
	CoachID      string `json:"coachId"`
	ReviewID     string `json:"reviewId"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment,omitempty"`
	ReviewerName string `json:"reviewerName,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent", "failed", "disabled"
	SentAt         string   `json:"sentAt"` // ISO 8601
	Channels       []string `json:"channels,omitempty"`
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)
