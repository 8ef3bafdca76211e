package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review moderation states. Pending reviews move to approved or rejected
// exactly once; both outcomes are terminal.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// Review is a per-user, per-product rating. One review per (user, product).
type Review struct {
	ID      int64      `json:"id"`
	Product ProductRef `json:"-"`
	UserID  uuid.UUID  `json:"user_id"`

	Rating int    `json:"rating"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Pros   string `json:"pros,omitempty"`
	Cons   string `json:"cons,omitempty"`

	Status           string `json:"status"`
	ModeratorComment string `json:"moderator_comment,omitempty"`

	HelpfulCount    int `json:"helpful_count"`
	NotHelpfulCount int `json:"not_helpful_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HelpfulRatio is the share of helpful votes, in percent.
func (r *Review) HelpfulRatio() float64 {
	total := r.HelpfulCount + r.NotHelpfulCount
	if total == 0 {
		return 0
	}
	return float64(r.HelpfulCount) / float64(total) * 100
}
