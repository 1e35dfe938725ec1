package model

import "time"

// Claim is a seeker's proof-of-ownership request against an item.
type Claim struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	SeekerID  string    `json:"seeker_id"`
	Proof     string    `json:"proof"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined fields (always populated by the store).
	FinderID   string `json:"-"`
	ItemTitle  string `json:"item_title,omitempty"`
	ItemStatus string `json:"item_status,omitempty"`
}

// Claim statuses.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// Decision is the finder's response to a pending claim.
type Decision string

// Decisions.
const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision maps "approve"/"reject" to a Decision.
func ParseDecision(s string) (Decision, bool) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), true
	}
	return "", false
}

// IsParticipant reports whether userID is the claim's seeker or the finder of
// the claimed item.
func (c *Claim) IsParticipant(userID string) bool {
	if userID == "" {
		return false
	}
	return userID == c.SeekerID || userID == c.FinderID
}
