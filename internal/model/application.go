package model

import "time"

// ApplicationStatus tracks the review outcome of an application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application is one user's application for one position.  Answers maps
// the position's question text to the applicant's response.  Applications
// are never deleted; review only changes the status.
type Application struct {
	ID         uint64            `json:"id"`
	PositionID uint64            `json:"position_id"`
	UserID     uint64            `json:"user_id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Answers    map[string]string `json:"answers"`
	Status     ApplicationStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
