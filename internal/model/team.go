package model

import "time"

// TeamMember links a user to a team with a display position such as
// "Co-Lead" or "Director".
type TeamMember struct {
	TeamID   uint64    `json:"team_id"`
	UserID   uint64    `json:"user_id"`
	Position string    `json:"position"`
	JoinedAt time.Time `json:"joined_at"`
}

// Team is a named group on the public roster page.
type Team struct {
	ID          uint64       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Members     []TeamMember `json:"members,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
