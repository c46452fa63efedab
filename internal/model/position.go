package model

import "time"

// PositionStatus is the lifecycle of a volunteer position.  Draft positions
// are only visible to admins; inactive positions stay listed for admins but
// no longer accept applications.
type PositionStatus string

const (
	PositionDraft    PositionStatus = "draft"
	PositionActive   PositionStatus = "active"
	PositionInactive PositionStatus = "inactive"
)

// PositionQuestion is one entry of a position's application form.  Type is
// one of text, textarea, select, checkbox or file; Options applies to
// select and checkbox questions.
type PositionQuestion struct {
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
}

// Position is an open volunteer role members can apply for.
type Position struct {
	ID          uint64             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Tags        []string           `json:"tags"`
	Questions   []PositionQuestion `json:"questions"`
	Status      PositionStatus     `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// IsOpen reports whether the position appears publicly and accepts
// applications.
func (p *Position) IsOpen() bool { return p.Status == PositionActive }
