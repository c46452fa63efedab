package model

import "time"

// Contributor is a display credit on a project card.
type Contributor struct {
	Name    string `json:"name"`
	Initial string `json:"initial"`
	Color   string `json:"color"`
}

// Project is a showcase entry on the public projects page.
type Project struct {
	ID           uint64        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Languages    []string      `json:"languages"`
	Link         string        `json:"link"`
	Color        string        `json:"color"`
	ImageURL     *string       `json:"image_url,omitempty"`
	Contributors []Contributor `json:"contributors,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
