package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionIsOpen(t *testing.T) {
	cases := []struct {
		status PositionStatus
		open   bool
	}{
		{PositionActive, true},
		{PositionDraft, false},
		{PositionInactive, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			p := Position{Status: tc.status}
			assert.Equal(t, tc.open, p.IsOpen())
		})
	}
}
