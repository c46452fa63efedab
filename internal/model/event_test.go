package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRegistrationOpen(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-48 * time.Hour)
	clock := "18:30"

	t.Run("open until event start by default", func(t *testing.T) {
		e := Event{EventDate: future, StartTime: &clock, Status: EventStatusDefault}
		assert.True(t, e.IsRegistrationOpen(now))
	})

	t.Run("closed once the event started", func(t *testing.T) {
		e := Event{EventDate: past, Status: EventStatusDefault}
		assert.False(t, e.IsRegistrationOpen(now))
	})

	t.Run("deadline wins over event start", func(t *testing.T) {
		deadline := now.Add(-time.Hour)
		e := Event{EventDate: future, RegistrationDeadline: &deadline, Status: EventStatusDefault}
		assert.False(t, e.IsRegistrationOpen(now))
	})

	t.Run("future deadline keeps registration open", func(t *testing.T) {
		deadline := now.Add(time.Hour)
		e := Event{EventDate: future, RegistrationDeadline: &deadline, Status: EventStatusDefault}
		assert.True(t, e.IsRegistrationOpen(now))
	})

	t.Run("test events never open", func(t *testing.T) {
		e := Event{EventDate: future, Status: EventStatusTest}
		assert.False(t, e.IsRegistrationOpen(now))
	})

	t.Run("hidden events can still accept registrations", func(t *testing.T) {
		e := Event{EventDate: future, Status: EventStatusHidden}
		assert.True(t, e.IsRegistrationOpen(now))
	})
}

func TestStartDateTime(t *testing.T) {
	date := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	clock := "09:15"

	e := Event{EventDate: date, StartTime: &clock}
	assert.Equal(t, time.Date(2026, 5, 1, 9, 15, 0, 0, time.UTC), e.StartDateTime())

	noClock := Event{EventDate: date}
	assert.Equal(t, date, noClock.StartDateTime())

	bad := "9:15x"
	malformed := Event{EventDate: date, StartTime: &bad}
	assert.Equal(t, date, malformed.StartDateTime())
}

func TestIsPublic(t *testing.T) {
	assert.True(t, (&Event{Status: EventStatusDefault}).IsPublic())
	assert.False(t, (&Event{Status: EventStatusHidden}).IsPublic())
	assert.False(t, (&Event{Status: EventStatusTest}).IsPublic())
}
