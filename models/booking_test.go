package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingBlocks(t *testing.T) {
	cases := []struct {
		status string
		blocks bool
	}{
		{StatusPending, true},
		{StatusConfirmed, true},
		{StatusCompleted, false},
		{StatusCancelled, false},
	}
	for _, tc := range cases {
		b := Booking{Status: tc.status}
		assert.Equal(t, tc.blocks, b.Blocks(), "status %s", tc.status)
	}
}

func TestBookingCanTransitionTo(t *testing.T) {
	allowed := map[string][]string{
		StatusPending:   {StatusConfirmed, StatusCompleted, StatusCancelled},
		StatusConfirmed: {StatusCompleted, StatusCancelled},
		StatusCompleted: {},
		StatusCancelled: {},
	}
	all := []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

	for from, targets := range allowed {
		ok := make(map[string]bool, len(targets))
		for _, target := range targets {
			ok[target] = true
		}
		b := Booking{Status: from}
		for _, target := range all {
			assert.Equal(t, ok[target], b.CanTransitionTo(target), "%s -> %s", from, target)
		}
	}
}
