package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_pageBounds(t *testing.T) {
	testCases := []struct {
		name          string
		offset        int
		total         int
		expectedStart int
		expectedEnd   int
	}{
		{name: "empty collection", offset: 0, total: 0, expectedStart: 0, expectedEnd: 0},
		{name: "first full page", offset: 0, total: 25, expectedStart: 0, expectedEnd: 10},
		{name: "middle full page", offset: 10, total: 25, expectedStart: 10, expectedEnd: 20},
		{name: "short last page", offset: 20, total: 25, expectedStart: 20, expectedEnd: 25},
		{name: "offset at end", offset: 25, total: 25, expectedStart: 0, expectedEnd: 0},
		{name: "offset past end", offset: 100, total: 25, expectedStart: 0, expectedEnd: 0},
		{name: "negative offset", offset: -1, total: 25, expectedStart: 0, expectedEnd: 0},
		{name: "collection shorter than a page", offset: 0, total: 3, expectedStart: 0, expectedEnd: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := pageBounds(tc.offset, tc.total)
			assert.Equal(t, tc.expectedStart, start)
			assert.Equal(t, tc.expectedEnd, end)
		})
	}
}
