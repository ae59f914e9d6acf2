package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForCount(t *testing.T) {
	cases := []struct {
		count int64
		want  int
	}{
		{0, 0},
		{9, 0},
		{10, 1},
		{29, 1},
		{30, 2},
		{59, 2},
		{60, 3},
		{100, 4},
		{150, 5},
		{210, 6},
		{280, 7},
		{360, 8},
		{450, 9},
		{549, 9},
		{550, 10},
		{10000, 10},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, ForCount(c.count), "count=%d", c.count)
	}
}

func TestDetectTransition(t *testing.T) {
	assert.Equal(t, TransitionUp, DetectTransition(0, 1))
	assert.Equal(t, TransitionUp, DetectTransition(3, 5))
	assert.Equal(t, TransitionDown, DetectTransition(2, 1))
	assert.Equal(t, TransitionNone, DetectTransition(4, 4))
}

func TestLevelDropAtThresholdEdge(t *testing.T) {
	// Deleting the record that carried the user over a threshold must
	// register as a drop.
	before := ForCount(10)
	after := ForCount(9)
	assert.Equal(t, TransitionDown, DetectTransition(before, after))
}
