package streak

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreakInfoJSONShape(t *testing.T) {
	b, err := json.Marshal(StreakInfo{CurrentStreak: 3, MaxStreak: 7})
	require.NoError(t, err)

	// The read endpoint serves the counters only, no row bookkeeping.
	assert.JSONEq(t, `{"current_streak":3,"max_streak":7}`, string(b))
}
