package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItemType(t *testing.T) {
	for _, raw := range []string{"STORE", "EVENT", "POPUP"} {
		parsed, err := ParseItemType(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, parsed.String())
		assert.True(t, parsed.Valid())
	}

	_, err := ParseItemType("CONCERT")
	assert.Error(t, err)
	assert.False(t, ItemType("store").Valid()) // case sensitive
}

func TestOngoingWindowIsInclusive(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	ev := Event{StartDate: start, EndDate: end}
	pu := Popup{StartDate: start, EndDate: end}

	assert.True(t, ev.Ongoing(start))
	assert.True(t, ev.Ongoing(end))
	assert.True(t, ev.Ongoing(start.AddDate(0, 0, 4)))
	assert.False(t, ev.Ongoing(start.AddDate(0, 0, -1)))
	assert.False(t, ev.Ongoing(end.AddDate(0, 0, 1)))

	assert.True(t, pu.Ongoing(start))
	assert.False(t, pu.Ongoing(end.Add(time.Hour)))
}

func TestFloatVectorRoundTrip(t *testing.T) {
	v := FloatVector{0.1, -0.5, 2}

	raw, err := v.Value()
	require.NoError(t, err)

	var out FloatVector
	require.NoError(t, out.Scan(raw))
	assert.Equal(t, v, out)

	var nilVec FloatVector
	require.NoError(t, nilVec.Scan(nil))
	assert.Nil(t, nilVec)

	assert.Error(t, out.Scan(42))
}
