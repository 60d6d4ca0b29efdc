package shared

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateMarshalsAsCalendarDay(t *testing.T) {
	d := NewDate(time.Date(2025, 6, 1, 23, 45, 0, 0, time.FixedZone("X", 3600)))
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-01"`, string(b))
}

func TestDateMarshalsZeroAsNull(t *testing.T) {
	b, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestDateUnmarshalAcceptsDateAndTimestamp(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-06-01"`), &d))
	assert.Equal(t, "2025-06-01", d.Format("2006-01-02"))

	require.NoError(t, json.Unmarshal([]byte(`"2025-06-01T10:30:00Z"`), &d))
	assert.Equal(t, "2025-06-01", d.Format("2006-01-02"))

	assert.Error(t, json.Unmarshal([]byte(`"June 1st"`), &d))
}

func TestAddDays(t *testing.T) {
	d := NewDate(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-07-01", d.AddDays(30).Format("2006-01-02"))
}
