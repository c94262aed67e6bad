package prayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTo12Hour(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"04:30", "04:30 AM"},
		{"12:15", "12:15 PM"},
		{"19:45", "07:45 PM"},
		{"00:05", "12:05 AM"},
		{"not-a-time", "not-a-time"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, To12Hour(tt.in), "input %q", tt.in)
	}
}

func TestMarkers(t *testing.T) {
	assert.True(t, IsMarker("Sunrise"))
	for _, ev := range []string{"Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"} {
		assert.False(t, IsMarker(ev), "%s is an actionable event", ev)
	}
}

func TestSnapshotEventsKeepDayOrder(t *testing.T) {
	snap := &Snapshot{Times: map[string]string{
		"Isha": "19:45",
		"Fajr": "04:30",
		"Asr":  "15:45",
	}}
	assert.Equal(t, []string{"Fajr", "Asr", "Isha"}, snap.Events())
}

func TestCityFor(t *testing.T) {
	city, ok := CityFor("Egypt")
	assert.True(t, ok)
	assert.Equal(t, "Cairo", city)

	_, ok = CityFor("Atlantis")
	assert.False(t, ok)
}

func TestTopicsAreStable(t *testing.T) {
	assert.Equal(t, Topics(), Topics())
	assert.Len(t, Topics(), len(SupportedTopics))
}
