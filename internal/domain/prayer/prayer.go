package prayer

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Topic is the country key a member subscribes to. Each topic resolves to a
// single city whose schedule is fetched.
type Topic string

// SupportedTopics maps a topic to the city used for schedule lookups.
var SupportedTopics = map[Topic]string{
	"Egypt":        "Cairo",
	"Saudi Arabia": "Riyadh",
	"Turkey":       "Istanbul",
	"UAE":          "Dubai",
	"Malaysia":     "Kuala Lumpur",
	"Indonesia":    "Jakarta",
	"Pakistan":     "Karachi",
	"UK":           "London",
	"USA":          "New York",
	"Canada":       "Toronto",
}

// CityFor resolves the city for a topic. The second return is false for
// unsupported topics.
func CityFor(t Topic) (string, bool) {
	city, ok := SupportedTopics[t]
	return city, ok
}

// Topics returns the supported topics in a stable order, for building
// selection keyboards.
func Topics() []Topic {
	out := make([]Topic, 0, len(SupportedTopics))
	for t := range SupportedTopics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EventOrder lists the schedule events a snapshot carries, in day order.
// Anything else returned by the timing service is dropped at fetch time.
var EventOrder = []string{"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha"}

// markerEvents are displayed in the daily schedule but are not calls to
// prayer; they never produce a notification.
var markerEvents = map[string]struct{}{
	"Sunrise": {},
}

// IsMarker reports whether the event is a non-actionable schedule marker.
func IsMarker(event string) bool {
	_, ok := markerEvents[event]
	return ok
}

// EndOfDayEvent is the final obligatory prayer of the day. Its notification
// triggers the channel cleanup pass.
const EndOfDayEvent = "Isha"

// ErrFetchFailed indicates the timing service could not be reached or
// returned an unusable response. It is transient: the next lookup retries.
var ErrFetchFailed = fmt.Errorf("prayer schedule fetch failed")

// Snapshot holds one day's schedule for a topic. Times are wall-clock
// "HH:MM" strings in 24-hour form, minute resolution.
type Snapshot struct {
	Topic Topic
	Date  string // "2006-01-02"
	Times map[string]string
}

// Events returns the snapshot's events in day order, skipping events the
// timing service did not report.
func (s *Snapshot) Events() []string {
	out := make([]string, 0, len(s.Times))
	for _, ev := range EventOrder {
		if _, ok := s.Times[ev]; ok {
			out = append(out, ev)
		}
	}
	return out
}

// Provider supplies the day's schedule for a topic.
type Provider interface {
	Timings(ctx context.Context, topic Topic, date time.Time) (*Snapshot, error)
}

// To12Hour converts an "HH:MM" time to a 12-hour display form. Invalid input
// is returned unchanged; this is a presentation helper only.
func To12Hour(hhmm string) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("03:04 PM")
}
