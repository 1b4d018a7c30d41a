package booking

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func mustInterval(t *testing.T, start, end time.Time) Interval {
	t.Helper()
	iv, err := NewInterval(start, end)
	require.NoError(t, err)
	return iv
}

func TestNewInterval(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{name: "valid", start: at(9, 0), end: at(10, 0)},
		{name: "one nanosecond", start: at(9, 0), end: at(9, 0).Add(time.Nanosecond)},
		{name: "empty", start: at(9, 0), end: at(9, 0), wantErr: ErrInvalidRange},
		{name: "reversed", start: at(10, 0), end: at(9, 0), wantErr: ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := NewInterval(tt.start, tt.end)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, iv.Start.Equal(tt.start))
			assert.True(t, iv.End.Equal(tt.end))
		})
	}
}

func TestIntervalOverlaps(t *testing.T) {
	base := Interval{Start: at(9, 0), End: at(12, 0)}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{name: "identical", other: base, want: true},
		{name: "partial tail", other: Interval{at(11, 0), at(13, 0)}, want: true},
		{name: "partial head", other: Interval{at(8, 0), at(9, 30)}, want: true},
		{name: "contained", other: Interval{at(10, 0), at(11, 0)}, want: true},
		{name: "containing", other: Interval{at(8, 0), at(13, 0)}, want: true},
		{name: "touching after", other: Interval{at(12, 0), at(13, 0)}, want: false},
		{name: "touching before", other: Interval{at(8, 0), at(9, 0)}, want: false},
		{name: "disjoint", other: Interval{at(14, 0), at(15, 0)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
		})
	}
}

func TestIntervalOverlapsAcrossZones(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	utc := Interval{Start: at(9, 0), End: at(10, 0)}
	local := Interval{Start: at(9, 30).In(jakarta), End: at(11, 0).In(jakarta)}

	assert.True(t, utc.Overlaps(local))
}

func randomInterval(r *rand.Rand) Interval {
	start := r.IntN(48)
	length := 1 + r.IntN(8)
	return Interval{
		Start: day.Add(time.Duration(start) * 30 * time.Minute),
		End:   day.Add(time.Duration(start+length) * 30 * time.Minute),
	}
}

func TestIntervalOverlapsIsSymmetric(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 5000 {
		a, b := randomInterval(r), randomInterval(r)
		assert.Equal(t, a.Overlaps(b), b.Overlaps(a), "a=%v b=%v", a, b)
	}
}

func TestTouchingIntervalsNeverOverlap(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for range 1000 {
		a := randomInterval(r)
		b := Interval{Start: a.End, End: a.End.Add(time.Duration(1+r.IntN(120)) * time.Minute)}
		assert.False(t, a.Overlaps(b))
		assert.False(t, b.Overlaps(a))
	}
}
