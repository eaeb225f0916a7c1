package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/valter-silva-au/dlog/pkg/models"
	"pgregory.net/rapid"
)

// Property 4: any range whose start is after its end is rejected locally
// and never reaches the backend.
func TestProperty_ReversedRangeNeverSent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := base.AddDate(0, 0, rapid.IntRange(0, 365).Draw(rt, "end"))
		start := end.AddDate(0, 0, rapid.IntRange(1, 60).Draw(rt, "gap"))

		backend := &fakeBackend{}
		rc := NewReportController(backend, nil, reportNow, 7)
		_ = rc.Open("u1")

		_, err := rc.Generate(context.Background(), models.DateRange{
			Start: start.Format(models.DateLayout),
			End:   end.Format(models.DateLayout),
		})
		if !errors.Is(err, ErrInvalidRange) {
			rt.Fatalf("Generate() error = %v, want ErrInvalidRange", err)
		}
		if _, _, _, reports := backend.calls(); reports != 0 {
			rt.Fatalf("backend called %d times", reports)
		}
	})
}
