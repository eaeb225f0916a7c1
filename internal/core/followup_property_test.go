package core

import (
	"fmt"
	"testing"

	"github.com/valter-silva-au/dlog/pkg/models"
	"pgregory.net/rapid"
)

// Property 3: Next on a blank answer never changes the index, and progress
// is always (index+1)/N after any sequence of navigation.
func TestProperty_FollowupNavigation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		questions := make([]string, n)
		for i := range questions {
			questions[i] = fmt.Sprintf("Q%d", i+1)
		}
		fc, err := NewFollowupController(&fakeBackend{}, nil, models.FollowupSession{ID: "s", Questions: questions}, nil)
		if err != nil {
			rt.Fatalf("NewFollowupController: %v", err)
		}

		steps := rapid.IntRange(0, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			before := fc.Index()
			switch rapid.IntRange(0, 2).Draw(rt, fmt.Sprintf("op_%d", i)) {
			case 0:
				_ = fc.SetAnswer(rapid.SampledFrom([]string{"", "  ", "answer"}).Draw(rt, fmt.Sprintf("answer_%d", i)))
			case 1:
				blankAnswer := fc.Answer() == "" || fc.Answer() == "  "
				moved := fc.Next()
				if blankAnswer && (moved || fc.Index() != before) {
					rt.Fatalf("Next() moved from %d on a blank answer", before)
				}
			case 2:
				fc.Previous()
			}

			idx := fc.Index()
			if idx < 0 || idx >= n {
				rt.Fatalf("index %d out of [0,%d)", idx, n)
			}
			if got, want := fc.Progress(), float64(idx+1)/float64(n); got != want {
				rt.Fatalf("Progress() = %v, want %v", got, want)
			}
		}
	})
}
