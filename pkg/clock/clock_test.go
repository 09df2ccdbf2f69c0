package clock_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/clock"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
)

func TestAdvanceMonotonic(t *testing.T) {
	c := clock.New()
	if c.Now() != jiffy.Zero {
		t.Fatalf("expected clock to start at zero, got %v", c.Now())
	}
	c.Advance(jiffy.Jiffy(10))
	if c.Now() != jiffy.Jiffy(10) {
		t.Fatalf("expected clock at 10, got %v", c.Now())
	}
	c.Advance(jiffy.Jiffy(10))
	if c.Now() != jiffy.Jiffy(10) {
		t.Fatalf("expected clock to stay at 10 after advancing to same time, got %v", c.Now())
	}
}

func TestAdvanceBackwardPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when advancing clock backward")
		}
	}()
	c := clock.New()
	c.Advance(jiffy.Jiffy(10))
	c.Advance(jiffy.Jiffy(5))
}
