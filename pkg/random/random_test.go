package random_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/random"
)

func TestDeterministicReplay(t *testing.T) {
	a := random.New(random.Seed(42))
	b := random.New(random.Seed(42))

	for i := 0; i < 100; i++ {
		av := a.Int63n(1_000_000)
		bv := b.Int63n(1_000_000)
		if av != bv {
			t.Fatalf("draw %d diverged: %d != %d", i, av, bv)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := random.New(random.Seed(1))
	b := random.New(random.Seed(2))

	same := true
	for i := 0; i < 20; i++ {
		if a.Int63n(1 << 40) != b.Int63n(1 << 40) {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected seeds 1 and 2 to diverge within 20 draws")
	}
}

func TestConstantSampler(t *testing.T) {
	c := random.Constant(7)
	r := random.New(1)
	for i := 0; i < 5; i++ {
		if got := c.Sample(r); got != 7 {
			t.Fatalf("Constant.Sample = %v, want 7", got)
		}
	}
}

func TestUniformBounds(t *testing.T) {
	u := random.Uniform{Lo: 10, Hi: 20}
	r := random.New(1)
	for i := 0; i < 1000; i++ {
		v := u.Sample(r)
		if v < 10 || v >= 20 {
			t.Fatalf("Uniform.Sample out of bounds: %v", v)
		}
	}
}

func TestNormalNeverBelowOne(t *testing.T) {
	n := random.Normal{Mean: -5, StdDev: 0.01}
	r := random.New(1)
	for i := 0; i < 100; i++ {
		if v := n.Sample(r); v < 1 {
			t.Fatalf("Normal.Sample produced %v, want >= 1", v)
		}
	}
}
