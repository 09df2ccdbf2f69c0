package process_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/event"
	"github.com/jihwankim/dscale-sim/pkg/handler"
	"github.com/jihwankim/dscale-sim/pkg/process"
)

func TestAddAssignsSequentialIDs(t *testing.T) {
	p := process.NewPool()
	ids := make([]process.ID, 0, 64)
	for i := 0; i < 64; i++ {
		id := p.Add("pool", nil)
		if id != process.ID(i+1) {
			t.Fatalf("expected Add #%d to assign id %d, got %d", i, i+1, id)
		}
		ids = append(ids, id)
	}

	// The loop above grew any internal slice well past its original
	// capacity; check that no record was invalidated by reallocation.
	for i, id := range ids {
		rec, err := p.Lookup(id)
		if err != nil {
			t.Fatalf("lookup failed for id %d (index %d): %v", id, i, err)
		}
		if rec.ID != id {
			t.Fatalf("record for id %d has stale ID %d after pool growth", id, rec.ID)
		}
	}
}

type stubHandler struct{}

func (*stubHandler) Start()                                        {}
func (*stubHandler) OnMessage(handler.ProcessRef, handler.Payload) {}
func (*stubHandler) OnTimer(event.TimerID)                         {}

func TestSetHandlerSurvivesFurtherGrowth(t *testing.T) {
	p := process.NewPool()
	first := p.Add("pool", nil)
	h := &stubHandler{}
	p.SetHandler(first, h)

	for i := 0; i < 32; i++ {
		p.Add("pool", nil)
	}

	rec, err := p.Lookup(first)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if rec.ID != first {
		t.Fatalf("expected record for %d, got %d", first, rec.ID)
	}
	if rec.Handler != handler.Handler(h) {
		t.Fatalf("expected handler set before growth to survive it, got %v", rec.Handler)
	}
}

func TestDestination(t *testing.T) {
	d := process.To(process.ID(5))
	if d.IsBroadcast() {
		t.Fatal("expected directed destination to not be a broadcast")
	}
	if d.Target() != process.ID(5) {
		t.Fatalf("expected target 5, got %d", d.Target())
	}

	b := process.Broadcast()
	if !b.IsBroadcast() {
		t.Fatal("expected Broadcast() to be a broadcast destination")
	}
}

func TestBroadcastTargetPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Target() to panic on a broadcast destination")
		}
	}()
	process.Broadcast().Target()
}

func TestPoolOfAndInPool(t *testing.T) {
	p := process.NewPool()
	a := p.Add("replicas", nil)
	b := p.Add("clients", nil)

	if name, err := p.PoolOf(a); err != nil || name != "replicas" {
		t.Fatalf("expected replicas, got %v err=%v", name, err)
	}
	if got := p.InPool("clients"); len(got) != 1 || got[0] != b {
		t.Fatalf("expected InPool(clients) == [%d], got %v", b, got)
	}
}
