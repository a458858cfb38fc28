package gpio

import (
	"errors"
	"testing"
)

func TestFakePinScriptedReads(t *testing.T) {
	d := NewFakeDriver()
	d.Pin("15").SetLevels(High, Low, High)

	h, err := d.Configure("15", Input, PullUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Level{High, Low, High, High} // last level repeats
	for i, w := range want {
		got, err := h.Read()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d: got %v, want %v", i, got, w)
		}
	}
}

func TestFakePinRecordsConfig(t *testing.T) {
	d := NewFakeDriver()
	if _, err := d.Configure("15", Input, PullDown); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dir, pull := d.Pin("15").Config()
	if dir != Input || pull != PullDown {
		t.Errorf("got (%v, %v), want (in, down)", dir, pull)
	}
}

func TestFakeDriverUnavailable(t *testing.T) {
	d := NewFakeDriver()
	d.SetUnavailable("99")

	_, err := d.Configure("99", Input, PullUp)
	if !errors.Is(err, ErrHardwareConfig) {
		t.Errorf("expected ErrHardwareConfig, got %v", err)
	}
}

func TestFakeDriverEmptyID(t *testing.T) {
	d := NewFakeDriver()
	_, err := d.Configure("", Output, PullNone)
	if !errors.Is(err, ErrHardwareConfig) {
		t.Errorf("expected ErrHardwareConfig, got %v", err)
	}
}

func TestFakeDriverOutputWithPull(t *testing.T) {
	d := NewFakeDriver()
	_, err := d.Configure("18", Output, PullUp)
	if !errors.Is(err, ErrHardwareConfig) {
		t.Errorf("expected ErrHardwareConfig, got %v", err)
	}
}

func TestFakeDriverBusyUntilClosed(t *testing.T) {
	d := NewFakeDriver()
	h, err := d.Configure("15", Input, PullUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = d.Configure("15", Input, PullUp)
	if !errors.Is(err, ErrPinBusy) {
		t.Fatalf("expected ErrPinBusy, got %v", err)
	}
	if !errors.Is(err, ErrHardwareConfig) {
		t.Errorf("busy error should also match ErrHardwareConfig")
	}

	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := d.Configure("15", Input, PullUp); err != nil {
		t.Errorf("reconfigure after close: %v", err)
	}
}

func TestFakePinWrites(t *testing.T) {
	d := NewFakeDriver()
	h, _ := d.Configure("18", Output, PullNone)

	h.Write(High)
	h.Write(Low)

	got := d.Pin("18").Writes()
	if len(got) != 2 || got[0] != High || got[1] != Low {
		t.Errorf("writes: got %v, want [1 0]", got)
	}

	lvl, _ := h.Read()
	if lvl != Low {
		t.Errorf("read back: got %v, want 0", lvl)
	}
}

func TestFakePinWriteToInput(t *testing.T) {
	d := NewFakeDriver()
	h, _ := d.Configure("15", Input, PullUp)
	if err := h.Write(High); err == nil {
		t.Error("expected error writing an input")
	}
}

func TestFakePinFireOnlyMatchingEdge(t *testing.T) {
	d := NewFakeDriver()
	h, _ := d.Configure("15", Input, PullUp)
	p := d.Pin("15")

	calls := 0
	if err := h.AttachInterrupt(EdgeFalling, func() { calls++ }); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if p.Fire(EdgeRising) {
		t.Error("rising edge should not fire a falling handler")
	}
	if !p.Fire(EdgeFalling) {
		t.Error("falling edge should fire")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}

	if err := h.DetachInterrupt(); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if p.Fire(EdgeFalling) {
		t.Error("detached handler should not fire")
	}
	if calls != 1 {
		t.Errorf("expected 1 call after detach, got %d", calls)
	}
}

func TestFakePinDriveFiresEdges(t *testing.T) {
	d := NewFakeDriver()
	p := d.Pin("15")
	p.SetLevel(High)
	h, _ := d.Configure("15", Input, PullUp)

	calls := 0
	h.AttachInterrupt(EdgeFalling, func() { calls++ })

	p.Drive(Low)  // falling
	p.Drive(Low)  // no edge
	p.Drive(High) // rising, not armed
	p.Drive(Low)  // falling

	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestFakePinErrors(t *testing.T) {
	d := NewFakeDriver()
	h, _ := d.Configure("15", Input, PullUp)
	p := d.Pin("15")

	p.ReadError = errors.New("simulated read error")
	if _, err := h.Read(); err == nil || err.Error() != "simulated read error" {
		t.Errorf("unexpected read error: %v", err)
	}

	p.AttachError = errors.New("simulated attach error")
	if err := h.AttachInterrupt(EdgeFalling, func() {}); err == nil {
		t.Error("expected attach error")
	}
	if _, armed := p.Attached(); armed {
		t.Error("failed attach should leave pin disarmed")
	}
}

func TestFakePinClosed(t *testing.T) {
	d := NewFakeDriver()
	h, _ := d.Configure("15", Input, PullUp)
	p := d.Pin("15")

	h.AttachInterrupt(EdgeFalling, func() {})

	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !p.Closed() {
		t.Error("expected pin to be closed")
	}
	if _, armed := p.Attached(); armed {
		t.Error("close should disarm the interrupt")
	}
	if _, err := h.Read(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
