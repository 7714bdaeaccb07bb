package keyboard

import (
	"testing"
	"time"

	"github.com/dshills/keybridge/internal/textproc"
)

// stepClock returns a now func that advances by step on every call, so tap
// spacing is deterministic regardless of test host speed.
func stepClock(step time.Duration) func() time.Time {
	t := time.Unix(1700000000, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func tap(s *ShiftMachine) {
	s.HandleShiftDown()
	s.HandleShiftUp()
}

func TestShiftTapTogglesManual(t *testing.T) {
	s := NewShiftMachine(ShiftPolicyDoubleTap, 300*time.Millisecond)
	s.now = stepClock(time.Second)

	tap(s)
	if got := s.State(); got != ShiftManual {
		t.Fatalf("after tap State() = %v, want %v", got, ShiftManual)
	}
	tap(s)
	if got := s.State(); got != ShiftUnshifted {
		t.Fatalf("after second tap State() = %v, want %v", got, ShiftUnshifted)
	}
	tap(s)
	if got := s.State(); got != ShiftManual {
		t.Fatalf("after third tap State() = %v, want %v", got, ShiftManual)
	}
}

func TestShiftDoubleTapPromotesCapsLock(t *testing.T) {
	s := NewShiftMachine(ShiftPolicyDoubleTap, 300*time.Millisecond)
	s.now = stepClock(100 * time.Millisecond)

	tap(s)
	tap(s)
	if got := s.State(); got != ShiftCapsLock {
		t.Fatalf("after double tap State() = %v, want %v", got, ShiftCapsLock)
	}
	tap(s)
	if got := s.State(); got != ShiftUnshifted {
		t.Fatalf("tap on caps-lock State() = %v, want %v", got, ShiftUnshifted)
	}
}

func TestShiftDoubleTapWindowExpires(t *testing.T) {
	s := NewShiftMachine(ShiftPolicyDoubleTap, 300*time.Millisecond)
	s.now = stepClock(301 * time.Millisecond)

	tap(s)
	tap(s)
	if got := s.State(); got != ShiftUnshifted {
		t.Fatalf("slow second tap State() = %v, want %v", got, ShiftUnshifted)
	}
}

func TestShiftTapDismissesAutomatic(t *testing.T) {
	s := NewShiftMachine(ShiftPolicyDoubleTap, 300*time.Millisecond)
	s.now = stepClock(100 * time.Millisecond)

	s.Decay(textproc.CapsSentence)
	if got := s.State(); got != ShiftAutomatic {
		t.Fatalf("after sentence decay State() = %v, want %v", got, ShiftAutomatic)
	}
	tap(s)
	if got := s.State(); got != ShiftUnshifted {
		t.Fatalf("tap on automatic State() = %v, want %v", got, ShiftUnshifted)
	}
	tap(s)
	if got := s.State(); got != ShiftCapsLock {
		t.Fatalf("quick second tap State() = %v, want %v", got, ShiftCapsLock)
	}
}

func TestShiftCyclePolicy(t *testing.T) {
	s := NewShiftMachine(ShiftPolicyCycle, 300*time.Millisecond)
	s.now = stepClock(time.Second)

	want := []ShiftState{ShiftManual, ShiftCapsLock, ShiftUnshifted, ShiftManual}
	for i, w := range want {
		tap(s)
		if got := s.State(); got != w {
			t.Fatalf("cycle tap %d State() = %v, want %v", i+1, got, w)
		}
	}
}

func TestShiftCyclePolicyFromAutomatic(t *testing.T) {
	s := NewShiftMachine(ShiftPolicyCycle, 300*time.Millisecond)
	s.Decay(textproc.CapsSentence)
	tap(s)
	if got := s.State(); got != ShiftCapsLock {
		t.Fatalf("cycle tap on automatic State() = %v, want %v", got, ShiftCapsLock)
	}
}

func TestShiftHeldModifier(t *testing.T) {
	s := NewShiftMachine(ShiftPolicyDoubleTap, 300*time.Millisecond)

	s.HandleShiftDown()
	if !s.Shifted() {
		t.Fatal("Shifted() = false while shift held")
	}
	if got := s.Apply('a'); got != 'A' {
		t.Fatalf("Apply('a') while held = %q, want %q", got, 'A')
	}
	s.MarkUsed()
	s.HandleShiftUp()
	if got := s.State(); got != ShiftUnshifted {
		t.Fatalf("after modifier use State() = %v, want %v", got, ShiftUnshifted)
	}
	if got := s.Apply('a'); got != 'a' {
		t.Fatalf("Apply('a') after release = %q, want %q", got, 'a')
	}
}

func TestShiftHeldWithoutUseCountsAsTap(t *testing.T) {
	s := NewShiftMachine(ShiftPolicyDoubleTap, 300*time.Millisecond)
	s.HandleShiftDown()
	s.HandleShiftUp()
	if got := s.State(); got != ShiftManual {
		t.Fatalf("State() = %v, want %v", got, ShiftManual)
	}
}

func TestShiftCapsLockKeyToggles(t *testing.T) {
	s := NewShiftMachine(ShiftPolicyDoubleTap, 300*time.Millisecond)

	s.HandleCapsLock()
	if got := s.State(); got != ShiftCapsLock {
		t.Fatalf("State() = %v, want %v", got, ShiftCapsLock)
	}
	s.Decay(textproc.CapsNone)
	if got := s.State(); got != ShiftCapsLock {
		t.Fatalf("caps-lock decayed to %v, want %v", got, ShiftCapsLock)
	}
	s.HandleCapsLock()
	if got := s.State(); got != ShiftUnshifted {
		t.Fatalf("State() = %v, want %v", got, ShiftUnshifted)
	}
}

func TestShiftDecay(t *testing.T) {
	tests := []struct {
		name  string
		state ShiftState
		ctx   textproc.CapsContext
		want  ShiftState
	}{
		{"manual drops", ShiftManual, textproc.CapsNone, ShiftUnshifted},
		{"manual rearms at sentence", ShiftManual, textproc.CapsSentence, ShiftAutomatic},
		{"unshifted arms at sentence", ShiftUnshifted, textproc.CapsSentence, ShiftAutomatic},
		{"automatic drops mid-word", ShiftAutomatic, textproc.CapsNone, ShiftUnshifted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShiftMachine(ShiftPolicyDoubleTap, 300*time.Millisecond)
			s.state = tt.state
			s.Decay(tt.ctx)
			if got := s.State(); got != tt.want {
				t.Errorf("Decay(%v) from %v = %v, want %v", tt.ctx, tt.state, got, tt.want)
			}
		})
	}
}

func TestShiftDecayAutoCapitalizeOff(t *testing.T) {
	s := NewShiftMachine(ShiftPolicyDoubleTap, 300*time.Millisecond)
	s.SetAutoCapitalize(false)
	s.Decay(textproc.CapsSentence)
	if got := s.State(); got != ShiftUnshifted {
		t.Fatalf("State() = %v, want %v", got, ShiftUnshifted)
	}
}

func TestShiftDecayHoldsWhileHeld(t *testing.T) {
	s := NewShiftMachine(ShiftPolicyDoubleTap, 300*time.Millisecond)
	s.now = stepClock(time.Second)

	tap(s)
	s.HandleShiftDown()
	s.Decay(textproc.CapsNone)
	if got := s.State(); got != ShiftManual {
		t.Fatalf("decay while held State() = %v, want %v", got, ShiftManual)
	}
	s.MarkUsed()
	s.HandleShiftUp()
	if got := s.State(); got != ShiftUnshifted {
		t.Fatalf("State() = %v, want %v", got, ShiftUnshifted)
	}
}

func TestShiftApply(t *testing.T) {
	tests := []struct {
		name  string
		state ShiftState
		in    rune
		want  rune
	}{
		{"unshifted passthrough", ShiftUnshifted, 'q', 'q'},
		{"manual uppercases", ShiftManual, 'q', 'Q'},
		{"automatic uppercases", ShiftAutomatic, 'é', 'É'},
		{"caps-lock uppercases", ShiftCapsLock, 'q', 'Q'},
		{"non-letter unchanged", ShiftManual, '7', '7'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShiftMachine(ShiftPolicyDoubleTap, 300*time.Millisecond)
			s.state = tt.state
			if got := s.Apply(tt.in); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestShiftReset(t *testing.T) {
	s := NewShiftMachine(ShiftPolicyDoubleTap, 300*time.Millisecond)
	s.HandleCapsLock()
	s.HandleShiftDown()
	s.Reset()
	if got := s.State(); got != ShiftUnshifted {
		t.Fatalf("State() = %v, want %v", got, ShiftUnshifted)
	}
	if s.Shifted() {
		t.Fatal("Shifted() = true after Reset")
	}
}
