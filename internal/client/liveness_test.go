package client

import (
	"testing"
	"time"
)

func TestTimersClampFuture(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	tm := Timers{
		LastRecv:    now.Add(time.Hour),
		LastEchoReq: past,
		LastEchoAck: now.Add(time.Second),
	}
	tm.ClampFuture(now)

	if !tm.LastRecv.Equal(now) || !tm.LastEchoAck.Equal(now) {
		t.Errorf("future timestamps not clamped: %+v", tm)
	}
	if !tm.LastEchoReq.Equal(past) {
		t.Errorf("LastEchoReq = %v, want %v", tm.LastEchoReq, past)
	}
	// A clamped clock must not hide a probe forever.
	if !tm.ProbeDue(now.Add(8*time.Second), 7*time.Second) {
		t.Error("probe not due after clamp")
	}
}

func TestTimersThresholds(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := Timers{LastRecv: start, LastEchoReq: start}

	tests := []struct {
		elapsed   time.Duration
		wantProbe bool
		wantDead  bool
	}{
		{0, false, false},
		{5 * time.Second, false, false},
		{5*time.Second + time.Millisecond, true, false},
		{30 * time.Second, true, false},
		{31 * time.Second, true, true},
	}
	for _, tt := range tests {
		now := start.Add(tt.elapsed)
		if got := tm.ProbeDue(now, 5*time.Second); got != tt.wantProbe {
			t.Errorf("ProbeDue(+%v) = %v, want %v", tt.elapsed, got, tt.wantProbe)
		}
		if got := tm.Dead(now, 30*time.Second); got != tt.wantDead {
			t.Errorf("Dead(+%v) = %v, want %v", tt.elapsed, got, tt.wantDead)
		}
	}
}

func TestTimersReset(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var tm Timers
	tm.Reset(now)

	if !tm.LastRecv.Equal(now) {
		t.Errorf("LastRecv = %v", tm.LastRecv)
	}
	if !tm.LastEchoReq.Equal(epoch) || !tm.LastEchoAck.Equal(epoch) {
		t.Errorf("echo timestamps not reset to epoch: %+v", tm)
	}
	if !tm.ProbeDue(now, 7*time.Second) {
		t.Error("probe must be due right after a reset")
	}
	if tm.Dead(now, 47*time.Second) {
		t.Error("link must not be dead right after a reset")
	}
}
