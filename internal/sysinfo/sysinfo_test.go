package sysinfo

import "testing"

func TestCollect(t *testing.T) {
	t.Parallel()

	env := Collect(1000)
	if env.ProcessID == 0 {
		t.Fatalf("process id not collected")
	}
	if env.ProcessorCount == 0 {
		t.Fatalf("processor count not collected")
	}
	if env.TimestampFrequency <= 0 {
		t.Fatalf("timestamp frequency = %d", env.TimestampFrequency)
	}
	if env.SamplingRateNs != 1000 {
		t.Fatalf("sampling rate = %d", env.SamplingRateNs)
	}
}

func TestNowAdvances(t *testing.T) {
	t.Parallel()

	a := Now()
	b := Now()
	if b < a {
		t.Fatalf("clock went backwards: %d then %d", a, b)
	}
}
