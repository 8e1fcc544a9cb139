package mcp3421

import (
	"math"
	"testing"
	"time"
)

func TestSimRoundTrip(t *testing.T) {
	cases := []struct {
		in   float64
		rate SampleRate
		gain Gain
		want int32
	}{
		{1.0, SPS15, GainX1, 16000},
		{-0.5, SPS15, GainX1, -8000},
		{1.0, SPS15, GainX2, 32000},
		{0.256, SPS240, GainX1, 256},
		{-0.001, SPS3_75, GainX1, -64},
		{5.0, SPS240, GainX1, 2047}, // clipped
	}
	for _, tc := range cases {
		sim := NewSim(0)
		sim.SetInput(tc.in)
		d := New(NewI2C(sim), 0)
		d.Apply(Config{Mode: Continuous, Rate: tc.rate, Gain: tc.gain})
		if err := d.Poll(); err != nil {
			t.Fatalf("%v/%v: poll: %v", tc.rate, tc.gain, err)
		}
		if d.Value() != tc.want {
			t.Errorf("%v V at %v/%v: value %d, want %d", tc.in, tc.rate, tc.gain, d.Value(), tc.want)
		}
	}
}

func TestSimOneShotNeedsTrigger(t *testing.T) {
	sim := NewSim(2)
	sim.Delay = 5 * time.Millisecond
	sim.SetInput(0.5)
	d := New(NewI2C(sim), 2)
	d.SetConversionMode(OneShot)

	if err := d.Trigger(); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if err := d.Collect(); err != ErrNotReady {
		t.Fatalf("immediate collect = %v, want ErrNotReady", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := d.Collect(); err != nil {
		t.Fatalf("collect after delay: %v", err)
	}
	if math.Abs(d.Voltage()-0.5) > LSB(SPS240) {
		t.Fatalf("voltage = %v, want 0.5", d.Voltage())
	}
	// The result has been consumed; without a new trigger nothing is ready.
	if err := d.Collect(); err != ErrNotReady {
		t.Fatalf("second collect = %v, want ErrNotReady", err)
	}
	if sim.Writes() != 1 {
		t.Fatalf("writes = %d, want 1", sim.Writes())
	}
}

func TestSimWrongAddress(t *testing.T) {
	sim := NewSim(0)
	d := New(NewI2C(sim), 3)
	if err := d.Poll(); err != ErrNoDevice {
		t.Fatalf("err = %v, want ErrNoDevice", err)
	}
}
