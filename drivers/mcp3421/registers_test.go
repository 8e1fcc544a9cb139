package mcp3421

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for m := OneShot; m <= Continuous; m++ {
		for r := SPS240; r <= SPS3_75; r++ {
			for g := GainX1; g <= GainX8; g++ {
				c := Config{Mode: m, Rate: r, Gain: g}
				ready, got := DecodeConfig(c.Encode())
				if diff := cmp.Diff(c, got); diff != "" {
					t.Fatalf("round trip %+v (-want +got):\n%s", c, diff)
				}
				if ready != (m == OneShot) {
					t.Fatalf("%+v: ready = %v", c, ready)
				}
			}
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	cases := []struct {
		c    Config
		want byte
	}{
		{Config{Continuous, SPS240, GainX1}, 0x10},
		{Config{Continuous, SPS3_75, GainX8}, 0x1F},
		{Config{OneShot, SPS15, GainX2}, 0x89},
		{Config{OneShot, SPS60, GainX4}, 0x86},
	}
	for _, tc := range cases {
		if got := tc.c.Encode(); got != tc.want {
			t.Errorf("Encode(%+v) = %#02x, want %#02x", tc.c, got, tc.want)
		}
	}
}

func TestDecodeIgnoresUnusedBits(t *testing.T) {
	ready, c := DecodeConfig(0x9F | 0x60)
	if !ready {
		t.Fatal("ready flag lost")
	}
	if diff := cmp.Diff(Config{Continuous, SPS3_75, GainX8}, c); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestParseRejectsOutOfRange(t *testing.T) {
	if _, ok := ParseMode(2); ok {
		t.Error("ParseMode(2) accepted")
	}
	if _, ok := ParseSampleRate(4); ok {
		t.Error("ParseSampleRate(4) accepted")
	}
	if _, ok := ParseGain(4); ok {
		t.Error("ParseGain(4) accepted")
	}
	if g, ok := ParseGain(3); !ok || g != GainX8 {
		t.Errorf("ParseGain(3) = %v, %v", g, ok)
	}
}

func TestRateTables(t *testing.T) {
	cases := []struct {
		r       SampleRate
		bits    int
		respLen int
	}{
		{SPS240, 12, 3},
		{SPS60, 14, 3},
		{SPS15, 16, 3},
		{SPS3_75, 18, 4},
		{SampleRate(9), 18, 4},
	}
	for _, tc := range cases {
		if tc.r.Bits() != tc.bits || tc.r.ResponseLen() != tc.respLen {
			t.Errorf("%v: bits=%d len=%d", tc.r, tc.r.Bits(), tc.r.ResponseLen())
		}
		if tc.bits == 18 && tc.r != SPS3_75 {
			continue
		}
		if r, ok := RateForBits(tc.bits); !ok || r != tc.r {
			t.Errorf("RateForBits(%d) = %v, %v", tc.bits, r, ok)
		}
	}
}

func TestGainFactor(t *testing.T) {
	for _, f := range []int{1, 2, 4, 8} {
		g, ok := GainForFactor(f)
		if !ok || g.Factor() != f {
			t.Errorf("GainForFactor(%d) = %v, %v", f, g, ok)
		}
	}
	if _, ok := GainForFactor(3); ok {
		t.Error("GainForFactor(3) accepted")
	}
}

func TestDecodeSample(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		r    SampleRate
		want int32
	}{
		{"12 zero", []byte{0x00, 0x00}, SPS240, 0},
		{"12 mid", []byte{0x01, 0x00}, SPS240, 256},
		{"12 max positive", []byte{0x07, 0xFF}, SPS240, 2047},
		{"12 half", []byte{0x08, 0x00}, SPS240, 2048 - 4095},
		{"12 high nibble ignored", []byte{0xF1, 0x00}, SPS240, 256},
		{"14 max positive", []byte{0x1F, 0xFF}, SPS60, 8191},
		{"14 negative", []byte{0x20, 0x00}, SPS60, 8192 - 16383},
		{"16 positive", []byte{0x12, 0x34}, SPS15, 0x1234},
		{"16 negative", []byte{0xFF, 0xFE}, SPS15, 0xFFFE - 65535},
		{"18 positive", []byte{0x01, 0x00, 0x00}, SPS3_75, 65536},
		{"18 all ones", []byte{0x03, 0xFF, 0xFF}, SPS3_75, 0},
		{"18 half", []byte{0x02, 0x00, 0x00}, SPS3_75, 131072 - 262143},
	}
	for _, tc := range cases {
		if got := DecodeSample(tc.data, tc.r); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestToVoltage(t *testing.T) {
	for r := SPS240; r <= SPS3_75; r++ {
		if v := ToVoltage(0, r); v != 0 {
			t.Errorf("ToVoltage(0, %v) = %v", r, v)
		}
		prev := ToVoltage(-1<<(r.Bits()-1), r)
		for x := int32(-1 << (r.Bits() - 1)); x < 1<<(r.Bits()-1); x += 97 {
			v := ToVoltage(x, r)
			if v < prev {
				t.Fatalf("%v: not monotonic at %d", r, x)
			}
			prev = v
		}
	}
	if got := ToVoltage(1, SampleRate(7)); got != FullScale/262144 {
		t.Errorf("unknown rate LSB = %v", got)
	}
	if math.Abs(LSB(SPS240)-0.001) > 1e-15 {
		t.Errorf("12-bit LSB = %v, want 0.001", LSB(SPS240))
	}
}
