package mathx

import (
	"testing"
	"time"
)

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-1, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Fatal("int clamp")
	}
	if Clamp(5, 3, 0) != 3 {
		t.Fatal("swapped bounds")
	}
	if Clamp(time.Millisecond, 200*time.Millisecond, time.Hour) != 200*time.Millisecond {
		t.Fatal("duration clamp")
	}
}

func TestBetween(t *testing.T) {
	if !Between(7, 0, 7) || Between(8, 0, 7) || !Between(1, 7, 0) {
		t.Fatal("Between")
	}
}

func TestSplitInt32(t *testing.T) {
	hi, lo := SplitInt32(-2)
	if hi != 0xFFFF || lo != 0xFFFE {
		t.Fatalf("SplitInt32(-2) = %#x %#x", hi, lo)
	}
	hi, lo = SplitInt32(0x12345678)
	if hi != 0x1234 || lo != 0x5678 {
		t.Fatalf("SplitInt32 = %#x %#x", hi, lo)
	}
}
