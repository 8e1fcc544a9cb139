package halcore

import "testing"

func TestSentinelsDistinct(t *testing.T) {
	if ErrNotReady == ErrUnsupported {
		t.Fatal("sentinels must be distinct")
	}
}
