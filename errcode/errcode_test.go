package errcode

import (
	"errors"
	"fmt"
	"testing"

	"mcp3421-go/drivers/mcp3421"
)

func TestOf(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, OK},
		{Busy, Busy},
		{fmt.Errorf("tx: %w", Timeout), Timeout},
		{&E{C: UnknownBus, Op: "build"}, UnknownBus},
		{fmt.Errorf("outer: %w", &E{C: NoAdaptor}), NoAdaptor},
		{errors.New("plain"), Error},
	}
	for _, tc := range cases {
		if got := Of(tc.err); got != tc.want {
			t.Errorf("Of(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestMapDriverErr(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, OK},
		{mcp3421.ErrNotReady, NotReady},
		{fmt.Errorf("poll: %w", mcp3421.ErrShortRead), ShortRead},
		{mcp3421.ErrTimeout, Timeout},
		{mcp3421.ErrNoDevice, NoDevice},
		{Busy, Busy},
		{errors.New("i2c nack"), Error},
	}
	for _, tc := range cases {
		if got := MapDriverErr(tc.err); got != tc.want {
			t.Errorf("MapDriverErr(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestWrap(t *testing.T) {
	if Wrap("collect", nil) != nil {
		t.Fatal("Wrap(nil) != nil")
	}
	err := Wrap("collect", mcp3421.ErrShortRead)
	if Of(err) != ShortRead {
		t.Fatalf("Of(Wrap) = %q", Of(err))
	}
	if !errors.Is(err, mcp3421.ErrShortRead) {
		t.Fatal("Wrap lost the cause")
	}
	if got := err.Error(); got != "collect: short_read: mcp3421: short read" {
		t.Fatalf("Error() = %q", got)
	}
}
