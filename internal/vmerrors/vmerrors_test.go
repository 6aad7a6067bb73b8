package vmerrors

import (
	"errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(FieldNotFound, "field %q on %q", "x", "demo/Point")
	want := "FieldNotFound: field \"x\" on \"demo/Point\""
	if got := err.Error(); got[:len(want)] != want {
		t.Errorf("Error() = %q, want prefix %q", got, want)
	}
	if err.Site == "" {
		t.Error("Site was not stamped")
	}
}

func TestIsMatchesByKindOnly(t *testing.T) {
	a := New(ClassNotFound, "demo/A")
	b := New(ClassNotFound, "demo/B")
	c := New(MethodNotFound, "demo/A.foo")

	if !errors.Is(a, b) {
		t.Error("errors with the same Kind should match via errors.Is")
	}
	if errors.Is(a, c) {
		t.Error("errors with different Kinds should not match")
	}
}

func TestNewfReturnsError(t *testing.T) {
	err := Newf(StackOverflow, "depth %d", 5)
	var vmErr *VMError
	if !errors.As(err, &vmErr) {
		t.Fatal("Newf did not return a *VMError")
	}
	if vmErr.Kind != StackOverflow {
		t.Errorf("Kind = %v, want StackOverflow", vmErr.Kind)
	}
}

func TestClassFormatErrorf(t *testing.T) {
	err := ClassFormatErrorf("bad magic %x", 0xdeadbeef)
	var vmErr *VMError
	if !errors.As(err, &vmErr) || vmErr.Kind != ClassFormatError {
		t.Errorf("got %v, want ClassFormatError", err)
	}
}

func TestUnknownKindStringsFallBack(t *testing.T) {
	var k Kind = 9999
	if got := k.String(); got != "UnknownError" {
		t.Errorf("String() = %q, want UnknownError", got)
	}
}
