package statics

import (
	"testing"

	"github.com/z-yn/litejvm/internal/types"
)

func TestDefineClassSeedsZeroValues(t *testing.T) {
	tbl := New()
	tbl.DefineClass("demo/Counter", map[string]string{"count": "I", "total": "J"})

	v, err := tbl.Get("demo/Counter", "count")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.Tag != types.TagInt || v.I != 0 {
		t.Errorf("count = %v, want int(0)", v)
	}
}

func TestDefineClassIsIdempotent(t *testing.T) {
	tbl := New()
	tbl.DefineClass("demo/Counter", map[string]string{"count": "I"})
	if err := tbl.Set("demo/Counter", "count", types.Int(5)); err != nil {
		t.Fatal(err)
	}
	tbl.DefineClass("demo/Counter", map[string]string{"count": "I"}) // no-op
	v, err := tbl.Get("demo/Counter", "count")
	if err != nil {
		t.Fatal(err)
	}
	if v.I != 5 {
		t.Errorf("count after re-DefineClass = %d, want 5 (unchanged)", v.I)
	}
}

func TestGetUndefinedClass(t *testing.T) {
	tbl := New()
	if _, err := tbl.Get("demo/Missing", "x"); err == nil {
		t.Error("Get on undefined class succeeded, want error")
	}
}

func TestSetUndefinedField(t *testing.T) {
	tbl := New()
	tbl.DefineClass("demo/Counter", map[string]string{"count": "I"})
	if err := tbl.Set("demo/Counter", "nonexistent", types.Int(1)); err == nil {
		t.Error("Set on undefined field succeeded, want error")
	}
}

func TestInternTableFirstWriterWins(t *testing.T) {
	it := NewInternTable()
	if _, ok := it.Intern("hello"); ok {
		t.Fatal("Intern found an entry before any Put")
	}
	winner := it.Put("hello", 100)
	if winner != 100 {
		t.Errorf("first Put returned %d, want 100", winner)
	}
	// A second, competing Put for the same key must lose to the first.
	second := it.Put("hello", 200)
	if second != 100 {
		t.Errorf("second Put returned %d, want the original 100", second)
	}
	ref, ok := it.Intern("hello")
	if !ok || ref != 100 {
		t.Errorf("Intern(\"hello\") = (%d,%v), want (100,true)", ref, ok)
	}
}
