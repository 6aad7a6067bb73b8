package types

import "testing"

func TestZeroForByCategory(t *testing.T) {
	cases := []struct {
		desc string
		want Value
	}{
		{"I", Int(0)},
		{"Z", Int(0)},
		{"B", Int(0)},
		{"C", Int(0)},
		{"S", Int(0)},
		{"J", Long(0)},
		{"F", Float(0)},
		{"D", Double(0)},
		{"Ljava/lang/Object;", Null()},
		{"[I", Null()},
	}
	for _, c := range cases {
		got := ZeroFor(c.desc)
		if got.Tag != c.want.Tag {
			t.Errorf("ZeroFor(%q).Tag = %v, want %v", c.desc, got.Tag, c.want.Tag)
		}
	}
}

func TestZeroForEmptyDescriptor(t *testing.T) {
	if got := ZeroFor(""); got.Tag != TagUninitialized {
		t.Errorf("ZeroFor(\"\") = %v, want Uninitialized", got)
	}
}

func TestIsWide(t *testing.T) {
	wide := []Value{Long(1), Double(1)}
	for _, v := range wide {
		if !v.IsWide() {
			t.Errorf("%v.IsWide() = false, want true", v)
		}
	}
	narrow := []Value{Int(1), Float(1), ObjectRef(1), Null()}
	for _, v := range narrow {
		if v.IsWide() {
			t.Errorf("%v.IsWide() = true, want false", v)
		}
	}
}

func TestIsReference(t *testing.T) {
	refs := []Value{ObjectRef(1), ArrayRef(1), Null()}
	for _, v := range refs {
		if !v.IsReference() {
			t.Errorf("%v.IsReference() = false, want true", v)
		}
	}
	nonRefs := []Value{Int(1), Long(1), Float(1), Double(1), ReturnAddress(1)}
	for _, v := range nonRefs {
		if v.IsReference() {
			t.Errorf("%v.IsReference() = true, want false", v)
		}
	}
}

func TestValueString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Int(42), "int(42)"},
		{Long(7), "long(7)"},
		{Null(), "null"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("%v.String() = %q, want %q", c.v, got, c.want)
		}
	}
}
