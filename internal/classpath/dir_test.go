package classpath

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupFound(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "demo"), 0o755); err != nil {
		t.Fatal(err)
	}
	want := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x01, 0x02}
	if err := os.WriteFile(filepath.Join(dir, "demo", "Point.class"), want, 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewDirProvider(dir)
	got, ok, err := p.Lookup("demo/Point")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatal("Lookup reported not-found for an existing class file")
	}
	if string(got) != string(want) {
		t.Errorf("Lookup bytes = %v, want %v", got, want)
	}
}

func TestLookupNotFound(t *testing.T) {
	p := NewDirProvider(t.TempDir())
	data, ok, err := p.Lookup("demo/Missing")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok || data != nil {
		t.Errorf("Lookup = (%v,%v), want (nil,false) for a missing class", data, ok)
	}
}

func TestLookupEmptyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Empty.class"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewDirProvider(dir)
	data, ok, err := p.Lookup("Empty")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatal("Lookup reported not-found for an existing empty file")
	}
	if len(data) != 0 {
		t.Errorf("Lookup data = %v, want empty", data)
	}
}
