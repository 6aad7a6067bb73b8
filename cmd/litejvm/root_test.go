package main

import (
	"os"
	"testing"

	"github.com/z-yn/litejvm/internal/trace"
)

func TestApplyTraceLevel(t *testing.T) {
	prev := trace.GetLevel()
	defer trace.SetLevel(prev)

	cases := map[string]trace.Level{
		"SEVERE":  trace.SEVERE,
		"warning": trace.WARNING,
		"Info":    trace.INFO,
		"FINE":    trace.FINE,
		"trace":   trace.TRACE_INST,
	}
	for name, want := range cases {
		if err := applyTraceLevel(name); err != nil {
			t.Fatalf("applyTraceLevel(%q): %v", name, err)
		}
		if got := trace.GetLevel(); got != want {
			t.Errorf("applyTraceLevel(%q) -> GetLevel() = %v, want %v", name, got, want)
		}
	}
}

func TestApplyTraceLevelUnknown(t *testing.T) {
	prev := trace.GetLevel()
	defer trace.SetLevel(prev)

	if err := applyTraceLevel("BOGUS"); err == nil {
		t.Error("applyTraceLevel(\"BOGUS\") succeeded, want error")
	}
}

func TestGetEnvArgsJoinsInPrecedenceOrder(t *testing.T) {
	for _, name := range []string{"JAVA_TOOL_OPTIONS", "_JAVA_OPTIONS", "JDK_JAVA_OPTIONS"} {
		old, had := os.LookupEnv(name)
		os.Unsetenv(name)
		if had {
			defer os.Setenv(name, old)
		} else {
			defer os.Unsetenv(name)
		}
	}

	os.Setenv("JAVA_TOOL_OPTIONS", "-Dfoo=1")
	os.Setenv("JDK_JAVA_OPTIONS", "-Dbar=2")

	got := getEnvArgs()
	want := "-Dfoo=1 -Dbar=2"
	if got != want {
		t.Errorf("getEnvArgs() = %q, want %q", got, want)
	}
}

func TestGetEnvArgsEmptyWhenUnset(t *testing.T) {
	for _, name := range []string{"JAVA_TOOL_OPTIONS", "_JAVA_OPTIONS", "JDK_JAVA_OPTIONS"} {
		old, had := os.LookupEnv(name)
		os.Unsetenv(name)
		if had {
			defer os.Setenv(name, old)
		}
	}
	if got := getEnvArgs(); got != "" {
		t.Errorf("getEnvArgs() = %q, want empty", got)
	}
}
