package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/z-yn/litejvm/internal/trace"
	"github.com/z-yn/litejvm/vm"
)

var (
	classPathFlag []string
	traceLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "litejvm <main-class> [args...]",
	Short: "A minimal JVM bytecode interpreter",
	Long: `litejvm loads a main class from the given class path, runs its
public static void main(String[]) method, and exits with its result.`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagsInUseLine: true,
	RunE:               runMain,
}

func init() {
	rootCmd.Flags().StringSliceVar(&classPathFlag, "cp", nil,
		"one or more directories or .jar files to search for classes")
	rootCmd.Flags().StringVar(&traceLevel, "trace", "WARNING",
		"trace granularity: SEVERE, WARNING, INFO, FINE, or TRACE")
}

func runMain(cmd *cobra.Command, args []string) error {
	if err := applyTraceLevel(traceLevel); err != nil {
		return err
	}

	mainClass := args[0]
	programArgs := args[1:]

	machine := vm.New()
	for _, p := range classPathFlag {
		if err := machine.AddClassPath(p); err != nil {
			return fmt.Errorf("adding class path %q: %w", p, err)
		}
	}
	// the current working directory is always searched last, matching
	// a bare `java MainClass` invocation with no -cp.
	if err := machine.AddClassPath("."); err != nil {
		return fmt.Errorf("adding default class path: %w", err)
	}

	envArgs := getEnvArgs()
	if envArgs != "" {
		trace.Info("JVM environment options: " + envArgs)
	}

	return machine.Run(mainClass, programArgs)
}

func applyTraceLevel(name string) error {
	switch strings.ToUpper(name) {
	case "SEVERE":
		trace.SetLevel(trace.SEVERE)
	case "WARNING":
		trace.SetLevel(trace.WARNING)
	case "INFO":
		trace.SetLevel(trace.INFO)
	case "FINE":
		trace.SetLevel(trace.FINE)
	case "TRACE":
		trace.SetLevel(trace.TRACE_INST)
	default:
		return fmt.Errorf("unknown trace level %q", name)
	}
	return nil
}

// getEnvArgs collects the standard JVM environment-variable options,
// in the same precedence order and space-joined format a real `java`
// launcher reports them.
func getEnvArgs() string {
	var parts []string
	for _, name := range []string{"JAVA_TOOL_OPTIONS", "_JAVA_OPTIONS", "JDK_JAVA_OPTIONS"} {
		if v := os.Getenv(name); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
