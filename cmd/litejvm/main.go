// Command litejvm is the command-line entry point for the interpreter:
// it resolves a class path, loads a main class, and runs it.
package main

func main() {
	Execute()
}
