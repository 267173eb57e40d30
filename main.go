// Package main is the entry point for the Kenes CLI application.
// It gives case managers and applicants terminal access to the Kenes
// case-management service.
package main

import (
	"kenes/cli/cmd"
)

// main is the entry point for the Kenes CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
