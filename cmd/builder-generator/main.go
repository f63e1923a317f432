// Package main provides the CLI entrypoint for builder-generator.
//
// builder-generator reads datatypes declared as Go interfaces or structs
// (or described in YAML or OpenAPI) and generates, for each, a mutable
// builder, an immutable value and a partial value.
//
// Commands:
//
//	gen       generate and write the builder files
//	check     report generated files that are missing or out of date
//	describe  print the classified properties of each datatype
//	init      write a default builder-generator.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

const usage = `builder-generator - generates builders, values and partials for Go datatypes

Usage:
  builder-generator <command> [flags]

Commands:
  gen       generate and write the builder files
  check     report generated files that are missing or out of date
  describe  print the classified properties of each datatype
  init      write a default builder-generator.yaml

Run "builder-generator <command> -h" for the flags of a command.
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("builder-generator: ")

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, ok := commands[args[0]]
	if !ok {
		if args[0] == "-h" || args[0] == "-help" || args[0] == "help" {
			fmt.Fprint(stdout, usage)
			return 0
		}

		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)

		return 2
	}

	env := &environment{stdout: stdout, stderr: stderr, confirm: confirm}

	if err := cmd(env, args[1:]); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errFailed):
			return 1
		}

		fmt.Fprintf(stderr, "builder-generator: %v\n", err)

		return 1
	}

	return 0
}
