// Command cddlc translates CDDL schemas into the intermediate type
// representation consumed by a downstream Rust code generator.
//
// Usage:
//
//	cddlc translate <schema-file>...
//	cddlc check <schema-file>...
//	cddlc version
//
// Translate Command:
//
//	Parse and analyze schema files, printing every registered
//	alias/struct/generic in source order.
//
// Check Command:
//
//	Parse and analyze schema files, reporting only errors and an exit
//	code. Nothing is printed on success.
package main

import (
	"fmt"
	"os"

	"github.com/blockberries/cddlc/pkg/analyze"
	"github.com/blockberries/cddlc/pkg/cddl"
	"github.com/blockberries/cddlc/pkg/itr"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "translate", "trans", "t":
		cmdTranslate(os.Args[2:])
	case "check", "c":
		cmdCheck(os.Args[2:])
	case "version":
		fmt.Println("cddlc " + version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`cddlc: CDDL-to-intermediate-representation translator

Usage:
  cddlc <command> <files>...

Commands:
  translate    Parse and analyze schemas, printing the resulting IR
  check        Parse and analyze schemas, reporting only errors
  version      Print version information

Run 'cddlc help' for this message.`)
}

// cmdTranslate parses and analyzes every input file into its own
// catalog, then prints every entry that catalog accumulated.
func cmdTranslate(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		os.Exit(1)
	}

	hasErrors := false
	for _, path := range args {
		cat, err := translateFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			hasErrors = true
			continue
		}
		fmt.Printf("# %s\n", path)
		for _, name := range cat.Names() {
			desc, ok := cat.Describe(name)
			if !ok {
				continue
			}
			fmt.Println(desc)
		}
	}

	if hasErrors {
		os.Exit(1)
	}
}

// cmdCheck is cmdTranslate without the dump: it parses and analyzes
// every file, reporting only errors.
func cmdCheck(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		os.Exit(1)
	}

	hasErrors := false
	for _, path := range args {
		if _, err := translateFile(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			hasErrors = true
		}
	}

	if hasErrors {
		os.Exit(1)
	}
}

// translateFile reads, parses, and analyzes a single schema file,
// returning the populated catalog or the first error encountered.
func translateFile(path string) (*itr.Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	file, parseErrs := cddl.ParseFile(path, string(src))
	if len(parseErrs) > 0 {
		return nil, parseErrs[0]
	}

	cat := itr.NewCatalog()
	if analyzeErr := analyze.Run(file, cat); analyzeErr != nil {
		return nil, analyzeErr
	}
	return cat, nil
}
