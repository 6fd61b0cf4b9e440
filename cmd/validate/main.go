package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/saltmarsh-games/worldengine/pkg/validate"
	"github.com/saltmarsh-games/worldengine/pkg/world"
)

// Exit codes: 0 clean (warnings allowed), 1 errors found or file unreadable.
func main() {
	jsonOut := flag.Bool("json", false, "emit the report as JSON")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-json] <world.yaml> [more.yaml ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	failed := false
	for _, filename := range flag.Args() {
		if !validateFile(filename, *jsonOut) {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func validateFile(filename string, jsonOut bool) bool {
	w, err := world.Load(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
		return false
	}

	report := validate.Run(w)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "%s: failed to encode report: %v\n", filename, err)
			return false
		}
		return !report.HasErrors()
	}

	fmt.Printf("Validating %s...\n", filename)
	for _, f := range report.Findings {
		fmt.Println("  " + f.String())
	}

	if report.HasErrors() {
		fmt.Printf("%s: %d error(s), %d warning(s)\n", filename, len(report.Errors()), len(report.Warnings()))
		return false
	}
	if n := len(report.Warnings()); n > 0 {
		fmt.Printf("%s is valid with %d warning(s)\n", filename, n)
	} else {
		fmt.Printf("%s is valid!\n", filename)
	}
	return true
}
