// Command validate checks a gridded altimeter output file: required
// variables and units, column lengths, the hourly time axis, neighbour
// counts, and value plausibility.
//
// Usage:
//
//	go run ./cmd/validate AltimeterGridded_JASON3.nc
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/akamensky/argparse"

	"github.com/couchcryptid/altimeter-grid-etl/internal/adapter/ncfile"
	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

func main() {
	parser := argparse.NewParser("validate", "Checks the integrity of a gridded altimeter output file")
	path := parser.StringPositional(&argparse.Options{
		Required: true,
		Help:     "gridded output file"})
	maxErrors := parser.Int("n", "max-errors", &argparse.Options{
		Default: 20,
		Help:    "errors printed per phase"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(2)
	}

	if code := run(os.Stdout, *path, *maxErrors); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, path string, maxErrors int) int {
	fmt.Fprintln(w, "=== Altimeter Grid Output Validation ===")
	fmt.Fprintln(w)

	out, err := ncfile.ReadOutput(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := validate(out, domain.DefaultBounds())

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d\n", out.Records.Len())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrors {
				fmt.Fprintf(w, "  ... %d more\n", len(p.errors)-maxErrors)
				break
			}
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}
