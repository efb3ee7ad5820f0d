// Command barxbench runs the barrier latency suite for one algorithm
// and writes the resulting table to a file.
//
// Usage:
//
//	barxbench [-locality good|bad] [-json file] <algorithm> <output-file>
//
// where <algorithm> is one of the registered tags (centralized,
// tree_local, tree_global, parking). The exit code is 0 on success and
// non-zero on malformed arguments or I/O failure.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/llxisdsh/barx"
	"github.com/llxisdsh/barx/bench"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "barxbench:", err)
		os.Exit(1)
	}
}

func run() error {
	locality := flag.String("locality", "good", "tree layout locality: good or bad")
	jsonPath := flag.String("json", "", "also write the results as JSON to this file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: barxbench [flags] <algorithm> <output-file>\n")
		fmt.Fprintf(flag.CommandLine.Output(), "algorithms: %v\n", bench.Tags())
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return fmt.Errorf("expected 2 arguments, got %d", flag.NArg())
	}
	algorithm, outPath := flag.Arg(0), flag.Arg(1)

	var loc barx.Locality
	switch *locality {
	case "good":
		loc = barx.GoodLocality
	case "bad":
		loc = barx.BadLocality
	default:
		return fmt.Errorf("unknown locality %q, want good or bad", *locality)
	}

	res, err := bench.Run(bench.Config{
		Algorithm: algorithm,
		Locality:  loc,
		Progress:  os.Stdout,
	})
	if err != nil {
		return err
	}

	if err := writeFile(outPath, res.WriteTSV); err != nil {
		return err
	}
	fmt.Printf("Data file %s was written successfully!\n", outPath)

	if *jsonPath != "" {
		if err := writeFile(*jsonPath, res.WriteJSON); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f)
}
