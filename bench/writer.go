package bench

import (
	"fmt"
	"io"

	"github.com/sugawarayuuta/sonnet"
)

// canonicalWorkloads is the workload set the table header enumerates,
// regardless of which subset a run actually measured.
var canonicalWorkloads = []uint64{1, 10, 100, 1000, 10000, 100000, 1000000}

// WriteTSV emits the results as the suite's tab-separated table: a
// header row naming the canonical workloads, then one row per thread
// count holding a "lower mean upper" triple per measured workload.
func (r *Results) WriteTSV(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "NumberOfThreads\\Workload"); err != nil {
		return err
	}
	for i, wl := range canonicalWorkloads {
		sep := "\t\t"
		if i == 0 {
			sep = " "
		}
		if _, err := fmt.Fprintf(w, "%s%d", sep, wl); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for i, row := range r.Cells {
		if _, err := fmt.Fprintf(w, "%d", i+1); err != nil {
			return err
		}
		for _, c := range row {
			if _, err := fmt.Fprintf(w, "\t%g %g %g", c.Lower, c.Mean, c.Upper); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON emits the results machine-readably.
func (r *Results) WriteJSON(w io.Writer) error {
	data, err := sonnet.Marshal(r)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
