package results

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// PrintHead prints the header and up to n records as aligned columns.
func PrintHead(w io.Writer, header []string, records [][]string, n int) error {
	if n > len(records) {
		n = len(records)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\n", strings.Join(header, "\t"))
	for i := 0; i < n; i++ {
		fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(records[i], "\t"))
	}
	return tw.Flush()
}
