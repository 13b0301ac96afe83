package analyze

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// tableFunc converts a result into header and rows
type tableFunc[T any] func(v T) (header []string, rows [][]string)

// printOutcome writes the outcome in the selected format. Error outcomes
// are returned as error, empty outcomes print their reason.
func printOutcome[T any](w io.Writer, format string, o model.Outcome[T], table tableFunc[T]) error {
	if o.IsError() {
		return o.Err
	}
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(o)
	}
	if o.IsEmpty() {
		_, err := fmt.Fprintf(w, "no result: %s\n", o.Reason)
		return err
	}
	header, rows := table(o.Value)
	renderTable(w, header, rows)
	return nil
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	t.AppendBulk(rows)
	t.Render()
}

func sec(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
