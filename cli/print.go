package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
)

// printf prints a message with a newline at the end.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 9, 64)
}

// printVector prints values on one line separated by spaces.
func printVector(w io.Writer, label string, values []float64) {
	printf(w, "%s: %s", label, strings.Join(lo.Map(values, func(v float64, _ int) string {
		return formatNumber(v)
	}), " "))
}

// printMatrix renders m as a table, one row per matrix row.
func printMatrix(w io.Writer, m mat.Matrix) {
	rows, cols := m.Dims()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	for i := 0; i < rows; i++ {
		t.AppendRow(lo.Map(lo.Range(cols), func(j, _ int) interface{} {
			return formatNumber(m.At(i, j))
		}))
	}
	t.Render()
}

// parseNumbers reads every argument as one or more numbers separated by commas or whitespace.
func parseNumbers(args []string) ([]float64, error) {
	var values []float64
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		}) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid number %q", field)
			}
			values = append(values, v)
		}
	}
	return values, nil
}
