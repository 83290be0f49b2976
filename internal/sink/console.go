package sink

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/results"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

// Console prints a per-suite summary table and the changed tests.
type Console struct {
	out     io.Writer
	details bool
}

// NewConsole creates a console sink writing to out.
func NewConsole(out io.Writer, details bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out, details: details}
}

// Name returns the sink name.
func (c *Console) Name() string { return "console" }

// LoadPrevious returns an empty previous run.
func (c *Console) LoadPrevious(context.Context) (regression.PreviousRun, error) {
	return regression.PreviousRun{}, nil
}

// Store prints the run.
func (c *Console) Store(_ context.Context, pub Publication) error {
	fmt.Fprintf(c.out, "\n%s\n", pub.Description)
	fmt.Fprint(c.out, SummaryTable(pub.Results))
	if c.details {
		fmt.Fprint(c.out, ChangesText(pub.Results))
	}
	return nil
}

// Close does nothing.
func (c *Console) Close() error { return nil }

// columnTitle turns an outcome phrase into a column header,
// e.g. "unexpected failures" into "Unexpected Failures".
var columnTitle = cases.Title(language.English)

// SummaryTable renders the outcome counts of every suite, suites in lexical
// key order, with a totals footer.
func SummaryTable(agg *results.Aggregate) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault

	header := table.Row{"Suite"}
	configs := []table.ColumnConfig{{Name: "Suite"}}
	for _, o := range testparser.Outcomes {
		title := columnTitle.String(o.String())
		header = append(header, title)
		configs = append(configs, table.ColumnConfig{Name: title, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	header = append(header, "Broken", "Fixed")
	configs = append(configs,
		table.ColumnConfig{Name: "Broken", Align: text.AlignRight, AlignFooter: text.AlignRight},
		table.ColumnConfig{Name: "Fixed", Align: text.AlignRight, AlignFooter: text.AlignRight})

	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	var broken, fixed int
	for _, key := range agg.SortedKeys() {
		e, _ := agg.Get(key)
		row := table.Row{key}
		for _, o := range testparser.Outcomes {
			row = append(row, e.Suite.Counts.Get(o))
		}
		row = append(row, len(e.Diff.NewlyBroken), len(e.Diff.NewlyFixed))
		t.AppendRow(row)
		broken += len(e.Diff.NewlyBroken)
		fixed += len(e.Diff.NewlyFixed)
	}

	totals := agg.Totals()
	footer := table.Row{"Total"}
	for _, o := range testparser.Outcomes {
		footer = append(footer, totals.Get(o))
	}
	footer = append(footer, broken, fixed)
	t.AppendFooter(footer)

	return t.Render() + "\n"
}

// ChangesText lists newly broken and newly fixed tests per suite. Suites
// without changes are omitted.
func ChangesText(agg *results.Aggregate) string {
	var out string
	for _, key := range agg.SortedKeys() {
		e, _ := agg.Get(key)
		if e.Diff.Empty() {
			continue
		}
		out += fmt.Sprintf("\n%s:\n", key)
		for _, name := range e.Diff.NewlyBroken {
			out += "  - " + name + "\n"
		}
		for _, name := range e.Diff.NewlyFixed {
			out += "  + " + name + "\n"
		}
	}
	return out
}
