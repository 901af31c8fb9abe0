// Command haulfile prints the HVUT rate sheet for a tax schedule: the
// annual and prorated tax of every weight category for a first-used month,
// by default the current one.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dukerupert/haulfile/internal/hvut"
)

func main() {
	schedule := flag.String("schedule", hvut.DefaultSchedule, "tax schedule version")
	month := flag.String("month", currentMonth(time.Now()), "first-used month")
	flag.Parse()

	if err := printRateSheet(os.Stdout, *schedule, *month); err != nil {
		log.Fatal(err)
	}
}

// currentMonth names the tax-year month t falls in.
func currentMonth(t time.Time) string {
	return hvut.MonthOf(t).String()
}

func printRateSheet(w io.Writer, schedule, month string) error {
	table, err := hvut.LookupTable(schedule)
	if err != nil {
		return err
	}
	m, ok := hvut.ParseMonth(month)
	if !ok {
		return fmt.Errorf("unknown month %q", month)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "schedule %s, first used %s (%d months)\t\t\t\t\n", table.Version(), m, m.Remaining())
	fmt.Fprintln(tw, "category\tannual\tprorated\tlogging annual\tlogging prorated\t")
	for _, c := range hvut.Categories {
		code := string(c)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			code,
			table.AnnualTax(code, false).StringFixed(2),
			table.VehicleTax(code, false, m.String(), false).StringFixed(2),
			table.AnnualTax(code, true).StringFixed(2),
			table.VehicleTax(code, false, m.String(), true).StringFixed(2),
		)
	}
	return tw.Flush()
}
