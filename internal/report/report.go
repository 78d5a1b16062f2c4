// Package report formats a completed run's execution log and metrics into
// the detail and summary text reports. No templating or reporting library
// appears anywhere in the retrieved corpus, so this package is built
// directly on text/tabwriter (see DESIGN.md).
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/metrics"
)

// WriteDetail writes one line per move-log entry, unchanged.
func WriteDetail(w io.Writer, moveLogLines []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, line := range moveLogLines {
		if _, err := fmt.Fprintln(tw, line); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteSummary writes makespan, per-priority average delivery latency,
// per-AGV charge counts, and the delivered/total count.
func WriteSummary(w io.Writer, summary metrics.Summary, totalPayloads int, deadlocked bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "makespan_minutes:\t%d\n", summary.MakespanMinutes)
	fmt.Fprintf(tw, "delivered:\t%d/%d\n", summary.DeliveredCount, totalPayloads)
	fmt.Fprintf(tw, "deadlocked:\t%t\n", deadlocked)

	priorities := make([]int, 0, len(summary.AvgDeliveryByPriority))
	for p := range summary.AvgDeliveryByPriority {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)
	for _, p := range priorities {
		fmt.Fprintf(tw, "avg_delivery_latency[priority=%d]:\t%.2f\n", p, summary.AvgDeliveryByPriority[p])
	}

	for _, id := range summary.AGVIDsByChargeCount() {
		fmt.Fprintf(tw, "charge_count[%s]:\t%d\n", id, summary.ChargeCounts[id])
	}

	return tw.Flush()
}
