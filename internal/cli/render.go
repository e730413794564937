package cli

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/ethpandaops/dtn-window-stats/internal/reports"
)

// RenderReport writes the per-observer and per-neighbor tables of report.
func RenderReport(w io.Writer, report *reports.Report) {
	observers := tablewriter.NewWriter(w)
	observers.SetHeader([]string{"observer", "windows", "rows", "buf max", "drops normal", "drops flood"})
	observers.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, o := range report.Observers {
		observers.Append([]string{
			o.Observer,
			strconv.Itoa(o.Windows),
			strconv.Itoa(o.Rows),
			strconv.FormatInt(o.PeakBuffer, 10),
			u(o.DropsNormal),
			u(o.DropsFlood),
		})
	}
	observers.Render()

	neighbors := tablewriter.NewWriter(w)
	neighbors.SetHeader([]string{
		"observer", "neighbor", "windows", "contacts", "contact time",
		"offer n", "ok n", "abort n", "rx n",
		"offer f", "ok f", "abort f", "rx f",
	})
	neighbors.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, s := range report.Neighbors {
		t := s.Totals
		neighbors.Append([]string{
			s.Observer,
			s.Neighbor,
			strconv.Itoa(s.Windows),
			u(t.Contacts),
			strconv.FormatFloat(t.ContactTime, 'f', 0, 64),
			u(t.Normal.TxOffer), u(t.Normal.TxOk), u(t.Normal.TxAbort), u(t.Normal.Rx),
			u(t.Flood.TxOffer), u(t.Flood.TxOk), u(t.Flood.TxAbort), u(t.Flood.Rx),
		})
	}
	neighbors.Render()
}

func u(v uint64) string {
	return strconv.FormatUint(v, 10)
}
