package frametimeline

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// DumpOptions controls what dumpAll/dumpJank emit, populated by
// parseArgs from a dump CLI's argument list (spec §4.5).
type DumpOptions struct {
	// All, when set, emits every history frame regardless of jank.
	// This is the dumpAll shape; the default (false) is dumpJank, the
	// only other shape, so there is nothing left for a separate "Jank"
	// field to select.
	All bool
	// HTML records that "-html" was given, i.e. that the caller should
	// also render the HTML timeline chart with DumpHTML. Dump itself
	// ignores it and always writes the text dump.
	HTML bool
	// HTMLPath is not read by Dump or DumpHTML; DumpHTML writes to the
	// io.Writer it is given.
	HTMLPath string
}

// ParseArgs recognizes "-all", "-jank", and "-html" (spec §4.5); any
// other flag is ignored, with a one-line usage reminder written to
// stderr. This mirrors the permissive flag handling of a debug-only
// CLI rather than a strict flag.Parse failure mode, since the dump
// tool should never hard-fail over an unrecognized flag. "-jank" is
// accepted but sets nothing: it is already Dump's default view.
func ParseArgs(args []string, out *DumpOptions) {
	for _, a := range args {
		switch a {
		case "-all":
			out.All = true
		case "-jank":
		case "-html":
			out.HTML = true
		default:
			fmt.Fprintf(os.Stderr, "frametimelinedump: unrecognized flag %q (usage: -all | -jank | -html)\n", a)
		}
	}
}

// Dump writes the text dump for ft's current history to w, honoring
// opts. It drains any newly signaled fences first (spec §4.6: "invoked
// at every setSfPresent and every dump") so the dump reflects every
// frame whose fence has already signaled.
func Dump(ft *FrameTimeline, w io.Writer, opts DumpOptions) {
	ft.Drain()
	frames := ft.History()
	summary := summarizeHistory(frames)

	fmt.Fprintf(w, "frametimeline dump: %d frames, %d janky (%.1f%%)\n", summary.Count, summary.JankCount, summary.JankRate*100)
	if summary.Count > 0 {
		fmt.Fprintf(w, "present-delta p50=%.0fns p95=%.0fns p99=%.0fns\n", summary.P50PresentDeltaNs, summary.P95PresentDeltaNs, summary.P99PresentDeltaNs)
	}

	if len(frames) == 0 {
		return
	}
	base := frames[0].snapshot().Actuals.StartTime

	for _, f := range frames {
		if opts.All {
			dumpDisplayFrame(w, f, base)
			continue
		}
		if f.isJanky() {
			dumpDisplayFrame(w, f, base)
		}
	}
}

// dumpDisplayFrame renders one DisplayFrame and its SurfaceFrames, with
// timestamps shown relative to base (spec §4.3).
func dumpDisplayFrame(w io.Writer, f *DisplayFrame, base int64) {
	snap := f.snapshot()
	fmt.Fprintf(w, "Display token=%d wake=%s jank=%s present=%s\n",
		snap.Token, relTime(snap.Actuals.StartTime, base), snap.JankType, snap.Present)
	for _, sf := range snap.SurfaceFrames {
		fmt.Fprintf(w, "  Surface token=%d layer=%q pid=%d jank=%s present=%s state=%s\n",
			sf.Token, sf.LayerName, sf.OwnerPid, sf.JankType, sf.Present, sf.PresentState)
	}
}

// relTime renders an absolute nanosecond timestamp as a duration offset
// from base, the way a trace viewer shows frame-relative times instead
// of raw epoch nanoseconds.
func relTime(t, base int64) string {
	return time.Duration(t - base).String()
}

// DumpHTML renders a self-contained HTML timeline chart of present-time
// deviation across history, one line series per jank status, mirroring
// the teacher's debug-chart handlers (scatter/bar via go-echarts) but
// surfaced here as a dump-CLI flag instead of an HTTP endpoint.
func DumpHTML(ft *FrameTimeline, w io.Writer) error {
	ft.Drain()
	frames := ft.History()
	if len(frames) == 0 {
		return fmt.Errorf("no history to render")
	}
	base := frames[0].snapshot().Actuals.StartTime

	xAxis := make([]string, 0, len(frames))
	onTime := make([]opts.LineData, 0, len(frames))
	janky := make([]opts.LineData, 0, len(frames))
	for _, f := range frames {
		snap := f.snapshot()
		deltaMs := float64(snap.Actuals.PresentTime-snap.Predictions.PresentTime) / float64(time.Millisecond)
		xAxis = append(xAxis, relTime(snap.Actuals.StartTime, base))
		if snap.JankType.IsJanky() {
			janky = append(janky, opts.LineData{Value: deltaMs})
			onTime = append(onTime, opts.LineData{Value: nil})
		} else {
			onTime = append(onTime, opts.LineData{Value: deltaMs})
			janky = append(janky, opts.LineData{Value: nil})
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Frame Timeline", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Present-time deviation", Subtitle: fmt.Sprintf("frames=%d", len(frames))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame wake (relative)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "present delta (ms)"}),
	)
	line.SetXAxis(xAxis).
		AddSeries("on-time", onTime).
		AddSeries("janky", janky)

	return line.Render(w)
}
