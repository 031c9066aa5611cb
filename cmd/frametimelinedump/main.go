// Command frametimelinedump drives a FrameTimeline from a scripted
// input file and dumps its history, the debug-dump counterpart to the
// compositor's own adb shell dumpsys SurfaceFlinger integration.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/frametimeline/internal/frametimeline"
)

var (
	configPath = flag.String("config", "", "path to a tuning config JSON file (optional)")
	inputPath  = flag.String("input", "", "path to a newline-delimited JSON event script (required)")
	htmlOut    = flag.String("html-out", "", "if set, also render an HTML timeline chart to this path")
)

// scriptEvent is one line of the newline-delimited JSON event script:
// exactly one of its fields is populated, naming which FrameTimeline
// method to call and with what arguments.
type scriptEvent struct {
	GenerateToken *struct {
		StartTime, EndTime, PresentTime int64
	} `json:"generateToken,omitempty"`
	SetSfWakeUp *struct {
		Token               int64
		HasToken            bool
		WakeTime, VsyncPeriod int64
	} `json:"setSfWakeUp,omitempty"`
	SetSfPresent *struct {
		EndTime int64
	} `json:"setSfPresent,omitempty"`
	Reset *struct{} `json:"reset,omitempty"`
}

func main() {
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: frametimelinedump -input script.ndjson [-config tuning.json] [-all] [-jank] [-html] [-html-out out.html]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	var opts frametimeline.DumpOptions
	frametimeline.ParseArgs(flag.Args(), &opts)

	if *inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := frametimeline.DefaultConfig()
	if *configPath != "" {
		loaded, err := frametimeline.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("frametimelinedump: %v", err)
		}
		cfg = *loaded
	}

	ft := frametimeline.NewFrameTimeline(cfg, nil, nil)
	if err := replay(ft, *inputPath); err != nil {
		log.Fatalf("frametimelinedump: %v", err)
	}

	frametimeline.Dump(ft, os.Stdout, opts)

	if opts.HTML || *htmlOut != "" {
		path := *htmlOut
		if path == "" {
			path = "frametimeline.html"
		}
		f, err := os.Create(path)
		if err != nil {
			log.Fatalf("frametimelinedump: %v", err)
		}
		defer f.Close()
		if err := frametimeline.DumpHTML(ft, f); err != nil {
			log.Fatalf("frametimelinedump: %v", err)
		}
		fmt.Fprintf(os.Stdout, "wrote chart to %s\n", path)
	}
}

// replay feeds a newline-delimited JSON event script into ft in order.
func replay(ft *frametimeline.FrameTimeline, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		var ev scriptEvent
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		applyEvent(ft, ev)
	}
	return scanner.Err()
}

func applyEvent(ft *frametimeline.FrameTimeline, ev scriptEvent) {
	switch {
	case ev.GenerateToken != nil:
		g := ev.GenerateToken
		ft.GenerateTokenForPredictions(frametimeline.TimelineItem{
			StartTime: g.StartTime, EndTime: g.EndTime, PresentTime: g.PresentTime,
		})
	case ev.SetSfWakeUp != nil:
		s := ev.SetSfWakeUp
		ft.SetSfWakeUp(s.Token, s.HasToken, s.WakeTime, s.VsyncPeriod)
	case ev.SetSfPresent != nil:
		s := ev.SetSfPresent
		ft.SetSfPresent(s.EndTime, frametimeline.NullFence(s.EndTime))
	case ev.Reset != nil:
		ft.Reset()
	}
}
