package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/milk9111/temporaldash/trace"
)

func main() {
	summary := flag.Bool("summary", false, "print only the run summary")
	modifier := flag.String("modifier", "", "only print frames with this active modifier")
	eventsOnly := flag.Bool("events", false, "only print frames that carry events")
	limit := flag.Int("n", 0, "stop after printing this many frames (0 prints all)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tracedump [flags] trace.jsonl.zst")
		flag.PrintDefaults()
		os.Exit(2)
	}

	r, err := trace.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("open %s: %v", flag.Arg(0), err)
	}
	defer r.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if !*summary {
		fmt.Fprintln(tw, "tick\ttime\tentity\tmode\tmodifier\tjumps\tspeed\tpos\tevents")
	}

	totals := trace.NewSummarizer()
	printed := 0
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatalf("read %s: %v", flag.Arg(0), err)
		}
		totals.Add(f)

		if *summary || (*limit > 0 && printed >= *limit) {
			continue
		}
		if *modifier != "" && f.Modifier != *modifier {
			continue
		}
		if *eventsOnly && len(f.Events) == 0 {
			continue
		}
		fmt.Fprintf(tw, "%d\t%.3f\t%d\t%s\t%s\t%d\t%.1f\t(%.1f, %.1f, %.1f)\t%v\n",
			f.Tick, f.Time, f.Entity, f.Mode, f.Modifier, f.JumpCount, f.Speed,
			f.Position[0], f.Position[1], f.Position[2], f.Events)
		printed++
	}
	if !*summary {
		_ = tw.Flush()
		fmt.Println()
	}

	printSummary(totals.Summary())
}

func printSummary(s trace.Summary) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "frames\t%d\n", s.Frames)
	fmt.Fprintf(tw, "duration\t%.3fs\n", s.Duration)
	fmt.Fprintf(tw, "max speed\t%.1f\n", s.MaxSpeed)
	fmt.Fprintf(tw, "jumps\t%d\n", s.Jumps)
	fmt.Fprintf(tw, "landings\t%d\n", s.Landings)

	names := make([]string, 0, len(s.ModifierTime))
	for name := range s.ModifierTime {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%.3fs\t%d activations\n", name, s.ModifierTime[name], s.Activations[name])
	}
}
