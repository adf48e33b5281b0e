package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/southbay/edlconv/internal/export"
)

var convertFlags struct {
	out        string
	outDir     string
	frameRate  float64
	frameStart int
	handles    int
	source     string
	startTC    string
}

var convertCmd = &cobra.Command{
	Use:   "convert <file.edl>",
	Short: "Convert an EDL into a shot CSV",
	Long: `Convert an EDL into a shot CSV.
The CSV is written next to the EDL with the same base name unless --out or
--out-dir is given. Nothing is written when the EDL cannot be decoded.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertFlags.out, "out", "o", "", "output CSV path")
	f.StringVar(&convertFlags.outDir, "out-dir", "", "directory for the output CSV")
	f.Float64Var(&convertFlags.frameRate, "framerate", 0, "frames per second (default from EDLCONV_FRAMERATE)")
	f.IntVar(&convertFlags.frameStart, "frame-start", 0, "renumber cuts from this frame, 0 keeps absolute frames")
	f.IntVar(&convertFlags.handles, "handles", 0, "handle frames added to each side of a cut")
	f.StringVar(&convertFlags.source, "source", "", "value of the Source column")
	f.StringVar(&convertFlags.startTC, "start-timecode", "", "timecode origin for range conversion")
	convertCmd.MarkFlagsMutuallyExclusive("out", "out-dir")
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("failed to read EDL: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", input)
	}

	if convertFlags.outDir != "" {
		if err := export.ValidateOutputDir(convertFlags.outDir); err != nil {
			return err
		}
	}
	output := convertFlags.out
	if output == "" {
		output = export.OutputPath(input, convertFlags.outDir)
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	set := a.settings()
	flags := cmd.Flags()
	if flags.Changed("framerate") {
		set.FrameRate = convertFlags.frameRate
	}
	if flags.Changed("frame-start") {
		set.FrameStart = convertFlags.frameStart
	}
	if flags.Changed("handles") {
		set.HandleSize = convertFlags.handles
	}
	if flags.Changed("source") {
		set.SourceLabel = convertFlags.source
	}
	if flags.Changed("start-timecode") {
		set.StartTimecode = convertFlags.startTC
	}

	report, err := a.service().ConvertFile(context.Background(), input, output, set)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s) -> %s\n", input, humanize.Bytes(uint64(info.Size())), report.OutputPath)
	fmt.Fprintf(out, "  %s of %s shots exported\n", humanize.Comma(int64(report.Exported)), humanize.Comma(int64(report.Shots)))
	if report.NeutralGrades > 0 {
		fmt.Fprintf(out, "  %d without a CDL, neutral grade used\n", report.NeutralGrades)
	}
	if report.DefaultSaturations > 0 {
		fmt.Fprintf(out, "  %d without saturation, 1.0 used\n", report.DefaultSaturations)
	}
	if report.DuplicateEvents > 0 {
		fmt.Fprintf(out, "  %d duplicate event numbers, earlier shots dropped\n", report.DuplicateEvents)
	}
	if skipped := report.Shots - report.Exported; skipped > 0 {
		fmt.Fprintf(out, "  %d after an event numbering gap were skipped\n", skipped)
	}
	if report.RunID != "" {
		fmt.Fprintf(out, "  run %s\n", report.RunID)
	}
	return nil
}
