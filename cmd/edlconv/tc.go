package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/southbay/edlconv/internal/config"
	"github.com/southbay/edlconv/internal/timecode"
)

var tcFlags struct {
	frameRate  float64
	frameStart int
	handles    int
	startTC    string
}

var tcCmd = &cobra.Command{
	Use:   "tc",
	Short: "Timecode and frame conversions",
	Long:  "Convert between HH:MM:SS:FF timecodes and frame numbers the same way convert does.",
}

var tcFramesCmd = &cobra.Command{
	Use:   "frames <timecode>",
	Short: "Print the absolute frame number of a timecode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conv, err := tcConverter(cmd)
		if err != nil {
			return err
		}
		frames, err := conv.Frames(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), frames)
		return nil
	},
}

var tcTimecodeCmd = &cobra.Command{
	Use:   "timecode <frames>",
	Short: "Format a frame number as a timecode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		frames, err := strconv.Atoi(args[0])
		if err != nil || frames < 0 {
			return fmt.Errorf("invalid frame number %q", args[0])
		}
		conv, err := tcConverter(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), conv.Timecode(frames))
		return nil
	},
}

var tcRangeCmd = &cobra.Command{
	Use:   "range <in> <out>",
	Short: "Print the cut range of a record in/out pair",
	Long: `Print the cut range of a record in/out pair as "start end duration",
followed by the range converted back to timecodes.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		conv, err := tcConverter(cmd)
		if err != nil {
			return err
		}
		start, end, err := conv.FrameRange(args[0], args[1])
		if err != nil {
			return err
		}
		tcIn, tcOut, err := conv.TimecodeRange(start, end)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d %d %d\n", start, end, end-start+1)
		fmt.Fprintf(out, "%s %s\n", tcIn, tcOut)
		return nil
	},
}

func init() {
	pf := tcCmd.PersistentFlags()
	pf.Float64Var(&tcFlags.frameRate, "framerate", 0, "frames per second (default from EDLCONV_FRAMERATE)")
	pf.IntVar(&tcFlags.frameStart, "frame-start", 0, "renumber ranges from this frame, 0 keeps absolute frames")
	pf.IntVar(&tcFlags.handles, "handles", 0, "handle frames added to each side of a range")
	pf.StringVar(&tcFlags.startTC, "start-timecode", "", "timecode origin for range conversion")

	tcCmd.AddCommand(tcFramesCmd)
	tcCmd.AddCommand(tcTimecodeCmd)
	tcCmd.AddCommand(tcRangeCmd)
}

// tcConverter builds a converter from the environment defaults overridden by
// any flags set on cmd.
func tcConverter(cmd *cobra.Command) (*timecode.Converter, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	opts := timecode.Options{
		FrameRate:     cfg.FrameRate(),
		FrameStart:    cfg.FrameStart(),
		HandleSize:    cfg.HandleSize(),
		StartTimecode: cfg.StartTimecode(),
	}

	flags := cmd.Flags()
	if flags.Changed("framerate") {
		opts.FrameRate = tcFlags.frameRate
	}
	if flags.Changed("frame-start") {
		opts.FrameStart = tcFlags.frameStart
	}
	if flags.Changed("handles") {
		opts.HandleSize = tcFlags.handles
	}
	if flags.Changed("start-timecode") {
		opts.StartTimecode = tcFlags.startTC
	}
	return timecode.New(opts)
}
