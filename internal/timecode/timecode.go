// Package timecode converts between non-drop-frame HH:MM:SS:FF timecodes and
// absolute frame numbers at a fixed frame rate.
//
// A Converter also knows how cut ranges are renumbered for downstream work:
// an optional frame origin, an optional timecode origin and a number of
// handle frames padded onto each side of a cut.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidTimecode is returned when a timecode is not four ':'-separated integers.
	ErrInvalidTimecode = errors.New("invalid timecode")

	// ErrInvalidRange is returned for a record out that does not follow its
	// record in, and for frame ranges that cannot be shown as timecodes.
	ErrInvalidRange = errors.New("invalid frame range")
)

// Options configures a Converter.
type Options struct {
	FrameRate float64
	// HandleSize is the number of padding frames applied to each side of a cut.
	HandleSize int
	// FrameStart renumbers cut ranges to begin at this frame. Zero or a
	// negative value keeps the absolute frame numbers.
	FrameStart int
	// StartTimecode, when set, is the origin of ranges produced by TimecodeRange.
	StartTimecode string
}

// Converter is immutable and safe for concurrent use.
type Converter struct {
	rate       float64
	handles    int
	frameStart int
	tcStart    string
}

// New validates opts and returns a Converter.
func New(opts Options) (*Converter, error) {
	if opts.FrameRate <= 0 || math.IsNaN(opts.FrameRate) || math.IsInf(opts.FrameRate, 0) {
		return nil, fmt.Errorf("frame rate must be positive, got %v", opts.FrameRate)
	}
	if opts.HandleSize < 0 {
		return nil, fmt.Errorf("handle size must not be negative, got %d", opts.HandleSize)
	}
	if opts.StartTimecode != "" {
		if _, err := split(opts.StartTimecode); err != nil {
			return nil, fmt.Errorf("start timecode: %w", err)
		}
	}
	return &Converter{
		rate:       opts.FrameRate,
		handles:    opts.HandleSize,
		frameStart: opts.FrameStart,
		tcStart:    opts.StartTimecode,
	}, nil
}

func (c *Converter) FrameRate() float64 { return c.rate }
func (c *Converter) HandleSize() int     { return c.handles }
func (c *Converter) FrameStart() int     { return c.frameStart }

// Renumbered reports whether FrameRange rebases cuts onto FrameStart.
func (c *Converter) Renumbered() bool { return c.frameStart > 0 }

// Frames returns the absolute frame number of tc.
//
// The frame field is not checked against the frame rate: "00:00:00:30" at
// 24 fps is 30, the same frame as "00:00:01:06".
func (c *Converter) Frames(tc string) (int, error) {
	f, err := split(tc)
	if err != nil {
		return 0, err
	}
	seconds := f[0]*3600 + f[1]*60 + f[2]
	return int(float64(seconds)*c.rate + float64(f[3])), nil
}

// Timecode formats an absolute frame number as HH:MM:SS:FF.
//
// Every field is floored, so a negative frame count borrows from the hour:
// -1 at 24 fps is "-1:59:59:23". Callers that need a displayable timecode
// reject negative frames first.
func (c *Converter) Timecode(frames int) string {
	t := float64(frames) / c.rate
	hours := int(math.Floor(t / 3600))
	minutes := int(math.Floor(floorMod(t, 3600) / 60))
	seconds := int(math.Floor(floorMod(t, 60)))
	subframes := int(math.Floor(floorMod(float64(frames), c.rate)))
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, subframes)
}

// floorMod is x mod y with the sign of y.
func floorMod(x, y float64) float64 {
	m := math.Mod(x, y)
	if m < 0 {
		m += y
	}
	return m
}

// FrameRange converts a record in/out timecode pair into an inclusive frame range.
// The out timecode is exclusive: it marks the first frame after the cut.
//
// When renumbering is enabled the range starts at FrameStart and the end is
// pushed out by both handles. Only the end moves; the start is the fixed origin.
//
// A record out at or before the record in is ErrInvalidRange, so every range
// holds at least one frame.
func (c *Converter) FrameRange(tcIn, tcOut string) (start, end int, err error) {
	in, err := c.Frames(tcIn)
	if err != nil {
		return 0, 0, err
	}
	out, err := c.Frames(tcOut)
	if err != nil {
		return 0, 0, err
	}
	if out <= in {
		return 0, 0, fmt.Errorf("%w: out %s does not follow in %s", ErrInvalidRange, tcOut, tcIn)
	}
	if c.Renumbered() {
		start = c.frameStart
		end = (out - in - 1) + start + 2*c.handles
		return start, end, nil
	}
	return in, out - 1, nil
}

// TimecodeRange is the inverse of FrameRange. Without a start timecode origin
// both ends are converted directly.
//
// It returns ErrInvalidRange for negative frames, for an end before the start
// and when the handles are wider than the span from the timecode origin.
func (c *Converter) TimecodeRange(start, end int) (string, string, error) {
	if start < 0 || end < start {
		return "", "", fmt.Errorf("%w: %d-%d", ErrInvalidRange, start, end)
	}
	if c.tcStart == "" {
		return c.Timecode(start), c.Timecode(end), nil
	}
	origin, err := c.Frames(c.tcStart)
	if err != nil {
		return "", "", err
	}
	last := origin + (end - start) - 2*c.handles
	if last < origin {
		return "", "", fmt.Errorf("%w: %d handle frames exceed the %d-%d span", ErrInvalidRange, c.handles, start, end)
	}
	return c.tcStart, c.Timecode(last + 1), nil
}

func split(tc string) ([4]int, error) {
	var f [4]int
	parts := strings.Split(strings.TrimSpace(tc), ":")
	if len(parts) != 4 {
		return f, fmt.Errorf("%w: %q", ErrInvalidTimecode, tc)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return f, fmt.Errorf("%w: %q", ErrInvalidTimecode, tc)
		}
		f[i] = n
	}
	return f, nil
}
