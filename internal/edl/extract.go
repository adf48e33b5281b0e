package edl

import (
	"errors"
	"fmt"

	"github.com/southbay/edlconv/internal/timecode"
)

// Options configures an Extractor.
type Options struct {
	// SourceLabel is copied into every record's Source field.
	SourceLabel string
}

// Extractor decodes EDL text into shot records. It holds no state between
// calls to Extract.
type Extractor struct {
	opts Options
	conv *timecode.Converter
}

// NewExtractor returns an Extractor using conv for cut frame ranges.
func NewExtractor(opts Options, conv *timecode.Converter) *Extractor {
	return &Extractor{opts: opts, conv: conv}
}

// Extract decodes every shot package in text. It fails on the first event
// that cannot be decoded and when text holds no events at all.
func (x *Extractor) Extract(text string) (*Collection, error) {
	pkgs := packages(flatten(text))
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: no shot events found", ErrMalformedInput)
	}

	c := newCollection(len(pkgs))
	for _, pkg := range pkgs {
		rec, err := x.Decode(pkg)
		if err != nil {
			return nil, err
		}
		c.add(rec)
	}
	return c, nil
}

// Decode decodes a single shot package.
func (x *Extractor) Decode(pkg string) (*ShotRecord, error) {
	event, ok := eventNumber(pkg)
	if !ok {
		return nil, missing("", "event number")
	}

	code, ok := shotCode(pkg)
	if !ok {
		return nil, missing(event, "shot code")
	}

	file, ok := sourceFile(pkg)
	if !ok {
		return nil, missing(event, "client source file")
	}

	tcIn, tcOut, ok := timecodes(pkg)
	if !ok {
		return nil, missing(event, "timecode pair")
	}
	cutIn, cutOut, err := x.conv.FrameRange(tcIn, tcOut)
	if errors.Is(err, timecode.ErrInvalidRange) {
		err = fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if err != nil {
		return nil, &FieldError{Event: event, Field: "timecode pair", Err: err}
	}

	cdl, graded := grade(pkg)
	sat, hasSat := saturation(pkg)

	return &ShotRecord{
		Event:             event,
		ShotCode:          code,
		ClientSourceFile:  file,
		Source:            x.opts.SourceLabel,
		CDL:               cdl,
		Saturation:        sat,
		CutIn:             cutIn,
		CutOut:            cutOut,
		NeutralGrade:      !graded,
		DefaultSaturation: !hasSat,
	}, nil
}
