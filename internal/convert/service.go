// Package convert drives EDL to CSV conversion runs: extraction, notices,
// export and run history.
package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/southbay/edlconv/internal/edl"
	"github.com/southbay/edlconv/internal/export"
	"github.com/southbay/edlconv/internal/history"
	"github.com/southbay/edlconv/internal/logging"
	"github.com/southbay/edlconv/internal/timecode"
)

// Settings are the per-run conversion parameters.
type Settings struct {
	SourceLabel   string  `json:"source_label"`
	FrameRate     float64 `json:"frame_rate"`
	FrameStart    int     `json:"frame_start"`
	HandleSize    int     `json:"handle_size"`
	StartTimecode string  `json:"start_timecode,omitempty"`
}

// Converter builds the timecode converter described by s.
func (s Settings) Converter() (*timecode.Converter, error) {
	return timecode.New(timecode.Options{
		FrameRate:     s.FrameRate,
		HandleSize:    s.HandleSize,
		FrameStart:    s.FrameStart,
		StartTimecode: s.StartTimecode,
	})
}

// Report summarises a finished run.
type Report struct {
	RunID              string `json:"run_id,omitempty"`
	InputPath          string `json:"input_path"`
	OutputPath         string `json:"output_path,omitempty"`
	Shots              int    `json:"shots"`
	Exported           int    `json:"exported"`
	NeutralGrades      int    `json:"neutral_grades"`
	DefaultSaturations int    `json:"default_saturations"`
	DuplicateEvents    int    `json:"duplicate_events"`

	// Collection is the extracted shots, nil when extraction failed.
	Collection *edl.Collection `json:"-"`
}

type Service struct {
	repo   history.Repository
	logger *slog.Logger
}

// NewService returns a Service. repo may be nil to run without history.
func NewService(repo history.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{repo: repo, logger: logging.WithComponent(logger, "convert")}
}

// Extract decodes text with the given settings and logs the non-fatal
// notices raised for individual shots.
func (s *Service) Extract(text string, set Settings) (*edl.Collection, error) {
	conv, err := set.Converter()
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	c, err := edl.NewExtractor(edl.Options{SourceLabel: set.SourceLabel}, conv).Extract(text)
	if err != nil {
		return nil, err
	}
	for _, ev := range c.Events() {
		rec, _ := c.Get(ev)
		if rec.NeutralGrade {
			s.logger.Info("cdl not found, using neutral grade", "event", ev, "shot", rec.ShotCode)
		}
		if rec.DefaultSaturation {
			s.logger.Debug("saturation not found, using 1.0", "event", ev, "shot", rec.ShotCode)
		}
		if rec.DuplicateEvent {
			s.logger.Warn("duplicate event number, earlier shot dropped",
				"event", ev, "shot", rec.ShotCode, "dropped", rec.ReplacedShotCode)
		}
	}
	return c, nil
}

// ConvertFile converts the EDL at inputPath into a CSV at outputPath. On
// failure no output file is written.
func (s *Service) ConvertFile(ctx context.Context, inputPath, outputPath string, set Settings) (*Report, error) {
	return s.run(ctx, inputPath, set, func() (string, error) {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return "", fmt.Errorf("failed to read EDL: %w", err)
		}
		return string(data), nil
	}, func(c *edl.Collection) (string, int, error) {
		n, err := export.WriteFile(outputPath, c)
		return outputPath, n, err
	})
}

// ConvertText converts EDL text and writes the CSV to w. name identifies the
// input in run history. Nothing is written to w unless extraction succeeds.
func (s *Service) ConvertText(ctx context.Context, name, text string, set Settings, w io.Writer) (*Report, error) {
	return s.run(ctx, name, set, func() (string, error) {
		return text, nil
	}, func(c *edl.Collection) (string, int, error) {
		n, err := export.WriteCSV(w, c)
		return "", n, err
	})
}

func (s *Service) run(ctx context.Context, input string, set Settings,
	read func() (string, error), write func(*edl.Collection) (string, int, error)) (*Report, error) {
	report := &Report{InputPath: input}
	logger := s.logger

	if s.repo != nil {
		now := time.Now()
		run := &history.Run{
			ID:          history.NewID(),
			InputPath:   input,
			SourceLabel: set.SourceLabel,
			FrameRate:   set.FrameRate,
			FrameStart:  set.FrameStart,
			HandleSize:  set.HandleSize,
			Status:      history.RunStatusRunning,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.CreateRun(ctx, run); err != nil {
			logger.Warn("failed to record run", "error", err)
		} else {
			report.RunID = run.ID
			logger = logging.WithRunID(logger, run.ID)
		}
	}

	err := s.convert(report, set, read, write)
	if err != nil {
		logger.Error("conversion failed", "input", logging.SanitizePath(input), "error", err)
	} else {
		logger.Info("conversion completed",
			"input", logging.SanitizePath(input),
			"output", logging.SanitizePath(report.OutputPath),
			"shots", report.Shots,
			"exported", report.Exported,
		)
		if report.Exported < report.Shots {
			logger.Warn("event numbering gap, later shots were not exported",
				"skipped", report.Shots-report.Exported)
		}
	}

	if report.RunID != "" {
		res := history.Result{
			OutputPath:         report.OutputPath,
			ShotCount:          report.Shots,
			ExportedCount:      report.Exported,
			NeutralGrades:      report.NeutralGrades,
			DefaultSaturations: report.DefaultSaturations,
			Err:                err,
		}
		if ferr := s.repo.FinishRun(ctx, report.RunID, res); ferr != nil {
			logger.Warn("failed to finish run", "error", ferr)
		}
	}

	return report, err
}

func (s *Service) convert(report *Report, set Settings,
	read func() (string, error), write func(*edl.Collection) (string, int, error)) error {
	text, err := read()
	if err != nil {
		return err
	}

	c, err := s.Extract(text, set)
	if err != nil {
		return err
	}
	report.Collection = c
	report.Shots = c.Len()
	for _, ev := range c.Events() {
		rec, _ := c.Get(ev)
		if rec.NeutralGrade {
			report.NeutralGrades++
		}
		if rec.DefaultSaturation {
			report.DefaultSaturations++
		}
		if rec.DuplicateEvent {
			report.DuplicateEvents++
		}
	}

	out, n, err := write(c)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	report.OutputPath = out
	report.Exported = n
	return nil
}
