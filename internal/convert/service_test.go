package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/southbay/edlconv/internal/db"
	"github.com/southbay/edlconv/internal/edl"
	"github.com/southbay/edlconv/internal/history"
	"github.com/southbay/edlconv/internal/timecode"
)

const sampleEDL = `TITLE: SC090
FCM: NON-DROP FRAME

000990  A001C003 V     C        01:00:00:00 01:00:02:00 01:00:00:00 01:00:02:00
* SHOT=SC090 010
*ASC_SOP (1.0239 0.9877 1.0012)(-0.0012 0.0023 0.0000)(1.0000 0.9500 1.0500)
*ASC_SAT 0.95
*SOURCE FILE: A001C003.mov

000991  A002C010 V     C        01:00:02:00 01:00:05:12 01:00:02:00 01:00:05:12
* SHOT=SC090 020
*SOURCE FILE: A002C010.mov

000993  A003C001 V     C        01:00:05:12 01:00:06:00 01:00:05:12 01:00:06:00
* SHOT=SC090 040
*SOURCE FILE: A003C001.mov
`

var defaultSettings = Settings{SourceLabel: "Final", FrameRate: 24, FrameStart: 990, HandleSize: 10}

func setupService(t *testing.T) (*Service, history.Repository) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "history.db"), nil)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	repo := history.NewRepository(database.Conn())
	return NewService(repo, nil), repo
}

func TestConvertFile(t *testing.T) {
	svc, repo := setupService(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "Sc090_TURNOVER.edl")
	out := filepath.Join(dir, "Sc090_TURNOVER.csv")
	if err := os.WriteFile(in, []byte(sampleEDL), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	report, err := svc.ConvertFile(context.Background(), in, out, defaultSettings)
	if err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}
	if report.Shots != 3 || report.Exported != 2 {
		t.Errorf("report shots/exported = %d/%d, want 3/2", report.Shots, report.Exported)
	}
	if report.NeutralGrades != 2 || report.DefaultSaturations != 2 {
		t.Errorf("report notices = %d/%d, want 2/2", report.NeutralGrades, report.DefaultSaturations)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("output has %d lines, want 3:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[1], "SC090_010,A001C003.mov,Final,1.0239,") {
		t.Errorf("first row = %q", lines[1])
	}
	if !strings.HasSuffix(lines[1], ",0.95000,68,990,1057") {
		t.Errorf("first row = %q", lines[1])
	}

	run, err := repo.GetRun(context.Background(), report.RunID)
	if err != nil || run == nil {
		t.Fatalf("GetRun() = %v, %v", run, err)
	}
	if run.Status != history.RunStatusCompleted || run.ExportedCount != 2 || run.OutputPath != out {
		t.Errorf("run = %+v", run)
	}
}

func TestConvertFile_MalformedProducesNoOutput(t *testing.T) {
	svc, repo := setupService(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "empty.edl")
	out := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(in, []byte("TITLE: NOTHING\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	report, err := svc.ConvertFile(context.Background(), in, out, defaultSettings)
	if !errors.Is(err, edl.ErrMalformedInput) {
		t.Fatalf("ConvertFile() error = %v, want ErrMalformedInput", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("output file exists after failed run: %v", statErr)
	}

	run, _ := repo.GetRun(context.Background(), report.RunID)
	if run == nil || run.Status != history.RunStatusFailed || run.Error == "" {
		t.Errorf("run = %+v, want failed with error", run)
	}
}

func TestConvertFile_MissingInput(t *testing.T) {
	svc := NewService(nil, nil)
	dir := t.TempDir()

	_, err := svc.ConvertFile(context.Background(), filepath.Join(dir, "nope.edl"), filepath.Join(dir, "nope.csv"), defaultSettings)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("ConvertFile() error = %v, want not-exist error", err)
	}
}

func TestConvertText(t *testing.T) {
	svc := NewService(nil, nil)

	var buf bytes.Buffer
	report, err := svc.ConvertText(context.Background(), "upload.edl", sampleEDL, defaultSettings, &buf)
	if err != nil {
		t.Fatalf("ConvertText() error = %v", err)
	}
	if report.RunID != "" {
		t.Errorf("RunID = %q, want empty without history", report.RunID)
	}
	if !strings.HasPrefix(buf.String(), "Shot Code,Client Source File,Source,slopeR") {
		t.Errorf("unexpected csv: %q", buf.String())
	}
}

func TestConvertText_InvalidSettings(t *testing.T) {
	svc := NewService(nil, nil)
	text := "000001  A V C 01:00:00:00 01:00:02:00\n* SHOT=X\n*SOURCE FILE: a.mov\n"

	var buf bytes.Buffer
	_, err := svc.ConvertText(context.Background(), "bad.edl", text, Settings{FrameRate: 0}, &buf)
	if err == nil {
		t.Fatal("ConvertText() with zero frame rate should fail")
	}
	if buf.Len() != 0 {
		t.Errorf("sink received %d bytes on failure", buf.Len())
	}
}

func TestExtract_Settings(t *testing.T) {
	svc := NewService(nil, nil)

	c, err := svc.Extract(sampleEDL, Settings{SourceLabel: "Temp", FrameRate: 24})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	rec, _ := c.Get("000990")
	if rec.Source != "Temp" || rec.CutIn != 86400 || rec.CutOut != 86447 {
		t.Errorf("record = %+v", rec)
	}
}

func TestSettings_Converter(t *testing.T) {
	conv, err := Settings{FrameRate: 25, FrameStart: 1001, HandleSize: 8}.Converter()
	if err != nil {
		t.Fatalf("Converter() error = %v", err)
	}
	if !conv.Renumbered() || conv.HandleSize() != 8 {
		t.Errorf("converter = %+v", conv)
	}
	if _, err := (Settings{FrameRate: 24, StartTimecode: "bad"}).Converter(); !errors.Is(err, timecode.ErrInvalidTimecode) {
		t.Errorf("Converter() error = %v, want ErrInvalidTimecode", err)
	}
}

func TestConvertText_DuplicateEvents(t *testing.T) {
	svc := NewService(nil, nil)
	text := sampleEDL + "\n000991  A009C001 V     C        01:00:06:00 01:00:07:00 01:00:06:00 01:00:07:00\n" +
		"* SHOT=SC090 030\n*SOURCE FILE: A009C001.mov\n"

	var buf bytes.Buffer
	report, err := svc.ConvertText(context.Background(), "dup.edl", text, defaultSettings, &buf)
	if err != nil {
		t.Fatalf("ConvertText() error = %v", err)
	}
	if report.DuplicateEvents != 1 || report.Shots != 3 {
		t.Errorf("report = %+v, want 1 duplicate of 3 shots", report)
	}
	if strings.Contains(buf.String(), "SC090_020") || !strings.Contains(buf.String(), "SC090_030") {
		t.Errorf("later duplicate should replace the earlier shot:\n%s", buf.String())
	}
}

