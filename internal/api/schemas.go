package api

import (
	"time"

	"github.com/southbay/edlconv/internal/convert"
	"github.com/southbay/edlconv/internal/edl"
	"github.com/southbay/edlconv/internal/history"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
	History bool   `json:"history"`
}

type ShotResponse struct {
	Event            string     `json:"event"`
	ShotCode         string     `json:"shot_code"`
	ClientSourceFile string     `json:"client_source_file"`
	Source           string     `json:"source"`
	CDL              [9]float64 `json:"cdl"`
	Saturation       float64    `json:"saturation"`
	CutDuration      int        `json:"cut_duration"`
	CutIn            int        `json:"cut_in"`
	CutOut           int        `json:"cut_out"`
	NeutralGrade     bool       `json:"neutral_grade,omitempty"`
}

type ConvertResponse struct {
	Report   *convert.Report  `json:"report"`
	Settings convert.Settings `json:"settings"`
	Columns  []string         `json:"columns"`
	Shots    []ShotResponse   `json:"shots"`
}

type TimecodeRequest struct {
	Timecode  string   `json:"timecode,omitempty"`
	Frames    *int     `json:"frames,omitempty"`
	FrameRate *float64 `json:"frame_rate,omitempty"`
}

type TimecodeResponse struct {
	Timecode  string  `json:"timecode"`
	Frames    int     `json:"frames"`
	FrameRate float64 `json:"frame_rate"`
}

type RangeRequest struct {
	In            string   `json:"in"`
	Out           string   `json:"out"`
	FrameRate     *float64 `json:"frame_rate,omitempty"`
	FrameStart    *int     `json:"frame_start,omitempty"`
	HandleSize    *int     `json:"handle_size,omitempty"`
	StartTimecode *string  `json:"start_timecode,omitempty"`
}

type RangeResponse struct {
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Duration   int    `json:"duration"`
	TimecodeIn string `json:"timecode_in"`
	// TimecodeOut is exclusive when a start timecode is configured.
	TimecodeOut string `json:"timecode_out"`
}

type RunResponse struct {
	ID                 string  `json:"id"`
	InputPath          string  `json:"input_path"`
	OutputPath         string  `json:"output_path,omitempty"`
	SourceLabel        string  `json:"source_label"`
	FrameRate          float64 `json:"frame_rate"`
	FrameStart         int     `json:"frame_start"`
	HandleSize         int     `json:"handle_size"`
	ShotCount          int     `json:"shot_count"`
	ExportedCount      int     `json:"exported_count"`
	NeutralGrades      int     `json:"neutral_grades"`
	DefaultSaturations int     `json:"default_saturations"`
	Status             string  `json:"status"`
	Error              string  `json:"error,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

type RunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ShotToResponse(r *edl.ShotRecord) ShotResponse {
	return ShotResponse{
		Event:            r.Event,
		ShotCode:         r.ShotCode,
		ClientSourceFile: r.ClientSourceFile,
		Source:           r.Source,
		CDL:              r.CDL.Values(),
		Saturation:       r.Saturation,
		CutDuration:      r.CutDuration(),
		CutIn:            r.CutIn,
		CutOut:           r.CutOut,
		NeutralGrade:     r.NeutralGrade,
	}
}

func RunToResponse(r *history.Run) RunResponse {
	return RunResponse{
		ID:                 r.ID,
		InputPath:          r.InputPath,
		OutputPath:         r.OutputPath,
		SourceLabel:        r.SourceLabel,
		FrameRate:          r.FrameRate,
		FrameStart:         r.FrameStart,
		HandleSize:         r.HandleSize,
		ShotCount:          r.ShotCount,
		ExportedCount:      r.ExportedCount,
		NeutralGrades:      r.NeutralGrades,
		DefaultSaturations: r.DefaultSaturations,
		Status:             r.Status,
		Error:              r.Error,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          r.UpdatedAt.Format(time.RFC3339),
	}
}
