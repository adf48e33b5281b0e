package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/southbay/edlconv/internal/convert"
	"github.com/southbay/edlconv/internal/edl"
	"github.com/southbay/edlconv/internal/export"
	"github.com/southbay/edlconv/internal/timecode"
)

const (
	maxEDLBytes     = 8 << 20
	defaultRunLimit = 50
	maxRunLimit     = 500
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.AuthToken, cfg.Logger))

		r.Post("/convert", convertHandler(cfg))
		r.Post("/timecode/frames", framesHandler(cfg))
		r.Post("/timecode/range", rangeHandler(cfg))
		r.Get("/runs", listRunsHandler(cfg))
		r.Get("/runs/{id}", getRunHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
			History: cfg.History != nil,
		})
	}
}

func convertHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := settingsFromQuery(cfg.Defaults, r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
			return
		}
		if _, err := set.Converter(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEDLBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(w, http.StatusRequestEntityTooLarge, "request body too large", "INVALID_REQUEST")
				return
			}
			WriteError(w, http.StatusBadRequest, "failed to read request body", "INVALID_REQUEST")
			return
		}

		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload.edl"
		}
		asJSON := r.URL.Query().Get("format") == "json"

		var buf bytes.Buffer
		report, err := cfg.Service.ConvertText(r.Context(), name, string(body), set, &buf)
		if err != nil {
			writeConvertError(w, err)
			return
		}

		if asJSON {
			resp := ConvertResponse{
				Report:   report,
				Settings: set,
				Columns:  edl.Columns,
				Shots:    []ShotResponse{},
			}
			for _, rec := range report.Collection.Records() {
				resp.Shots = append(resp.Shots, ShotToResponse(rec))
			}
			WriteJSON(w, http.StatusOK, resp)
			return
		}

		stem := export.FileStem(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), 120)
		if stem == "" {
			stem = "shots"
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stem+".csv"))
		if report.RunID != "" {
			w.Header().Set("X-Run-ID", report.RunID)
		}
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

func writeConvertError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, edl.ErrMalformedInput):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "MALFORMED_INPUT")
	case errors.Is(err, timecode.ErrInvalidTimecode):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "INVALID_TIMECODE")
	default:
		WriteError(w, http.StatusInternalServerError, "conversion failed", "INTERNAL_ERROR")
	}
}

func writeRangeError(w http.ResponseWriter, err error) {
	if errors.Is(err, timecode.ErrInvalidRange) {
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "INVALID_RANGE")
		return
	}
	WriteError(w, http.StatusUnprocessableEntity, err.Error(), "INVALID_TIMECODE")
}

func settingsFromQuery(defaults convert.Settings, r *http.Request) (convert.Settings, error) {
	set := defaults
	q := r.URL.Query()

	if v := q.Get("source"); v != "" {
		set.SourceLabel = v
	}
	if v := q.Get("framerate"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return set, fmt.Errorf("invalid framerate %q", v)
		}
		set.FrameRate = rate
	}
	if v := q.Get("frame_start"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return set, fmt.Errorf("invalid frame_start %q", v)
		}
		set.FrameStart = n
	}
	if v := q.Get("handles"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return set, fmt.Errorf("invalid handles %q", v)
		}
		set.HandleSize = n
	}
	if v := q.Get("start_timecode"); v != "" {
		set.StartTimecode = v
	}
	return set, nil
}

func framesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TimecodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "INVALID_REQUEST")
			return
		}

		set := cfg.Defaults
		if req.FrameRate != nil {
			set.FrameRate = *req.FrameRate
		}
		conv, err := timecode.New(timecode.Options{FrameRate: set.FrameRate})
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
			return
		}

		switch {
		case req.Timecode != "":
			frames, err := conv.Frames(req.Timecode)
			if err != nil {
				WriteError(w, http.StatusUnprocessableEntity, err.Error(), "INVALID_TIMECODE")
				return
			}
			WriteJSON(w, http.StatusOK, TimecodeResponse{Timecode: req.Timecode, Frames: frames, FrameRate: conv.FrameRate()})
		case req.Frames != nil:
			if *req.Frames < 0 {
				WriteError(w, http.StatusBadRequest, "frames must not be negative", "INVALID_REQUEST")
				return
			}
			WriteJSON(w, http.StatusOK, TimecodeResponse{Timecode: conv.Timecode(*req.Frames), Frames: *req.Frames, FrameRate: conv.FrameRate()})
		default:
			WriteError(w, http.StatusBadRequest, "timecode or frames is required", "INVALID_REQUEST")
		}
	}
}

func rangeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "INVALID_REQUEST")
			return
		}
		if req.In == "" || req.Out == "" {
			WriteError(w, http.StatusBadRequest, "in and out are required", "INVALID_REQUEST")
			return
		}

		set := cfg.Defaults
		if req.FrameRate != nil {
			set.FrameRate = *req.FrameRate
		}
		if req.FrameStart != nil {
			set.FrameStart = *req.FrameStart
		}
		if req.HandleSize != nil {
			set.HandleSize = *req.HandleSize
		}
		if req.StartTimecode != nil {
			set.StartTimecode = *req.StartTimecode
		}
		conv, err := set.Converter()
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
			return
		}

		start, end, err := conv.FrameRange(req.In, req.Out)
		if err != nil {
			writeRangeError(w, err)
			return
		}
		tcIn, tcOut, err := conv.TimecodeRange(start, end)
		if err != nil {
			writeRangeError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, RangeResponse{
			Start:       start,
			End:         end,
			Duration:    end - start + 1,
			TimecodeIn:  tcIn,
			TimecodeOut: tcOut,
		})
	}
}

func listRunsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.History == nil {
			WriteError(w, http.StatusServiceUnavailable, "run history is disabled", "HISTORY_DISABLED")
			return
		}

		limit := defaultRunLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				WriteError(w, http.StatusBadRequest, "invalid limit", "INVALID_REQUEST")
				return
			}
			limit = min(n, maxRunLimit)
		}

		runs, err := cfg.History.ListRuns(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list runs", "INTERNAL_ERROR")
			return
		}

		resp := RunsResponse{Runs: make([]RunResponse, len(runs))}
		for i, run := range runs {
			resp.Runs[i] = RunToResponse(run)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getRunHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.History == nil {
			WriteError(w, http.StatusServiceUnavailable, "run history is disabled", "HISTORY_DISABLED")
			return
		}

		id := chi.URLParam(r, "id")
		run, err := cfg.History.GetRun(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to get run", "INTERNAL_ERROR")
			return
		}
		if run == nil {
			WriteError(w, http.StatusNotFound, "run not found", "NOT_FOUND")
			return
		}

		WriteJSON(w, http.StatusOK, RunToResponse(run))
	}
}
