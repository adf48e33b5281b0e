// Package edl extracts per-shot records from annotated EDL turnover files.
//
// Each event in the EDL carries a shot code, a source file reference, record
// timecodes and optionally an ASC CDL grade and saturation. Extract turns the
// raw text into a Collection keyed by the 6-digit event number.
package edl

import (
	"strconv"
)

// Columns is the fixed export column order.
var Columns = []string{
	"Shot Code", "Client Source File", "Source",
	"slopeR", "slopeG", "slopeB",
	"offsetR", "offsetG", "offsetB",
	"powerR", "powerG", "powerB",
	"Sat", "Cut Duration", "Cut In", "Cut Out",
}

// CDL is an ASC color decision list grade without saturation.
type CDL struct {
	Slope  [3]float64 `json:"slope"`
	Offset [3]float64 `json:"offset"`
	Power  [3]float64 `json:"power"`
}

// NeutralCDL is the identity grade.
var NeutralCDL = CDL{
	Slope:  [3]float64{1, 1, 1},
	Offset: [3]float64{0, 0, 0},
	Power:  [3]float64{1, 1, 1},
}

// Values returns slope, offset and power flattened in RGB order.
func (c CDL) Values() [9]float64 {
	var v [9]float64
	copy(v[0:3], c.Slope[:])
	copy(v[3:6], c.Offset[:])
	copy(v[6:9], c.Power[:])
	return v
}

// ShotRecord is one decoded shot.
type ShotRecord struct {
	Event            string  `json:"event"`
	ShotCode         string  `json:"shot_code"`
	ClientSourceFile string  `json:"client_source_file"`
	Source           string  `json:"source"`
	CDL              CDL     `json:"cdl"`
	Saturation       float64 `json:"saturation"`
	CutIn            int     `json:"cut_in"`
	CutOut           int     `json:"cut_out"`

	// NeutralGrade is set when the event did not carry exactly nine CDL values.
	NeutralGrade bool `json:"neutral_grade,omitempty"`
	// DefaultSaturation is set when the event did not carry exactly one SAT value.
	DefaultSaturation bool `json:"default_saturation,omitempty"`
	// ReplacedShotCode is the shot code of an earlier event with the same
	// number that this record replaced. Only the last occurrence is kept.
	ReplacedShotCode string `json:"replaced_shot_code,omitempty"`
	DuplicateEvent   bool   `json:"duplicate_event,omitempty"`
}

// CutDuration is the inclusive length of the cut in frames.
func (r *ShotRecord) CutDuration() int {
	return r.CutOut - r.CutIn + 1
}

// Row renders the record in Columns order.
func (r *ShotRecord) Row() []string {
	row := make([]string, 0, len(Columns))
	row = append(row, r.ShotCode, r.ClientSourceFile, r.Source)
	for _, v := range r.CDL.Values() {
		row = append(row, strconv.FormatFloat(v, 'f', 4, 64))
	}
	row = append(row,
		strconv.FormatFloat(r.Saturation, 'f', 5, 64),
		strconv.Itoa(r.CutDuration()),
		strconv.Itoa(r.CutIn),
		strconv.Itoa(r.CutOut),
	)
	return row
}
