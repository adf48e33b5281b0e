package edl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlatten(t *testing.T) {
	got := flatten("a\r\nb\nc\rd")
	if got != "|a|b|c|d" {
		t.Errorf("flatten() = %q, want %q", got, "|a|b|c|d")
	}
}

func TestPackages(t *testing.T) {
	flat := flatten("TITLE: X\n000001 A\n* SHOT=ONE\n*SOURCE FILE: a.mov\n000002 B\n*SOURCE FILE: b.mov\n* trailing comment")
	got := packages(flat)
	want := []string{
		"|000001 A|* SHOT=ONE|*SOURCE FILE: a.mov",
		"|000002 B|*SOURCE FILE: b.mov",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("packages() mismatch (-want +got):\n%s", diff)
	}
}

func TestShotCode(t *testing.T) {
	tests := []struct {
		pkg  string
		want string
		ok   bool
	}{
		{"|000001|* SHOT=SC010 020  |x", "SC010_020", true},
		{"|000001|* SHOT=A B C\t|x", "A_B_C", true},
		{"|000001|*SOURCE FILE: a.mov * SHOT=LAST", "LAST", true},
		{"|000001|* NAME=A", "", false},
	}
	for _, tt := range tests {
		got, ok := shotCode(tt.pkg)
		if got != tt.want || ok != tt.ok {
			t.Errorf("shotCode(%q) = (%q, %v), want (%q, %v)", tt.pkg, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSourceFile(t *testing.T) {
	got, ok := sourceFile("|000001|*FROM FILE: /mnt/a b.mov|*SOURCE FILE: c.mov")
	if !ok || got != "/mnt/a" {
		t.Errorf("sourceFile() = (%q, %v), want first token after the first marker", got, ok)
	}

	got, ok = sourceFile("|000001|*SOURCE FILE: c.mov|next")
	if !ok || got != "c.mov" {
		t.Errorf("sourceFile() = (%q, %v), want c.mov", got, ok)
	}
}

func TestGrade_AllOrNothing(t *testing.T) {
	tests := []struct {
		name   string
		pkg    string
		want   CDL
		graded bool
	}{
		{
			name: "nine values",
			pkg:  "*ASC_SOP (0.9000 1.0000 1.1000)(-0.0200 0.0000 0.0200)(1.2000 1.0000 0.8000)",
			want: CDL{
				Slope:  [3]float64{0.9, 1, 1.1},
				Offset: [3]float64{-0.02, 0, 0.02},
				Power:  [3]float64{1.2, 1, 0.8},
			},
			graded: true,
		},
		{
			name: "eight values",
			pkg:  "*ASC_SOP (0.9000 1.0000 1.1000)(-0.0200 0.0000 0.0200)(1.2000 1.0000)",
			want: NeutralCDL,
		},
		{
			name: "ten values",
			pkg:  "*ASC_SOP (0.9000 1.0000 1.1000)(-0.0200 0.0000 0.0200)(1.2000 1.0000 0.8000)|*ASC_SAT 1.0000",
			want: NeutralCDL,
		},
		{
			name: "none",
			pkg:  "|000001|* SHOT=A",
			want: NeutralCDL,
		},
		{
			name: "wrong precision is ignored",
			pkg:  "*ASC_SOP (0.9 1.0 1.1)(-0.02 0.0 0.02)(1.2 1.0 0.8)",
			want: NeutralCDL,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, graded := grade(tc.pkg)
			if graded != tc.graded {
				t.Errorf("grade() graded = %v, want %v", graded, tc.graded)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("grade() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaturation(t *testing.T) {
	tests := []struct {
		name string
		pkg  string
		want float64
		ok   bool
	}{
		{name: "one token", pkg: "*ASC_SAT 0.8", want: 0.8, ok: true},
		{name: "seven characters", pkg: "*ASC_SAT 1.25000", want: 1.25, ok: true},
		{name: "missing", pkg: "* SHOT=A", want: 1},
		{name: "two tokens", pkg: "*ASC_SAT 0.8|*ASC_SAT 0.9", want: 1},
		{name: "unparsable", pkg: "*ASC_SAT ..", want: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := saturation(tc.pkg)
			if got != tc.want || ok != tc.ok {
				t.Errorf("saturation() = (%v, %v), want (%v, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestTimecodes(t *testing.T) {
	in, out, ok := timecodes("|000001  A V C 1:2:3:4 01:00:00:100 02:00:00:00")
	if !ok || in != "1:2:3:4" || out != "01:00:00:100" {
		t.Errorf("timecodes() = (%q, %q, %v)", in, out, ok)
	}
}
