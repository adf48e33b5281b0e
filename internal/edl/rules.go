package edl

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Separator replaces line breaks so multi-line events become contiguous text.
const Separator = "|"

var (
	packageRegex = regexp.MustCompile(`\|\d{6}.*?\*SO\S[^|]+`)
	eventRegex   = regexp.MustCompile(`\|(\d{6})`)
	shotRegex    = regexp.MustCompile(`SHOT=(.*?)\|`)
	fileRegex    = regexp.MustCompile(`FILE: ([^\s|]+)`)
	cdlRegex     = regexp.MustCompile(`-?\d{1,2}\.\d{4}`)
	satRegex     = regexp.MustCompile(`SAT ([.0-9]{1,7})`)
	tcRegex      = regexp.MustCompile(`\d{1,2}:\d{1,2}:\d{1,2}:\d{1,3}`)
)

// flatten joins all lines of text with Separator. A leading separator lets an
// event on the first line start a package.
func flatten(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return Separator + strings.ReplaceAll(text, "\n", Separator)
}

// packages splits flattened text into shot packages in file order.
func packages(flat string) []string {
	return packageRegex.FindAllString(flat, -1)
}

func eventNumber(pkg string) (string, bool) {
	m := eventRegex.FindStringSubmatch(pkg)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func shotCode(pkg string) (string, bool) {
	// The package never ends with a separator, so the last line has no
	// terminator for the lazy match to stop on.
	m := shotRegex.FindStringSubmatch(pkg + Separator)
	if m == nil {
		return "", false
	}
	code := strings.TrimRightFunc(m[1], unicode.IsSpace)
	return strings.ReplaceAll(code, " ", "_"), true
}

func sourceFile(pkg string) (string, bool) {
	m := fileRegex.FindStringSubmatch(pkg)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// grade returns the CDL carried by pkg, or the neutral grade unless exactly
// nine values are present.
func grade(pkg string) (CDL, bool) {
	tokens := cdlRegex.FindAllString(pkg, -1)
	if len(tokens) != 9 {
		return NeutralCDL, false
	}
	var v [9]float64
	for i, tok := range tokens {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return NeutralCDL, false
		}
		v[i] = f
	}
	return CDL{
		Slope:  [3]float64{v[0], v[1], v[2]},
		Offset: [3]float64{v[3], v[4], v[5]},
		Power:  [3]float64{v[6], v[7], v[8]},
	}, true
}

// saturation returns the SAT value, or 1 unless exactly one is present.
func saturation(pkg string) (float64, bool) {
	m := satRegex.FindAllStringSubmatch(pkg, -1)
	if len(m) != 1 {
		return 1, false
	}
	f, err := strconv.ParseFloat(m[0][1], 64)
	if err != nil {
		return 1, false
	}
	return f, true
}

// timecodes returns the first two timecodes in pkg.
func timecodes(pkg string) (string, string, bool) {
	tcs := tcRegex.FindAllString(pkg, 2)
	if len(tcs) < 2 {
		return "", "", false
	}
	return tcs[0], tcs[1], true
}
