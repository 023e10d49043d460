package transcript

import (
	"regexp"
	"strconv"
	"strings"
)

// Raw transcript lines come in three shapes:
//
//	Speaker (HH:MM:SS): text
//	(HH:MM:SS): text
//	anything else (a continuation of the current turn)
//
// The speaker-bearing pattern is tried first: it is the stricter of the two,
// and a speaker name containing parentheses or colons could otherwise be
// swallowed by the speakerless pattern.
var (
	speakerTimestampPattern = regexp.MustCompile(`^\s*(.+?)\s*\((\d{1,2}):(\d{2}):(\d{2})\)\s*:\s*(.*?)\s*$`)
	timestampOnlyPattern    = regexp.MustCompile(`^\s*\((\d{1,2}):(\d{2}):(\d{2})\)\s*:\s*(.*?)\s*$`)

	ellipsisPattern = regexp.MustCompile(`^\s*\.\.\.\s*$`)
)

// LineKind identifies which of the three line shapes matched.
type LineKind int

const (
	LineContinuation LineKind = iota
	LineSpeakerTimestamp
	LineTimestampOnly
)

// LineMatch is the outcome of classifying one raw line. Speaker is set only
// for LineSpeakerTimestamp; Seconds and Rest only when Kind is not
// LineContinuation.
type LineMatch struct {
	Kind    LineKind
	Speaker string
	Seconds int
	Rest    string
}

// ClassifyLine matches one raw line against the timestamp shapes.
// Leading/trailing whitespace is ignored; anything that matches neither
// pattern is a continuation.
func ClassifyLine(line string) LineMatch {
	if m := speakerTimestampPattern.FindStringSubmatch(line); m != nil {
		return LineMatch{
			Kind:    LineSpeakerTimestamp,
			Speaker: strings.TrimSpace(m[1]),
			Seconds: toSeconds(m[2], m[3], m[4]),
			Rest:    strings.TrimSpace(m[5]),
		}
	}
	if m := timestampOnlyPattern.FindStringSubmatch(line); m != nil {
		return LineMatch{
			Kind:    LineTimestampOnly,
			Seconds: toSeconds(m[1], m[2], m[3]),
			Rest:    strings.TrimSpace(m[4]),
		}
	}
	return LineMatch{Kind: LineContinuation}
}

// IsEllipsis reports whether s is an ellipsis-only token ("...").
func IsEllipsis(s string) bool {
	return ellipsisPattern.MatchString(s)
}

func toSeconds(h, m, s string) int {
	hh, _ := strconv.Atoi(h)
	mm, _ := strconv.Atoi(m)
	ss, _ := strconv.Atoi(s)
	return hh*3600 + mm*60 + ss
}
