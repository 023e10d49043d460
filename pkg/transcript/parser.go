package transcript

import (
	"strings"

	"transcript-ingest/pkg/domain"
	"transcript-ingest/pkg/pii"
)

// Options control parsing behavior.
type Options struct {
	// Redact replaces detected emails/phones with fixed tokens as text is
	// accumulated, before any turn is emitted.
	Redact bool
}

// Parse splits raw transcript text into an ordered sequence of turns.
//
// Lines matching a timestamp shape start a new turn; lines matching neither
// shape are continuations appended to the current turn. There is no reject
// path for unparseable lines. Blank lines become paragraph breaks inside the
// current turn. A file that opens with continuation text before any timestamp
// gets a synthetic speakerless turn at t=0.
func Parse(text string, opts Options) []*domain.Turn {
	var (
		turns []*domain.Turn
		cur   *domain.Turn
	)

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(cur.Text)
		// A turn still elided at flush never received real content; any
		// leftover ellipsis token is dropped.
		if cur.IsElided {
			cur.Text = ""
		}
		turns = append(turns, cur)
		cur = nil
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			// keep paragraph breaks inside a turn
			if cur != nil && cur.Text != "" && !strings.HasSuffix(cur.Text, "\n") {
				cur.Text += "\n"
			}
			continue
		}

		m := ClassifyLine(line)
		if m.Kind == LineContinuation {
			appendContinuation(&cur, line, opts.Redact)
			continue
		}

		flush()

		var speaker *string
		if m.Kind == LineSpeakerTimestamp {
			s := m.Speaker
			speaker = &s
		}

		// A bare or ellipsis-only timestamp line is marked elided until a
		// continuation line supplies real content.
		rest := m.Rest
		elided := rest == "" || IsEllipsis(rest)
		if opts.Redact && rest != "" {
			rest = pii.Redact(rest)
		}

		cur = &domain.Turn{
			Speaker:     speaker,
			T:           m.Seconds,
			Text:        rest,
			SectionType: domain.SectionUnknown,
			IsElided:    elided,
		}
		if rest != "" {
			if flags := pii.Detect(rest); len(flags) > 0 {
				cur.PIIFlags = flags
			}
		}
	}

	flush()
	return turns
}

func appendContinuation(cur **domain.Turn, line string, redact bool) {
	if *cur == nil {
		// File starts with non-timestamp text: treat it as narration at t=0.
		*cur = &domain.Turn{T: 0, SectionType: domain.SectionUnknown}
	}
	turn := *cur

	cont := strings.TrimSpace(line)
	if redact && cont != "" {
		cont = pii.Redact(cont)
	}

	// Separate with a space unless we are already at a paragraph break.
	if turn.Text != "" && !strings.HasSuffix(turn.Text, "\n") {
		turn.Text += " "
	}
	turn.Text += cont

	if cont != "" && !IsEllipsis(cont) {
		turn.IsElided = false
	}
	if cont != "" {
		if flags := pii.Detect(cont); len(flags) > 0 {
			turn.PIIFlags = append(turn.PIIFlags, flags...)
		}
	}
}
