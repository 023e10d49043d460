package transcript

import (
	"testing"

	"transcript-ingest/pkg/domain"
)

func TestParse_BlankLineBecomesParagraphBreak(t *testing.T) {
	input := "Jane Doe (00:01:05): I disagree with that.\n\nand here's why.\n"

	turns := Parse(input, Options{})

	if len(turns) != 1 {
		t.Fatalf("Parse returned %d turns, want 1", len(turns))
	}
	tr := turns[0]
	if tr.Speaker == nil || *tr.Speaker != "Jane Doe" {
		t.Errorf("Speaker = %v, want Jane Doe", tr.Speaker)
	}
	if tr.T != 65 {
		t.Errorf("T = %d, want 65", tr.T)
	}
	if want := "I disagree with that.\nand here's why."; tr.Text != want {
		t.Errorf("Text = %q, want %q", tr.Text, want)
	}
}

func TestParse_ContinuationJoinedWithSpace(t *testing.T) {
	input := "Host (00:00:01): first part\nsecond part\n"

	turns := Parse(input, Options{})

	if len(turns) != 1 {
		t.Fatalf("Parse returned %d turns, want 1", len(turns))
	}
	if want := "first part second part"; turns[0].Text != want {
		t.Errorf("Text = %q, want %q", turns[0].Text, want)
	}
}

func TestParse_LeadingNarrationGetsSyntheticTurn(t *testing.T) {
	input := "Welcome to the show.\nHost (00:00:30): let's begin\n"

	turns := Parse(input, Options{})

	if len(turns) != 2 {
		t.Fatalf("Parse returned %d turns, want 2", len(turns))
	}
	if turns[0].Speaker != nil {
		t.Errorf("synthetic turn speaker = %v, want nil", turns[0].Speaker)
	}
	if turns[0].T != 0 {
		t.Errorf("synthetic turn t = %d, want 0", turns[0].T)
	}
	if turns[0].Text != "Welcome to the show." {
		t.Errorf("synthetic turn text = %q", turns[0].Text)
	}
}

func TestParse_EllipsisOnlyTurnIsElided(t *testing.T) {
	turns := Parse("(00:00:10): ...\n", Options{})

	if len(turns) != 1 {
		t.Fatalf("Parse returned %d turns, want 1", len(turns))
	}
	tr := turns[0]
	if !tr.IsElided {
		t.Error("IsElided = false, want true")
	}
	if tr.Text != "" {
		t.Errorf("Text = %q, want empty (ellipsis token dropped on flush)", tr.Text)
	}
	if tr.Speaker != nil {
		t.Errorf("Speaker = %v, want nil", tr.Speaker)
	}
	if tr.T != 10 {
		t.Errorf("T = %d, want 10", tr.T)
	}
}

func TestParse_BareTimestampRecordsElisionUntilContentArrives(t *testing.T) {
	input := "Jane (00:00:10):\nactual content came later\n"

	turns := Parse(input, Options{})

	if len(turns) != 1 {
		t.Fatalf("Parse returned %d turns, want 1", len(turns))
	}
	if turns[0].IsElided {
		t.Error("IsElided = true after real content arrived, want false")
	}
	if turns[0].Text != "actual content came later" {
		t.Errorf("Text = %q", turns[0].Text)
	}
}

func TestParse_BareTimestampWithNoContentStaysElided(t *testing.T) {
	turns := Parse("Jane (00:00:10):\n", Options{})

	if len(turns) != 1 {
		t.Fatalf("Parse returned %d turns, want 1 (elided turns are still flushed)", len(turns))
	}
	if !turns[0].IsElided {
		t.Error("IsElided = false, want true")
	}
	if turns[0].Text != "" {
		t.Errorf("Text = %q, want empty", turns[0].Text)
	}
}

// Turn count equals the number of timestamp-matching lines, plus at most one
// synthetic leading turn when the file opens with a continuation line.
func TestParse_TurnCountMatchesTimestampLines(t *testing.T) {
	input := "A (00:00:01): one\nB (00:00:02): two\ncontinues here\n(00:00:03): three\nC (00:00:04): four\n"

	turns := Parse(input, Options{})

	if len(turns) != 4 {
		t.Fatalf("Parse returned %d turns, want 4", len(turns))
	}
	for i, want := range []int{1, 2, 3, 4} {
		if turns[i].T != want {
			t.Errorf("turn %d: T = %d, want %d", i, turns[i].T, want)
		}
	}
}

func TestParse_PIIFlagsAttached(t *testing.T) {
	input := "Jane (00:00:01): email me at jane@example.com\nor call +1 (415) 555-0132 ok\n"

	turns := Parse(input, Options{})

	if len(turns) != 1 {
		t.Fatalf("Parse returned %d turns, want 1", len(turns))
	}
	flags := turns[0].PIIFlags
	if len(flags) != 2 {
		t.Fatalf("PIIFlags = %v, want email + phone", flags)
	}
	if flags[0].Type != "email" || flags[1].Type != "phone" {
		t.Errorf("flag types = %q, %q", flags[0].Type, flags[1].Type)
	}
}

func TestParse_RedactionAppliesBeforeEmission(t *testing.T) {
	input := "Jane (00:00:01): email me at jane@example.com please\n"

	turns := Parse(input, Options{Redact: true})

	if len(turns) != 1 {
		t.Fatalf("Parse returned %d turns, want 1", len(turns))
	}
	if want := "email me at [REDACTED_EMAIL] please"; turns[0].Text != want {
		t.Errorf("Text = %q, want %q", turns[0].Text, want)
	}
	// Detection runs over the redacted text, so nothing is flagged.
	if turns[0].PIIFlags != nil {
		t.Errorf("PIIFlags = %v, want nil under redaction", turns[0].PIIFlags)
	}
}

func TestParse_EmptyInputYieldsNoTurns(t *testing.T) {
	if turns := Parse("", Options{}); len(turns) != 0 {
		t.Fatalf("Parse returned %d turns, want 0", len(turns))
	}
	if turns := Parse("\n\n  \n", Options{}); len(turns) != 0 {
		t.Fatalf("Parse of blank lines returned %d turns, want 0", len(turns))
	}
}

func TestParse_SectionTypeStartsUnknown(t *testing.T) {
	turns := Parse("Jane (00:00:01): hello\n", Options{})
	if turns[0].SectionType != domain.SectionUnknown {
		t.Errorf("SectionType = %q, want %q", turns[0].SectionType, domain.SectionUnknown)
	}
}
