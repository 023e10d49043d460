package transcript

import "testing"

func TestClassifyLine_SpeakerTimestamp(t *testing.T) {
	m := ClassifyLine("  Jane Doe (00:01:05): I disagree with that.  ")

	if m.Kind != LineSpeakerTimestamp {
		t.Fatalf("Kind = %v, want LineSpeakerTimestamp", m.Kind)
	}
	if m.Speaker != "Jane Doe" {
		t.Errorf("Speaker = %q, want %q", m.Speaker, "Jane Doe")
	}
	if m.Seconds != 65 {
		t.Errorf("Seconds = %d, want 65", m.Seconds)
	}
	if m.Rest != "I disagree with that." {
		t.Errorf("Rest = %q", m.Rest)
	}
}

func TestClassifyLine_TimestampOnly(t *testing.T) {
	m := ClassifyLine("(01:02:03): some narration")

	if m.Kind != LineTimestampOnly {
		t.Fatalf("Kind = %v, want LineTimestampOnly", m.Kind)
	}
	if m.Seconds != 3723 {
		t.Errorf("Seconds = %d, want 3723", m.Seconds)
	}
	if m.Rest != "some narration" {
		t.Errorf("Rest = %q", m.Rest)
	}
}

func TestClassifyLine_SingleDigitHour(t *testing.T) {
	m := ClassifyLine("Host (1:00:00): welcome back")

	if m.Kind != LineSpeakerTimestamp {
		t.Fatalf("Kind = %v, want LineSpeakerTimestamp", m.Kind)
	}
	if m.Seconds != 3600 {
		t.Errorf("Seconds = %d, want 3600", m.Seconds)
	}
}

func TestClassifyLine_EmptyRest(t *testing.T) {
	m := ClassifyLine("Jane (00:00:10):")

	if m.Kind != LineSpeakerTimestamp {
		t.Fatalf("Kind = %v, want LineSpeakerTimestamp", m.Kind)
	}
	if m.Rest != "" {
		t.Errorf("Rest = %q, want empty", m.Rest)
	}
}

// The speaker-bearing pattern must win over the speakerless one when both
// could apply, e.g. a speaker label that itself contains parentheses.
func TestClassifyLine_SpeakerWithParensTriedFirst(t *testing.T) {
	m := ClassifyLine("Jane (Host) (00:01:05): hello")

	if m.Kind != LineSpeakerTimestamp {
		t.Fatalf("Kind = %v, want LineSpeakerTimestamp", m.Kind)
	}
	if m.Speaker != "Jane (Host)" {
		t.Errorf("Speaker = %q, want %q", m.Speaker, "Jane (Host)")
	}
}

func TestClassifyLine_Continuation(t *testing.T) {
	for _, line := range []string{
		"and here's why.",
		"we raised at (roughly) a 10x multiple",
		"(00:01): malformed short timestamp",
		"(00:01:05) missing colon after paren",
	} {
		if m := ClassifyLine(line); m.Kind != LineContinuation {
			t.Errorf("ClassifyLine(%q).Kind = %v, want LineContinuation", line, m.Kind)
		}
	}
}

func TestIsEllipsis(t *testing.T) {
	if !IsEllipsis("...") || !IsEllipsis("  ...  ") {
		t.Error("ellipsis-only tokens should match")
	}
	if IsEllipsis("well...") || IsEllipsis("") {
		t.Error("non-ellipsis tokens should not match")
	}
}
