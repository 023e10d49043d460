package ingest

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"How Figma Wins (with Dylan Field)": "how-figma-wins-with-dylan-field",
		"  spaced   out  ":                  "spaced-out",
		"Already-Slugged":                   "already-slugged",
		"100% Growth!!":                     "100-growth",
		"---":                               "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlugify_LengthCapped(t *testing.T) {
	long := strings.Repeat("abc ", 100)
	got := Slugify(long)
	if len(got) > 120 {
		t.Errorf("len(Slugify) = %d, want <= 120", len(got))
	}
}

func TestSlugify_Stable(t *testing.T) {
	in := "Episode_42: The One About Pricing"
	if Slugify(in) != Slugify(in) {
		t.Error("Slugify must be deterministic")
	}
}

func TestInferTitle(t *testing.T) {
	cases := map[string]string{
		"/data/in/How_Figma_Wins.txt": "How Figma Wins",
		"plain.txt":                   "plain",
		"no_ext":                      "no ext",
	}
	for in, want := range cases {
		if got := InferTitle(in); got != want {
			t.Errorf("InferTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAssignEpisodeIDs_CollisionsGetNumericSuffix(t *testing.T) {
	ids := assignEpisodeIDs([]string{"Same Title", "same title", "Same_Title", "Other"})

	want := []string{"same-title", "same-title-2", "same-title-3", "other"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}
