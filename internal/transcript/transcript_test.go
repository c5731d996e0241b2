package transcript

import "testing"

func TestBuilderCommitsFinalSegments(t *testing.T) {
	b := NewBuilder()
	b.Add("hello everyone", true)
	b.Add("let's get started", true)

	if got := b.Text(); got != "hello everyone let's get started" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestBuilderIncludesTrailingInterim(t *testing.T) {
	b := NewBuilder()
	b.Add("first point", true)
	b.Add("and second", false)

	if got := b.Text(); got != "first point and second" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestBuilderFinalReplacesInterim(t *testing.T) {
	b := NewBuilder()
	b.Add("and sec", false)
	b.Add("and second point", true)

	if got := b.Text(); got != "and second point" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestBuilderReset(t *testing.T) {
	b := NewBuilder()
	b.Add("something", true)
	b.Reset()

	if got := b.Text(); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestAppendSegmentMergesContinuations(t *testing.T) {
	cases := []struct {
		name     string
		existing []string
		add      string
		want     string
	}{
		{"duplicate dropped", []string{"hello world"}, "hello world", "hello world"},
		{"extension replaces", []string{"hello"}, "hello world", "hello world"},
		{"shorter re-emit dropped", []string{"hello world"}, "hello", "hello world"},
		{"new segment appended", []string{"hello"}, "goodbye", "hello goodbye"},
		{"whitespace collapsed", []string{"a"}, "  b   c ", "a b c"},
		{"empty ignored", []string{"a"}, "   ", "a"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Assemble(appendSegment(append([]string(nil), tc.existing...), tc.add))
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
