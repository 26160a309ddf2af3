package preprocess

import (
	"strings"
	"testing"
)

func TestCleanBasic(t *testing.T) {
	in := "The ﬁrst   quarter\x00 budget\n\n\n\nwas approved."
	got := CleanBasic(in)
	if strings.Contains(got, "ﬁ") {
		t.Fatalf("ligature not fixed: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Fatalf("spaces not collapsed: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Fatalf("newlines not collapsed: %q", got)
	}
	if strings.Contains(got, "\x00") {
		t.Fatalf("control char survived: %q", got)
	}
}

func TestHTMLToText(t *testing.T) {
	html := `<html><body>
		<h1>Budget Report</h1>
		<p>Q1 spending summary.</p>
		<ul><li>Engineering: 50,000</li></ul>
		<table><tr><th>Team</th><th>Amount</th></tr><tr><td>Eng</td><td>50,000</td></tr></table>
	</body></html>`
	got, err := HTMLToText(html)
	if err != nil {
		t.Fatalf("HTMLToText: %v", err)
	}
	for _, want := range []string{"# Budget Report", "Q1 spending summary.", "- Engineering: 50,000", "| Eng | 50,000 |"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in output:\n%s", want, got)
		}
	}
}

func TestRemoveDuplicateParagraphs(t *testing.T) {
	in := "alpha\n\nbeta\n\nalpha\n\ngamma"
	got := RemoveDuplicateParagraphs(in)
	if got != "alpha\n\nbeta\n\ngamma" {
		t.Fatalf("unexpected result: %q", got)
	}
}
