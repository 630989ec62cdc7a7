package notify

import (
	"strings"
	"testing"
)

func TestPaperEmailFormatter(t *testing.T) {
	msg := NewPaperEmailFormatter().Format(PaperDigestData{
		Title: "Daily Papers",
		Date:  "2025-03-07",
		Papers: []PaperItem{
			{
				Title:    "Graphs & Things <script>",
				Summary:  "A summary.",
				Reason:   "You like graphs.",
				URL:      "https://example.org/p1",
				Venue:    "NeurIPS",
				Source:   "OpenAlex",
				Score:    0.91,
				HasScore: true,
			},
		},
		TotalFetched: 120,
	})

	if !strings.Contains(msg.Title, "2025-03-07") {
		t.Errorf("title = %q", msg.Title)
	}
	if !strings.Contains(msg.HTMLBody, "Graphs &amp; Things &lt;script&gt;") {
		t.Error("paper title not escaped in HTML body")
	}
	if !strings.Contains(msg.HTMLBody, "0.91") {
		t.Error("score badge missing")
	}
	if !strings.Contains(msg.HTMLBody, "1 papers picked from 120 fetched") {
		t.Error("footer stats missing")
	}
	if !strings.Contains(msg.Body, "Graphs & Things") {
		t.Error("plain body missing paper")
	}
	if msg.Format != "html" {
		t.Errorf("format = %q", msg.Format)
	}
}

func TestMarkdownToHTML(t *testing.T) {
	out := MarkdownToHTML("# Head\n- item **bold**\n\nplain")
	if !strings.Contains(out, "<strong") {
		t.Error("bold not converted")
	}
	if !strings.Contains(out, "•") {
		t.Error("bullet not converted")
	}
}

func TestStripMarkdown(t *testing.T) {
	if got := StripMarkdown("## Title with **bold** and *em*"); got != "Title with bold and em" {
		t.Errorf("StripMarkdown = %q", got)
	}
}
