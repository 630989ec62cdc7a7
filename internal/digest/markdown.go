package digest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RenderMarkdown converts a DailyDigest into a markdown report.
func RenderMarkdown(d *DailyDigest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# 📚 Daily Papers — %s\n\n", d.Date)

	if d.Overview != "" {
		fmt.Fprintf(&sb, "📝 **Overview**\n%s\n\n", d.Overview)
	}

	sb.WriteString("---\n\n")

	for i, p := range d.Papers {
		fmt.Fprintf(&sb, "**%d. %s**\n", i+1, p.Title)
		if p.HasScore {
			fmt.Fprintf(&sb, "   score: %.2f\n", p.Score)
		}
		if p.Summary != "" {
			fmt.Fprintf(&sb, "   %s\n", p.Summary)
		}
		if p.Reason != "" {
			fmt.Fprintf(&sb, "   _%s_\n", p.Reason)
		}
		meta := []string{}
		if p.URL != "" {
			meta = append(meta, fmt.Sprintf("🔗 [paper](%s)", p.URL))
		}
		if p.Venue != "" {
			meta = append(meta, p.Venue)
		}
		meta = append(meta, "via "+p.Record.Source)
		if p.DOI != "" {
			meta = append(meta, "doi:"+p.DOI)
		}
		fmt.Fprintf(&sb, "   %s\n\n", strings.Join(meta, " | "))
	}

	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "*%d papers picked from %d fetched", len(d.Papers), d.TotalFetched)
	if d.TokensUsed > 0 {
		fmt.Fprintf(&sb, " | Tokens: %d | Cost: $%.4f", d.TokensUsed, d.Cost)
	}
	sb.WriteString("*\n")

	return sb.String()
}

// WriteMarkdown renders the digest and writes it to
// <outputDir>/daily_<date>.md, creating the directory if needed. It returns
// the file path.
func WriteMarkdown(d *DailyDigest, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outputDir, fmt.Sprintf("daily_%s.md", d.Date))
	if err := os.WriteFile(path, []byte(RenderMarkdown(d)), 0o644); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	return path, nil
}
