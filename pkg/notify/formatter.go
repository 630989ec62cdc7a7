// Package notify — formatter.go holds the shared HTML email skeleton and
// markdown helpers; digest_fmt.go builds the daily digest message on top of
// them.
package notify

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// ---- Shared HTML email skeleton ----

// EmailWrapperOpen renders the opening HTML for an email body.
func EmailWrapperOpen() string {
	return `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="margin:0;padding:0;background-color:#0f0f23;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,'Helvetica Neue',Arial,sans-serif;">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="background-color:#0f0f23;">
<tr><td align="center" style="padding:20px 10px;">
<table role="presentation" width="640" cellpadding="0" cellspacing="0" style="max-width:640px;width:100%;">
`
}

// EmailWrapperClose renders the closing HTML for an email body.
func EmailWrapperClose() string {
	return `
</table>
</td></tr>
</table>
</body>
</html>`
}

// EmailHeader renders the gradient header section.
func EmailHeader(title, subtitle, gradientFrom, gradientTo string) string {
	return fmt.Sprintf(`
<!-- Header -->
<tr><td style="background:linear-gradient(135deg,%s 0%%,%s 100%%);border-radius:16px 16px 0 0;padding:32px 40px;text-align:center;">
  <h1 style="margin:0;font-size:28px;font-weight:800;color:#ffffff;letter-spacing:-0.5px;">%s</h1>
  <p style="margin:8px 0 0;font-size:15px;color:rgba(255,255,255,0.85);font-weight:500;">%s</p>
</td></tr>
`, gradientFrom, gradientTo, html.EscapeString(title), html.EscapeString(subtitle))
}

// EmailFooter renders the footer section.
func EmailFooter(productName, tagline, accentColor string) string {
	return fmt.Sprintf(`
<!-- Footer -->
<tr><td style="background-color:#12121f;border-radius:0 0 16px 16px;padding:24px 40px;text-align:center;">
  <p style="margin:0;font-size:12px;color:#505070;line-height:1.6;">
    <strong style="color:%s;">%s</strong> — %s
  </p>
</td></tr>
`, accentColor, html.EscapeString(productName), html.EscapeString(tagline))
}

// EmailRowBgColor returns alternating row colors.
func EmailRowBgColor(index int) string {
	if index%2 == 1 {
		return "#16162a"
	}
	return "#1a1a2e"
}

// ---- Markdown helpers ----

// MarkdownToHTML converts simple markdown to inline HTML for email bodies.
// Handles **bold**, *italic*, # headings and - lists.
func MarkdownToHTML(md string) string {
	if md == "" {
		return ""
	}

	var sb strings.Builder
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		line = ConvertMarkdownInline(line)

		if strings.HasPrefix(line, "### ") {
			line = fmt.Sprintf(`<strong style="color:#e0e0e0;font-size:13px;">%s</strong>`, line[4:])
		} else if strings.HasPrefix(line, "## ") {
			line = fmt.Sprintf(`<strong style="color:#e0e0e0;font-size:14px;">%s</strong>`, line[3:])
		} else if strings.HasPrefix(line, "# ") {
			line = fmt.Sprintf(`<strong style="color:#f0f0f0;font-size:15px;">%s</strong>`, line[2:])
		}

		if strings.HasPrefix(line, "- ") {
			line = fmt.Sprintf(`<span style="color:#808090;">•</span> %s`, line[2:])
		}

		sb.WriteString(fmt.Sprintf(`<p style="margin:4px 0;font-size:14px;line-height:1.6;color:#a0a0b8;">%s</p>`, line))
	}
	return sb.String()
}

// ConvertMarkdownInline converts **bold** and *italic* to HTML.
func ConvertMarkdownInline(s string) string {
	s = regexp.MustCompile(`\*\*([^*]+)\*\*`).ReplaceAllString(s, `<strong style="color:#e0e0e0;">$1</strong>`)
	s = regexp.MustCompile(`\*([^*]+)\*`).ReplaceAllString(s, `<em>$1</em>`)
	return s
}

// StripMarkdown removes markdown formatting for plain text output.
func StripMarkdown(s string) string {
	s = regexp.MustCompile(`\*\*([^*]+)\*\*`).ReplaceAllString(s, "$1")
	s = regexp.MustCompile(`\*([^*]+)\*`).ReplaceAllString(s, "$1")
	s = regexp.MustCompile(`(?m)^#{1,4}\s+`).ReplaceAllString(s, "")
	return s
}

// ---- Badge helpers ----

// ScoreBadgeHTML renders a relevance score as a colored pill. Scores are
// cosine similarities in [0,1]; the thresholds are cosmetic.
func ScoreBadgeHTML(score float64) string {
	color := "#607d8b"
	switch {
	case score >= 0.8:
		color = "#4caf50"
	case score >= 0.6:
		color = "#8bc34a"
	case score >= 0.4:
		color = "#ff9800"
	}
	return fmt.Sprintf(`<span style="display:inline-block;background:%s;color:#fff;padding:2px 8px;border-radius:4px;font-size:11px;font-weight:600;margin-right:8px;vertical-align:middle;">%.2f</span>`,
		color, score)
}

// TagsHTML renders a list of tags as styled pills.
func TagsHTML(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	var parts []string
	for _, tag := range tags {
		parts = append(parts,
			fmt.Sprintf(`<span style="display:inline-block;background:rgba(102,126,234,0.15);color:#8b9cf7;font-size:11px;padding:2px 8px;border-radius:10px;margin:2px 4px 2px 0;">%s</span>`,
				html.EscapeString(tag)))
	}
	return strings.Join(parts, "")
}
