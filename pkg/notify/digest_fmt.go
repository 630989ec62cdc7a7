// Package notify — digest_fmt.go renders the daily paper digest as a rich
// HTML email plus a markdown fallback body.
package notify

import (
	"fmt"
	"html"
	"strings"
)

// PaperDigestData holds the content of one daily digest email.
type PaperDigestData struct {
	Title    string // e.g. "Daily Papers"
	Date     string // YYYY-MM-DD
	Overview string // optional run summary line
	Papers   []PaperItem
	// Run stats for the footer
	TotalFetched int
	TokensUsed   int
	Cost         float64
}

// PaperItem is one ranked paper in the digest.
type PaperItem struct {
	Title    string
	Summary  string // LLM summary or truncated abstract
	Reason   string // why it matched the reader profile
	URL      string
	Venue    string
	Source   string
	DOI      string
	Score    float64
	HasScore bool
}

// PaperEmailFormatter produces the HTML digest email.
type PaperEmailFormatter struct{}

func NewPaperEmailFormatter() *PaperEmailFormatter { return &PaperEmailFormatter{} }

func (f *PaperEmailFormatter) Format(data PaperDigestData) Message {
	var sb strings.Builder

	sb.WriteString(EmailWrapperOpen())
	sb.WriteString(EmailHeader(
		"📚 "+data.Title,
		data.Date,
		"#11998e", "#38ef7d",
	))

	if data.Overview != "" {
		sb.WriteString(fmt.Sprintf(`
<!-- Overview -->
<tr><td style="background-color:#1a1a2e;padding:28px 40px;border-bottom:1px solid rgba(255,255,255,0.06);">
  <table role="presentation" width="100%%" cellpadding="0" cellspacing="0">
    <tr>
      <td style="width:4px;background:linear-gradient(180deg,#11998e,#38ef7d);border-radius:2px;"></td>
      <td style="padding-left:16px;">%s</td>
    </tr>
  </table>
</td></tr>
`, MarkdownToHTML(data.Overview)))
	}

	for i, p := range data.Papers {
		badge := ""
		if p.HasScore {
			badge = ScoreBadgeHTML(p.Score)
		}
		meta := p.Venue
		if meta != "" && p.Source != "" {
			meta += " · "
		}
		meta += p.Source

		linkHTML := ""
		if p.URL != "" {
			linkHTML = fmt.Sprintf(`<a href="%s" style="color:#38ef7d;font-size:12px;text-decoration:none;font-weight:500;">Read paper</a>`,
				html.EscapeString(p.URL))
		}
		reasonHTML := ""
		if p.Reason != "" {
			reasonHTML = fmt.Sprintf(`
          <tr><td style="padding-top:8px;">
            <p style="margin:0;font-size:12px;line-height:1.5;color:#7a8aa0;font-style:italic;">%s</p>
          </td></tr>`, html.EscapeString(p.Reason))
		}

		sb.WriteString(fmt.Sprintf(`
<!-- Paper %d -->
<tr><td style="background-color:%s;padding:24px 40px;border-bottom:1px solid rgba(255,255,255,0.04);">
  <table role="presentation" width="100%%" cellpadding="0" cellspacing="0">
    <tr>
      <td style="vertical-align:top;width:36px;padding-top:2px;">
        <span style="display:inline-block;width:28px;height:28px;line-height:28px;text-align:center;background:rgba(56,239,125,0.12);border-radius:8px;font-size:13px;font-weight:700;color:#38ef7d;">%d</span>
      </td>
      <td style="padding-left:12px;">
        <table role="presentation" width="100%%" cellpadding="0" cellspacing="0">
          <tr><td>
            %s
            <span style="font-size:16px;font-weight:700;color:#f0f0f0;line-height:1.4;">%s</span>
          </td></tr>
          <tr><td style="padding-top:8px;">
            <p style="margin:0;font-size:14px;line-height:1.6;color:#a0a0b8;">%s</p>
          </td></tr>%s
          <tr><td style="padding-top:10px;">
            <table role="presentation" cellpadding="0" cellspacing="0"><tr>
              <td style="padding-right:12px;">%s</td>
              <td><span style="font-size:11px;color:#606080;">%s</span></td>
            </tr></table>
          </td></tr>
        </table>
      </td>
    </tr>
  </table>
</td></tr>
`, i+1, EmailRowBgColor(i), i+1,
			badge,
			html.EscapeString(p.Title),
			html.EscapeString(p.Summary),
			reasonHTML,
			linkHTML, html.EscapeString(meta)))
	}

	stats := fmt.Sprintf("%d papers picked from %d fetched", len(data.Papers), data.TotalFetched)
	if data.TokensUsed > 0 {
		stats += fmt.Sprintf(" · %d tokens · $%.4f", data.TokensUsed, data.Cost)
	}
	sb.WriteString(EmailFooter("PaperBot", stats, "#38ef7d"))
	sb.WriteString(EmailWrapperClose())

	return Message{
		Title:    fmt.Sprintf("📚 %s — %s", data.Title, data.Date),
		Body:     f.formatPlainText(data),
		HTMLBody: sb.String(),
		Format:   "html",
	}
}

func (f *PaperEmailFormatter) formatPlainText(data PaperDigestData) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# 📚 %s — %s\n\n", data.Title, data.Date))
	if data.Overview != "" {
		sb.WriteString(data.Overview + "\n\n---\n\n")
	}
	for i, p := range data.Papers {
		sb.WriteString(fmt.Sprintf("**%d. %s**\n", i+1, p.Title))
		if p.HasScore {
			sb.WriteString(fmt.Sprintf("   score: %.2f\n", p.Score))
		}
		if p.Summary != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", p.Summary))
		}
		if p.Reason != "" {
			sb.WriteString(fmt.Sprintf("   _%s_\n", p.Reason))
		}
		if p.URL != "" {
			sb.WriteString(fmt.Sprintf("   🔗 %s", p.URL))
			if p.Venue != "" {
				sb.WriteString(" | " + p.Venue)
			}
			sb.WriteString(" | via " + p.Source + "\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("---\n*%d papers picked from %d fetched*\n", len(data.Papers), data.TotalFetched))
	return sb.String()
}
