package digest

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/fogleman/gg"
)

// ChartRenderer draws the per-source record counts of one run as a
// horizontal bar chart PNG.
type ChartRenderer struct {
	Width     float64
	RowHeight float64
	HeaderH   float64
	FooterH   float64
	PadLeft   float64
	PadRight  float64
	LabelW    float64
	FontSize  float64
	TitleSize float64
}

// NewChartRenderer creates a renderer with 1200px width.
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{
		Width:     1200,
		RowHeight: 48,
		HeaderH:   90,
		FooterH:   60,
		PadLeft:   40,
		PadRight:  40,
		LabelW:    220,
		FontSize:  18,
		TitleSize: 26,
	}
}

type chartRow struct {
	name  string
	count int
}

// RenderPNG writes the chart for a digest to outputPath. Sources with zero
// records still get a row so outages are visible.
func (r *ChartRenderer) RenderPNG(d *DailyDigest, outputPath string) error {
	rows := make([]chartRow, 0, len(d.BySource))
	for name, count := range d.BySource {
		rows = append(rows, chartRow{name, count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].name < rows[j].name
	})
	if len(rows) == 0 {
		return fmt.Errorf("no source counts to chart")
	}

	maxCount := rows[0].count
	if maxCount == 0 {
		maxCount = 1
	}

	height := r.HeaderH + float64(len(rows))*r.RowHeight + r.FooterH
	dc := gg.NewContext(int(r.Width), int(height))

	r.drawBackground(dc, height)
	y := r.drawTitle(dc, d)

	barArea := r.Width - r.PadLeft - r.PadRight - r.LabelW - 80
	for i, row := range rows {
		r.drawBar(dc, row, i, y, barArea, maxCount)
		y += r.RowHeight
	}

	r.drawFooter(dc, d, y)
	return dc.SavePNG(outputPath)
}

func (r *ChartRenderer) drawBackground(dc *gg.Context, height float64) {
	for y := 0; y < int(height); y++ {
		t := float64(y) / height
		dc.SetColor(color.RGBA{uint8(10 + t*5), uint8(12 + t*6), uint8(26 + t*10), 255})
		dc.DrawRectangle(0, float64(y), r.Width, 1)
		dc.Fill()
	}
}

func (r *ChartRenderer) drawTitle(dc *gg.Context, d *DailyDigest) float64 {
	dc.SetColor(hexColor("#12302a"))
	dc.DrawRoundedRectangle(r.PadLeft, 20, r.Width-r.PadLeft-r.PadRight, r.HeaderH-30, 10)
	dc.Fill()

	dc.SetColor(hexColor("#38ef7d"))
	dc.DrawRectangle(r.PadLeft, 20, 4, r.HeaderH-30)
	dc.Fill()

	r.loadFont(dc, r.TitleSize, true)
	dc.SetColor(color.White)
	dc.DrawString(fmt.Sprintf("Papers by Source · %s", d.Date), r.PadLeft+20, 20+(r.HeaderH-30)/2+9)

	return r.HeaderH
}

func (r *ChartRenderer) drawBar(dc *gg.Context, row chartRow, i int, y, barArea float64, maxCount int) {
	if i%2 == 1 {
		dc.SetColor(hexColor("#12122a"))
		dc.DrawRectangle(r.PadLeft, y, r.Width-r.PadLeft-r.PadRight, r.RowHeight)
		dc.Fill()
	}

	r.loadFont(dc, r.FontSize, false)
	dc.SetColor(hexColor("#c0c0d0"))
	dc.DrawString(row.name, r.PadLeft+12, y+r.RowHeight/2+6)

	barX := r.PadLeft + r.LabelW
	barW := barArea * float64(row.count) / float64(maxCount)
	barH := r.RowHeight - 20

	if row.count == 0 {
		dc.SetColor(hexColor("#404050"))
		dc.DrawString("0", barX, y+r.RowHeight/2+6)
		return
	}

	dc.SetColor(hexColor("#11998e"))
	dc.DrawRoundedRectangle(barX, y+10, barW, barH, 4)
	dc.Fill()

	dc.SetColor(hexColor("#e0e0e0"))
	dc.DrawString(fmt.Sprintf("%d", row.count), barX+barW+10, y+r.RowHeight/2+6)
}

func (r *ChartRenderer) drawFooter(dc *gg.Context, d *DailyDigest, y float64) {
	r.loadFont(dc, 14, false)
	dc.SetColor(hexColor("#444460"))
	footer := fmt.Sprintf("PaperBot · %d records after dedup · %d sources", d.TotalFetched, len(d.BySource))
	dc.DrawStringAnchored(footer, r.Width/2, y+r.FooterH/2, 0.5, 0.5)
}

func (r *ChartRenderer) loadFont(dc *gg.Context, size float64, bold bool) {
	// gg falls back to its built-in face when no system font is found
	if err := dc.LoadFontFace("/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf", size); err != nil {
		_ = dc.LoadFontFace("/System/Library/Fonts/Helvetica.ttc", size)
	}
}

func hexColor(hex string) color.Color {
	hex = strings.TrimPrefix(hex, "#")
	var cr, cg, cb uint8
	fmt.Sscanf(hex, "%02x%02x%02x", &cr, &cg, &cb)
	return color.RGBA{cr, cg, cb, 255}
}
