package artifacts

import (
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

// DesignPiece is one glass piece with its cutouts to lay out on the sheet.
type DesignPiece struct {
	Label      string
	WidthInch  decimal.Decimal
	HeightInch decimal.Decimal
	Cutouts    []models.Cutout
}

// drawArea is the printable square reserved for one scaled glass piece.
const (
	drawOriginX = 30.0
	drawOriginY = 60.0
	drawMaxW    = 150.0
	drawMaxH    = 170.0
)

// DesignSheet renders each piece as a scaled rectangle with its cutouts
// drawn shape-accurate, one piece per page.
func (r *Renderer) DesignSheet(reference string, pieces []DesignPiece) ([]byte, error) {
	if len(pieces) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "design sheet needs at least one piece")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 10)

	for _, piece := range pieces {
		pdf.AddPage()
		r.header(pdf, "CUTTING DESIGN - "+reference)

		w, _ := piece.WidthInch.Float64()
		h, _ := piece.HeightInch.Float64()
		if w <= 0 || h <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "piece dimensions must be positive")
		}

		// millimetres of paper per inch of glass
		scale := math.Min(drawMaxW/w, drawMaxH/h)
		gw, gh := w*scale, h*scale

		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetY(42)
		pdf.CellFormat(0, 6, piece.Label, "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("%s x %s in (scale 1:%.1f)", piece.WidthInch, piece.HeightInch, 25.4/scale), "", 1, "C", false, 0, "")

		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.5)
		pdf.Rect(drawOriginX, drawOriginY, gw, gh, "D")

		pdf.SetLineWidth(0.3)
		pdf.SetDrawColor(180, 0, 0)
		for _, cutout := range piece.Cutouts {
			drawCutout(pdf, cutout, scale)
		}
	}

	return output(pdf)
}

func drawCutout(pdf *gofpdf.Fpdf, cutout models.Cutout, scale float64) {
	cx := drawOriginX + cutout.X*scale
	cy := drawOriginY + cutout.Y*scale

	switch cutout.Shape {
	case enums.CutoutCircle:
		pdf.Circle(cx, cy, cutout.Diameter/2*scale, "D")
	case enums.CutoutRectangle:
		pdf.Rect(cx-cutout.Width/2*scale, cy-cutout.Height/2*scale,
			cutout.Width*scale, cutout.Height*scale, "D")
	case enums.CutoutOval:
		pdf.Ellipse(cx, cy, cutout.Width/2*scale, cutout.Height/2*scale, 0, "D")
	case enums.CutoutDiamond:
		pdf.Polygon(diamondPoints(cx, cy, cutout.Width*scale, cutout.Height*scale), "D")
	case enums.CutoutStar:
		pdf.Polygon(starPoints(cx, cy, cutout.Diameter/2*scale), "D")
	case enums.CutoutHeart:
		pdf.Polygon(heartPoints(cx, cy, cutout.Diameter/2*scale), "D")
	}
}

func diamondPoints(cx, cy, w, h float64) []gofpdf.PointType {
	return []gofpdf.PointType{
		{X: cx, Y: cy - h/2},
		{X: cx + w/2, Y: cy},
		{X: cx, Y: cy + h/2},
		{X: cx - w/2, Y: cy},
	}
}

// starPoints builds a 5-point star, tip up, alternating outer and inner
// radii.
func starPoints(cx, cy, radius float64) []gofpdf.PointType {
	const points = 5
	inner := radius * 0.4
	result := make([]gofpdf.PointType, 0, points*2)
	for i := 0; i < points*2; i++ {
		r := radius
		if i%2 == 1 {
			r = inner
		}
		angle := float64(i)*math.Pi/points - math.Pi/2
		result = append(result, gofpdf.PointType{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		})
	}
	return result
}

// heartPoints traces the parametric heart curve. The curve's y grows upward
// while PDF y grows downward, so the y term is negated to keep the lobes on
// top and the tip at the bottom.
func heartPoints(cx, cy, radius float64) []gofpdf.PointType {
	const steps = 64
	// curve spans roughly [-17, 17] in both axes
	unit := radius / 17.0
	result := make([]gofpdf.PointType, 0, steps)
	for i := 0; i < steps; i++ {
		t := 2 * math.Pi * float64(i) / steps
		x := 16 * math.Pow(math.Sin(t), 3)
		y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
		result = append(result, gofpdf.PointType{
			X: cx + x*unit,
			Y: cy - y*unit,
		})
	}
	return result
}
