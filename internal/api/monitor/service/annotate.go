package monitorService

import (
	"DrowsyWatch/internal/entity"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	labelOriginX = 10
	labelBaseY   = 30

	frameLabelScale   = 1
	verdictLabelScale = 2
)

// annotate returns a copy of img with the status text drawn at the top left.
// Verdict labels use a larger scale and a doubled stroke.
func annotate(img image.Image, status entity.Status, scale int) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)

	label := renderLabel(status, scale > 1)
	lb := label.Bounds()

	ascent := basicfont.Face7x13.Metrics().Ascent.Ceil()
	origin := bounds.Min.Add(image.Pt(labelOriginX, labelBaseY-ascent*scale))
	target := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(lb.Dx()*scale, lb.Dy()*scale))}

	draw.NearestNeighbor.Scale(dst, target, label, lb, draw.Over, nil)
	return dst
}

func renderLabel(status entity.Status, bold bool) *image.RGBA {
	face := basicfont.Face7x13
	text := status.String()

	width := font.MeasureString(face, text).Ceil()
	if bold {
		width++
	}
	height := face.Metrics().Height.Ceil()

	label := image.NewRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  label,
		Src:  image.NewUniform(status.Color()),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	if bold {
		d.Dot = fixed.P(1, face.Metrics().Ascent.Ceil())
		d.DrawString(text)
	}

	return label
}
