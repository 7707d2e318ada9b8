package web

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/vsinha/pricelist/pkg/infrastructure/config"
)

const iconLabel = "R$"

// renderIcon draws the app icon: the label in the theme colour on a
// background tile. Maskable icons keep the label inside the 80% safe zone.
func renderIcon(size int, maskable bool, pwa config.PWAConfig) ([]byte, error) {
	background, err := parseHexColor(pwa.BackgroundColor)
	if err != nil {
		return nil, err
	}
	foreground, err := parseHexColor(pwa.ThemeColor)
	if err != nil {
		return nil, err
	}

	// Draw the label at the font's native size, then scale it up
	face := basicfont.Face7x13
	labelWidth := font.MeasureString(face, iconLabel).Ceil()
	label := image.NewRGBA(image.Rect(0, 0, labelWidth+2, face.Height+2))
	drawer := &font.Drawer{
		Dst:  label,
		Src:  image.NewUniform(foreground),
		Face: face,
		Dot:  fixed.P(1, face.Ascent+1),
	}
	drawer.DrawString(iconLabel)

	icon := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(icon, icon.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	safe := size * 8 / 10
	if !maskable {
		safe = size * 9 / 10
	}
	scale := safe / label.Bounds().Dx()
	if scale < 1 {
		scale = 1
	}
	w, h := label.Bounds().Dx()*scale, label.Bounds().Dy()*scale
	x0, y0 := (size-w)/2, (size-h)/2
	draw.NearestNeighbor.Scale(icon, image.Rect(x0, y0, x0+w, y0+h), label, label.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, icon); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}

// parseHexColor accepts #rgb and #rrggbb
func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
