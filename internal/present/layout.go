// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package present

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// Layout composes a frame onto a monochrome screen.
type Layout interface {
	Name() string
	Draw(dst draw.Image, f Frame)
}

// Layout names accepted by LayoutByName.
const (
	LayoutCompact  = "compact"
	LayoutExpanded = "expanded"
)

// LayoutByName returns the layout registered under name.
func LayoutByName(name string) (Layout, error) {
	switch name {
	case "", LayoutCompact:
		return compactLayout{}, nil
	case LayoutExpanded:
		return expandedLayout{}, nil
	default:
		return nil, fmt.Errorf("unknown display layout %q", name)
	}
}

// compactLayout prints both angles in a medium font with room to spare.
type compactLayout struct{}

func (compactLayout) Name() string { return LayoutCompact }

func (compactLayout) Draw(dst draw.Image, f Frame) {
	blank(dst)
	face := inconsolata.Bold8x16
	drawText(dst, face, 0, 14, "R:"+f.Roll)
	drawText(dst, face, 0, 30, "P:"+f.Pitch)
	drawText(dst, basicfont.Face7x13, 0, 62, "   "+f.SecondaryText())
}

// expandedLayout trades the spare rows for double-size digits, easier to
// read at arm's length on single colour panels.
type expandedLayout struct{}

func (expandedLayout) Name() string { return LayoutExpanded }

func (expandedLayout) Draw(dst draw.Image, f Frame) {
	blank(dst)
	face := basicfont.Face7x13
	drawText(dst, face, 0, 11, "R:")
	drawScaled(dst, face, 14, 0, 2, f.Roll)
	drawText(dst, face, 0, 37, "P:")
	drawScaled(dst, face, 14, 26, 2, f.Pitch)
	drawText(dst, face, 0, 62, "   "+f.SecondaryText())
}

// DrawSplash draws the bring-up screen.
func DrawSplash(dst draw.Image, name, subtitle string) {
	blank(dst)
	face := basicfont.Face7x13
	drawText(dst, face, centerX(dst, face, name), 26, name)
	drawText(dst, face, centerX(dst, face, subtitle), 43, subtitle)
}

func blank(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
}

func centerX(dst draw.Image, face font.Face, s string) int {
	w := font.MeasureString(face, s).Ceil()
	x := (dst.Bounds().Dx() - w) / 2
	if x < 0 {
		return 0
	}
	return x
}

func drawText(dst draw.Image, face font.Face, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawScaled renders s into a scratch mask at native size and scales it
// up by an integer factor with nearest-neighbour sampling, keeping the
// bitmap font crisp. top is the upper edge of the scaled text box.
func drawScaled(dst draw.Image, face font.Face, x, top, scale int, s string) {
	m := face.Metrics()
	w := font.MeasureString(face, s).Ceil()
	h := (m.Ascent + m.Descent).Ceil()
	if w == 0 || h == 0 {
		return
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{Y: m.Ascent},
	}
	d.DrawString(s)

	r := image.Rect(x, top, x+w*scale, top+h*scale)
	xdraw.NearestNeighbor.Scale(dst, r, mask, mask.Bounds(), xdraw.Over, nil)
}
