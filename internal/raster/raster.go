// Package raster converts generated SVG markup to PNG without an external
// process. The markup backend is the only caller.
package raster

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Kind classifies a conversion failure.
type Kind string

const (
	// KindMalformedInput means the markup was not a well-formed SVG
	// document. The generated markup is at fault.
	KindMalformedInput Kind = "malformed_input"

	// KindBackendFailure means parsing or rasterization itself failed on
	// well-formed input.
	KindBackendFailure Kind = "backend_failure"
)

// ConversionError is any failure to turn markup into a raster.
type ConversionError struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("svg conversion failed (%s): %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("svg conversion failed (%s): %s", e.Kind, e.Detail)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Options tune the output raster.
type Options struct {
	// MinWidth/MinHeight are pixel floors; smaller documents are scaled up
	// preserving aspect ratio. Defaults: 800x600.
	MinWidth  int
	MinHeight int
}

// Convert rasterizes an SVG document to PNG bytes. Failures are always
// *ConversionError.
func Convert(markup string, opts Options) ([]byte, error) {
	if opts.MinWidth <= 0 {
		opts.MinWidth = 800
	}
	if opts.MinHeight <= 0 {
		opts.MinHeight = 600
	}

	if err := checkWellFormed(markup); err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(markup))
	if err != nil {
		return nil, &ConversionError{Kind: KindBackendFailure, Detail: "svg parse", Err: err}
	}

	w := int(icon.ViewBox.W)
	h := int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		return nil, &ConversionError{Kind: KindMalformedInput, Detail: "document has no usable dimensions"}
	}
	w, h = scaleToFloor(w, h, opts.MinWidth, opts.MinHeight)

	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)

	// oksvg panics on some degenerate path data; keep that inside the
	// conversion boundary.
	if err := drawIcon(icon, raster); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &ConversionError{Kind: KindBackendFailure, Detail: "png encode", Err: err}
	}
	return buf.Bytes(), nil
}

func drawIcon(icon *oksvg.SvgIcon, raster *rasterx.Dasher) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ConversionError{
				Kind:   KindBackendFailure,
				Detail: fmt.Sprintf("rasterizer panic: %v", r),
			}
		}
	}()
	icon.Draw(raster, 1.0)
	return nil
}

// checkWellFormed validates XML structure and the svg root element before
// handing the document to the rasterizer.
func checkWellFormed(markup string) error {
	dec := xml.NewDecoder(strings.NewReader(markup))
	sawRoot := false
	for {
		tok, err := dec.Token()
		if err != nil {
			if sawRoot && errors.Is(err, io.EOF) {
				return nil
			}
			return &ConversionError{Kind: KindMalformedInput, Detail: "not well-formed XML", Err: err}
		}
		if start, ok := tok.(xml.StartElement); ok && !sawRoot {
			if start.Name.Local != "svg" {
				return &ConversionError{
					Kind:   KindMalformedInput,
					Detail: fmt.Sprintf("root element is <%s>, not <svg>", start.Name.Local),
				}
			}
			sawRoot = true
		}
	}
}

// scaleToFloor scales (w, h) up, preserving aspect ratio, until both floors
// are met.
func scaleToFloor(w, h, minW, minH int) (int, int) {
	scale := 1.0
	if float64(w) < float64(minW) {
		scale = float64(minW) / float64(w)
	}
	if s := float64(minH) / float64(h); s > scale {
		scale = s
	}
	if scale > 1.0 {
		w = int(float64(w)*scale + 0.5)
		h = int(float64(h)*scale + 0.5)
	}
	return w, h
}
