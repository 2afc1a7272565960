// Package imaging normalizes proof photos: any JPEG or PNG comes out as a
// bounded-size JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

const (
	// MaxDimension bounds the longer side of a stored proof.
	MaxDimension = 1024
	// JPEGQuality is the re-encoding quality.
	JPEGQuality = 85
	// MaxUploadBytes caps the raw photo read from a client.
	MaxUploadBytes = 20 << 20
)

var (
	ErrUnsupported = errors.New("unsupported image format")
	ErrTooLarge    = errors.New("image exceeds upload limit")
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Options tunes Process. Zero fields take the package defaults.
type Options struct {
	MaxDimension int
	Quality      int
	MaxBytes     int64
}

// Image is a processed proof photo.
type Image struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Process normalizes a photo with the default options.
func Process(r io.Reader) (*Image, error) {
	return ProcessWith(r, Options{})
}

// ProcessWith sniffs the content type from the bytes themselves, then
// downscales and re-encodes as JPEG.
func ProcessWith(r io.Reader, opts Options) (*Image, error) {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = MaxDimension
	}
	if opts.Quality <= 0 {
		opts.Quality = JPEGQuality
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = MaxUploadBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if int64(len(data)) > opts.MaxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, opts.MaxBytes)
	}

	if detected := http.DetectContentType(data); !allowedMIME[detected] {
		return nil, fmt.Errorf("%w: %s (JPEG or PNG only)", ErrUnsupported, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = fit(img, opts.MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}

	b := img.Bounds()
	return &Image{Data: buf.Bytes(), MIME: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

// fit scales img down with Catmull-Rom so its longer side is at most
// maxDim, keeping the aspect ratio. Smaller images are returned as is.
func fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	nw, nh := maxDim, h*maxDim/w
	if h > w {
		nw, nh = w*maxDim/h, maxDim
	}
	nw, nh = max(nw, 1), max(nh, 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
