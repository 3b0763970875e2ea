// Package imaging crops and resizes uploaded profile pictures.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
)

var (
	// ErrUnsupportedImage is returned for payloads that are not a decodable JPEG or PNG.
	ErrUnsupportedImage = errors.New("unsupported image")

	// ErrImageTooLarge is returned when a decoded payload exceeds the configured limit.
	ErrImageTooLarge = errors.New("image too large")
)

// Format is a supported image encoding.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

var (
	magicHeaders = map[Format][]byte{
		FormatJPEG: []byte("\xFF\xD8\xFF"),
		FormatPNG:  []byte("\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"),
	}

	decoders = map[Format]func(io.Reader) (image.Image, error){
		FormatJPEG: jpeg.Decode,
		FormatPNG:  png.Decode,
	}
)

// DetectFormat identifies the image format from its magic bytes.
func DetectFormat(data []byte) (Format, error) {
	for f, magic := range magicHeaders {
		if bytes.HasPrefix(data, magic) {
			return f, nil
		}
	}
	return "", ErrUnsupportedImage
}

// DecodeDataURL decodes a base64 payload, with or without a "data:<mime>;base64," prefix.
// maxBytes limits the decoded size; 0 disables the limit.
func DecodeDataURL(s string, maxBytes int) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 || !strings.HasSuffix(s[:i], ";base64") {
			return nil, fmt.Errorf("%w: malformed data URL", ErrUnsupportedImage)
		}
		s = s[i+1:]
	}
	if maxBytes > 0 && base64.StdEncoding.DecodedLen(len(s)) > maxBytes+2 {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64", ErrUnsupportedImage)
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return nil, ErrImageTooLarge
	}
	return data, nil
}

// Avatar holds the original upload and its square JPEG variants.
type Avatar struct {
	Format   Format
	Original []byte
	Small    []byte
	Large    []byte
}

// Processor produces square avatars of two sizes.
type Processor struct {
	smallSize int
	largeSize int
	quality   int
}

// NewProcessor creates a Processor. Non-positive sizes default to 128 and 512 pixels.
func NewProcessor(smallSize, largeSize int) *Processor {
	if smallSize <= 0 {
		smallSize = 128
	}
	if largeSize <= 0 {
		largeSize = 512
	}
	return &Processor{smallSize: smallSize, largeSize: largeSize, quality: 85}
}

// Process decodes data, crops the centre square and encodes both variants as JPEG.
func (p *Processor) Process(data []byte) (*Avatar, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}
	src, err := decoders[format](bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUnsupportedImage, format, err)
	}

	square := centerSquare(src.Bounds())

	small, err := p.render(src, square, p.smallSize)
	if err != nil {
		return nil, fmt.Errorf("encode small: %w", err)
	}
	large, err := p.render(src, square, p.largeSize)
	if err != nil {
		return nil, fmt.Errorf("encode large: %w", err)
	}

	return &Avatar{
		Format:   format,
		Original: data,
		Small:    small,
		Large:    large,
	}, nil
}

// centerSquare returns the largest square centred in b.
func centerSquare(b image.Rectangle) image.Rectangle {
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}

// render scales the src region into a size x size JPEG. Transparent pixels become white.
func (p *Processor) render(src image.Image, region image.Rectangle, size int) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, region, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
