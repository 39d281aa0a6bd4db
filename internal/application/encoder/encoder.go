package encoder

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"math"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
)

const (
	DefaultMaxWidth = 1200
	DefaultQuality  = 70

	// 4.5 MB hard ceiling for documents, same bound for an encoded image data URI
	DefaultMaxDocumentBytes = 4_500_000
	DefaultMaxImageURILen   = 4_500_000

	// refuse to decode anything above this many pixels
	maxPixels  = 100_000_000
	minQuality = 30
)

// Encoder turns uploads into size-bounded data URIs. Images are downscaled
// and recompressed, documents pass through unchanged under a hard ceiling.
type Encoder struct {
	MaxWidth         int
	Quality          int
	MaxDocumentBytes int
	MaxImageURILen   int
}

func New() *Encoder {
	return &Encoder{
		MaxWidth:         DefaultMaxWidth,
		Quality:          DefaultQuality,
		MaxDocumentBytes: DefaultMaxDocumentBytes,
		MaxImageURILen:   DefaultMaxImageURILen,
	}
}

// Encode implements analysis.Encoder.
func (e *Encoder) Encode(name string, data []byte, category analysis.FileCategory) (analysis.EncodedFile, error) {
	if len(data) == 0 {
		return analysis.EncodedFile{}, fmt.Errorf("%w: %s is empty", analysis.ErrEncodingFailed, name)
	}
	switch category {
	case analysis.FileImage:
		return e.encodeImage(name, data)
	case analysis.FileDocument:
		return e.encodeDocument(name, data)
	default:
		return analysis.EncodedFile{}, fmt.Errorf("%w: unsupported file category %q", analysis.ErrEncodingFailed, category)
	}
}

func (e *Encoder) encodeImage(name string, data []byte) (analysis.EncodedFile, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return analysis.EncodedFile{}, fmt.Errorf("%w: %s: %v", analysis.ErrEncodingFailed, name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return analysis.EncodedFile{}, fmt.Errorf("%w: %s: unsupported dimensions %dx%d",
			analysis.ErrEncodingFailed, name, cfg.Width, cfg.Height)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return analysis.EncodedFile{}, fmt.Errorf("%w: %s: %v", analysis.ErrEncodingFailed, name, err)
	}

	dst := Downscale(src, e.maxWidth())

	// turunin kualitas bertahap kalau hasilnya masih kebesaran
	for q := e.quality(); q >= minQuality; q -= 20 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: q}); err != nil {
			return analysis.EncodedFile{}, fmt.Errorf("%w: %s: %v", analysis.ErrEncodingFailed, name, err)
		}
		uri := dataURI("image/jpeg", buf.Bytes())
		if e.MaxImageURILen <= 0 || len(uri) <= e.MaxImageURILen {
			return analysis.EncodedFile{
				Name:     jpegName(name),
				MimeType: "image/jpeg",
				DataURI:  uri,
				Size:     len(data),
			}, nil
		}
	}
	return analysis.EncodedFile{}, fmt.Errorf("%w: %s does not fit in %d bytes after recompression",
		analysis.ErrPayloadTooLarge, name, e.MaxImageURILen)
}

func (e *Encoder) encodeDocument(name string, data []byte) (analysis.EncodedFile, error) {
	limit := e.MaxDocumentBytes
	if limit <= 0 {
		limit = DefaultMaxDocumentBytes
	}
	if len(data) > limit {
		return analysis.EncodedFile{}, fmt.Errorf("%w: %s is %d bytes, limit %d",
			analysis.ErrPayloadTooLarge, name, len(data), limit)
	}
	mt := documentMimeType(name, data)
	return analysis.EncodedFile{
		Name:     name,
		MimeType: mt,
		DataURI:  dataURI(mt, data),
		Size:     len(data),
	}, nil
}

// Downscale returns an RGBA copy of src no wider than maxWidth, preserving the
// aspect ratio. Transparent areas are flattened onto white since JPEG has no alpha.
func Downscale(src image.Image, maxWidth int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth > 0 && w > maxWidth {
		h = int(math.Round(float64(h) * float64(maxWidth) / float64(w)))
		if h < 1 {
			h = 1
		}
		w = maxWidth
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func (e *Encoder) maxWidth() int {
	if e.MaxWidth <= 0 {
		return DefaultMaxWidth
	}
	return e.MaxWidth
}

func (e *Encoder) quality() int {
	if e.Quality <= 0 || e.Quality > 100 {
		return DefaultQuality
	}
	return e.Quality
}

func dataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func jpegName(name string) string {
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, ".jpg") || strings.EqualFold(ext, ".jpeg") {
		return name
	}
	return strings.TrimSuffix(name, ext) + ".jpg"
}

var documentTypes = map[string]string{
	".pdf":  "application/pdf",
	".csv":  "text/csv",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ods":  "application/vnd.oasis.opendocument.spreadsheet",
}

func documentMimeType(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := documentTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return http.DetectContentType(data)
}
