package transform

import (
	"bytes"
	"context"
	"image/jpeg"
	"image/png"
	"path"
	"strconv"
	"strings"

	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Images recompresses raster images and keeps the result only when it is smaller.
//
// Options:
//   - quality: JPEG quality from 1 to 100. JPEGs are copied unless it is set.
//   - webp_cmd: command template producing <name>.webp from {in} to {out}.
type Images struct {
	executor ports.Executor
}

// NewImages creates the images transform.
func NewImages(executor ports.Executor) *Images {
	return &Images{executor: executor}
}

// Apply writes every image into the output directory.
func (i *Images) Apply(ctx context.Context, req ports.TransformRequest) ([]string, error) {
	quality := 0
	if q := req.Option("quality", ""); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 100 {
			return nil, zerr.With(zerr.New("quality must be between 1 and 100"), "quality", q)
		}
		quality = n
	}
	webp := req.Option("webp_cmd", "")

	produced := make([]string, 0, len(req.Files))
	for _, file := range req.Files {
		if err := ctx.Err(); err != nil {
			return produced, err
		}
		data, err := readFile(req.Root, file)
		if err != nil {
			return produced, err
		}
		data, err = recompress(file, data, quality)
		if err != nil {
			return produced, err
		}

		out := target(req, file, "")
		if err := writeFile(req.Root, out, data); err != nil {
			return produced, err
		}
		produced = append(produced, out)

		if webp != "" {
			next := target(req, file, ".webp")
			if err := runTool(ctx, i.executor, req, webp, abs(req.Root, file), abs(req.Root, next)); err != nil {
				return produced, zerr.With(err, "file", file)
			}
			produced = append(produced, next)
		}
	}
	return produced, nil
}

// recompress re-encodes PNG with the best compression and JPEG at the given
// quality. The original bytes win unless the new encoding is smaller.
func recompress(file string, data []byte, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(path.Ext(file)) {
	case ".png":
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to decode png"), "file", file)
		}
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to encode png"), "file", file)
		}
	case ".jpg", ".jpeg":
		if quality == 0 {
			return data, nil
		}
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to decode jpeg"), "file", file)
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to encode jpeg"), "file", file)
		}
	default:
		return data, nil
	}

	if buf.Len() < len(data) {
		return buf.Bytes(), nil
	}
	return data, nil
}
