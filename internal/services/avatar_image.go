package services

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"fintrack/internal/core"
)

// compressAvatar scales data so its longest side is at most
// core.AvatarMaxDimension and re-encodes it in its own format. WebP has no
// encoder available and is returned unchanged. Images declaring more than
// core.AvatarMaxPixels are refused before any pixel data is decoded.
func compressAvatar(data []byte) ([]byte, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode avatar header: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > core.AvatarMaxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", core.ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode avatar: %w", err)
	}
	if format == "webp" {
		return data, "image/webp", nil
	}

	dst := scaleToFit(src, core.AvatarMaxDimension)

	var buf bytes.Buffer
	var contentType string
	switch format {
	case "jpeg":
		contentType = "image/jpeg"
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: core.AvatarJPEGQuality})
	case "png":
		contentType = "image/png"
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, dst)
	case "gif":
		contentType = "image/gif"
		err = gif.Encode(&buf, dst, nil)
	default:
		return nil, "", fmt.Errorf("%w: %s", core.ErrUnsupportedFile, format)
	}
	if err != nil {
		return nil, "", fmt.Errorf("encode %s avatar: %w", format, err)
	}
	return buf.Bytes(), contentType, nil
}

// scaleToFit returns src resized with Catmull-Rom so neither side exceeds
// limit. Smaller images are returned as is.
func scaleToFit(src image.Image, limit int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return src
	}
	if w >= h {
		h = h * limit / w
		w = limit
	} else {
		w = w * limit / h
		h = limit
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
