package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
)

// MaxImageBytes is the ceiling on a fetched plant image (5 MB).
const MaxImageBytes = 5 << 20

// CheckupImageDim is the bounding square used for checkup analysis images.
const CheckupImageDim = 384

var (
	// ErrImageProcessing covers any download, size, or decode failure.
	ErrImageProcessing = errors.New("image processing failed")
	// ErrImageTooLarge marks a declared or measured size over MaxImageBytes.
	ErrImageTooLarge = errors.New("image exceeds size limit")
)

// NormalizedImage is a fetched plant photo re-encoded for the vision call.
type NormalizedImage struct {
	Data   []byte
	Base64 string
	Width  int
	Height int
}

var imageClient = &http.Client{Timeout: 30 * time.Second}

// FetchPlantImage downloads an image, enforces the size ceiling, and
// re-encodes it as a JPEG fitting within maxDim x maxDim (never upscaled).
// All failures wrap ErrImageProcessing so the caller can treat them
// uniformly; oversize inputs additionally wrap ErrImageTooLarge.
func FetchPlantImage(ctx context.Context, url string, maxDim int) (*NormalizedImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageProcessing, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (macOS) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36")

	resp, err := imageClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageProcessing, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: bad status: %s", ErrImageProcessing, resp.Status)
	}
	if resp.ContentLength > MaxImageBytes {
		return nil, fmt.Errorf("%w: %w: declared %d bytes", ErrImageProcessing, ErrImageTooLarge, resp.ContentLength)
	}

	// Read one byte past the ceiling so an undeclared oversize body is
	// caught without buffering the whole thing.
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageProcessing, err)
	}
	if len(body) > MaxImageBytes {
		return nil, fmt.Errorf("%w: %w", ErrImageProcessing, ErrImageTooLarge)
	}

	img, err := imaging.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrImageProcessing, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrImageProcessing, err)
	}

	return &NormalizedImage{
		Data:   buf.Bytes(),
		Base64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
