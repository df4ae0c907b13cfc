package media

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/disintegration/imaging"

	"github.com/camden-git/photocmsbackend/utils"
)

const resizedFileExtension = ".jpg"

// Processor produces derived renditions of original photos. It relies on
// a Store implementation for persisting the results.
type Processor struct {
	store       Store
	jpegQuality int
}

func NewProcessor(store Store, jpegQuality int) *Processor {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 90
	}
	return &Processor{store: store, jpegQuality: jpegQuality}
}

// GenerateSize produces exactly one rendition of the original at
// rawRelPath for the given size spec and saves it to the resized store.
//
// The original is downscaled with Lanczos so neither dimension exceeds
// MaxDimension (aspect ratio preserved, never upscaled). For square-crop
// sizes the result is center-cropped to its smaller post-scale dimension
// and then brought to exactly MaxDimension x MaxDimension. The source's
// EXIF block, when present, is carried into the output, and the MD5 of
// the final encoded bytes is recorded for drift detection.
func (p *Processor) GenerateSize(rawRelPath, photoTitle string, spec SizeSpec) (*GeneratedSize, error) {
	fullPath, err := p.store.GetFullPath(rawRelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve original path '%s': %w", rawRelPath, err)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("original file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read original file %s: %w", rawRelPath, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(false))
	if err != nil {
		return nil, fmt.Errorf("failed to decode original image %s: %w", rawRelPath, err)
	}

	// Fit scales down only; smaller originals keep their dimensions
	resized := imaging.Fit(img, spec.MaxDimension, spec.MaxDimension, imaging.Lanczos)

	if spec.SquareCrop {
		bounds := resized.Bounds()
		minDim := bounds.Dx()
		if bounds.Dy() < minDim {
			minDim = bounds.Dy()
		}
		resized = imaging.CropCenter(resized, minDim, minDim)
		if minDim != spec.MaxDimension {
			resized = imaging.Resize(resized, spec.MaxDimension, spec.MaxDimension, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(p.jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode rendition: %w", err)
	}

	encoded := spliceEXIFSegment(buf.Bytes(), extractEXIFSegment(data))

	sum := md5.Sum(encoded)

	filename := utils.RandomizedSizeFilename(photoTitle, spec.Slug, resizedFileExtension)
	savedRelPath, err := p.store.Save(AssetTypeResized, filename, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to save rendition via store: %w", err)
	}

	bounds := resized.Bounds()
	log.Printf("processor: generated %s rendition for %s at %s (%dx%d)",
		spec.Slug, rawRelPath, savedRelPath, bounds.Dx(), bounds.Dy())

	return &GeneratedSize{
		RelativePath: savedRelPath,
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		MD5:          hex.EncodeToString(sum[:]),
	}, nil
}
