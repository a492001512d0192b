package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"

	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/recipebox/recipebox-server/internal/id"
)

// Processor validates uploaded images, stores them, and computes their
// BlurHash placeholder.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		storage: storage,
		logger:  logger,
	}
}

// Result describes a stored image.
type Result struct {
	ImageID  string
	BlurHash string
}

// Process decodes the uploaded bytes, stores the original data under a
// fresh image ID, and computes a BlurHash placeholder. The decode step
// rejects anything that is not a JPEG, PNG, GIF, or WebP image.
func (p *Processor) Process(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	imageID, err := id.Generate("img")
	if err != nil {
		return nil, fmt.Errorf("generate image ID: %w", err)
	}

	if err := p.storage.Save(imageID, data); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	hash, err := ComputeBlurHash(img)
	if err != nil {
		// Placeholder generation failing should not lose the upload.
		p.logger.Warn("Failed to compute blurhash", "image_id", imageID, "error", err)
		hash = ""
	}

	p.logger.Debug("stored image",
		"image_id", imageID,
		"format", format,
		"size", len(data),
	)

	return &Result{ImageID: imageID, BlurHash: hash}, nil
}
