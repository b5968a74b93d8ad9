package qrcode

import (
	"fmt"

	qr "github.com/skip2/go-qrcode"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
)

// Renderer draws QR codes as PNG images.
type Renderer struct {
	level qr.RecoveryLevel
}

func NewRenderer() *Renderer {
	return &Renderer{level: qr.Medium}
}

// Render returns the finished PNG once drawing has completed.
func (r *Renderer) Render(content string, size int) ([]byte, error) {
	code, err := qr.New(content, r.level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("rasterize qr: %w", err)
	}
	return png, nil
}

var _ ports.CodeRenderer = (*Renderer)(nil)
