package discovery

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// CodeGenerator renders a URL into an image phones can scan.
type CodeGenerator interface {
	Encode(url string) ([]byte, error)
}

// QRGenerator encodes URLs as PNG QR codes.
type QRGenerator struct {
	// Scale is the pixel size of one QR module.
	Scale int
	Level qrcode.RecoveryLevel
}

func NewQRGenerator(scale int) *QRGenerator {
	if scale <= 0 {
		scale = 10
	}
	return &QRGenerator{Scale: scale, Level: qrcode.Medium}
}

func (g *QRGenerator) Encode(url string) ([]byte, error) {
	q, err := qrcode.New(url, g.Level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	// a negative size makes each module Scale pixels wide
	png, err := q.PNG(-g.Scale)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return png, nil
}
