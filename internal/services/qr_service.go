package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image/png"

	"github.com/skip2/go-qrcode"
)

const defaultQRSize = 192

type QRService struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewQRService() *QRService {
	return &QRService{size: defaultQRSize, level: qrcode.Medium}
}

// PNGDataURI renders content as a QR code and returns it as a data: URI
// ready for an <img src>. The URI is built only from encoded PNG bytes, so
// it is marked safe for html/template, which otherwise rewrites data: URIs.
func (s *QRService) PNGDataURI(content string) (template.URL, error) {
	raw, err := s.PNG(content)
	if err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)), nil
}

func (s *QRService) PNG(content string) ([]byte, error) {
	qr, err := qrcode.New(content, s.level)
	if err != nil {
		return nil, fmt.Errorf("qr: encode %q: %w", content, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(s.size)); err != nil {
		return nil, fmt.Errorf("qr: png: %w", err)
	}
	return buf.Bytes(), nil
}
