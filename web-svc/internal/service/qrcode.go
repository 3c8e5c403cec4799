package service

import (
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderRef string) ([]byte, error)
}

// TrackingQRGenerator encodes a link to the order status page as a PNG.
type TrackingQRGenerator struct {
	BaseURL string
}

func (g TrackingQRGenerator) Link(orderRef string) string {
	return strings.TrimRight(g.BaseURL, "/") + "/estado.html?order_id=" + url.QueryEscape(orderRef)
}

func (g TrackingQRGenerator) Generate(orderRef string) ([]byte, error) {
	return qrcode.Encode(g.Link(orderRef), qrcode.Medium, 256)
}
