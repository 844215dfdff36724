package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/url"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

// ErrNoControlURL is returned when there is no address to encode.
var ErrNoControlURL = errors.New("no control URL to encode")

// QRLight is the quiet-zone colour of control QR codes. Modules are drawn in
// the rain background colour so the code looks at home next to the canvas
// while keeping dark-on-light polarity for phone scanners.
var QRLight = color.RGBA{R: 0xD8, G: 0xFF, B: 0xD8, A: 0xFF}

// ControlQRCode encodes an absolute http(s) control page URL. sizePx <= 0
// selects the default size.
func ControlQRCode(controlURL string, sizePx int) (image.Image, error) {
	if controlURL == "" {
		return nil, ErrNoControlURL
	}
	u, err := url.Parse(controlURL)
	if err != nil {
		return nil, fmt.Errorf("control URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("control URL %q is not an absolute http(s) address", controlURL)
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}

	code, err := qrcode.New(u.String(), qrcode.Medium)
	if err != nil {
		return nil, err
	}
	code.ForegroundColor = color.Black
	code.BackgroundColor = QRLight
	return code.Image(sizePx), nil
}
