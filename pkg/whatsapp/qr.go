package whatsapp

import (
	"io"

	"github.com/mdp/qrterminal/v3"
	qrCode "github.com/skip2/go-qrcode"
	"github.com/vincent-petithory/dataurl"
)

// QRCode is a pending pairing code and its PNG rendering.
type QRCode struct {
	Code    string
	DataURL string
}

func RenderQR(code string) (QRCode, error) {
	qrPNG, err := qrCode.Encode(code, qrCode.Medium, 256)
	if err != nil {
		return QRCode{}, err
	}
	return QRCode{
		Code:    code,
		DataURL: dataurl.New(qrPNG, "image/png").String(),
	}, nil
}

func PrintQR(w io.Writer, code string) {
	qrterminal.GenerateHalfBlock(code, qrterminal.L, w)
}
