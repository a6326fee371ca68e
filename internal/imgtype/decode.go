package imgtype

import (
	"image"
	_ "image/jpeg" // register JPEG for DefaultDecode
	_ "image/png"  // register PNG for DefaultDecode
	"io"
)

// DecodeFunc turns an encoded image stream into a decoded image.
type DecodeFunc func(r io.Reader) (image.Image, error)

// DefaultDecode decodes any format registered with the image package.
func DefaultDecode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	return img, err
}
