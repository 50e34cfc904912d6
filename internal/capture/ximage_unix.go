//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"fmt"
	"image"

	"github.com/jezek/xgb/xproto"
)

// decodeZPixmap converts a BGR(A) ZPixmap reply into RGBA. Pixels are
// opaque unless the format carries 32 bits and the depth is 32.
func decodeZPixmap(setup *xproto.SetupInfo, reply *xproto.GetImageReply, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("root window has empty geometry")
	}
	if reply == nil || len(reply.Data) == 0 {
		return nil, fmt.Errorf("root window pixels: empty image data")
	}
	bpp := 0
	for _, f := range setup.PixmapFormats {
		if f.Depth == reply.Depth {
			bpp = int(f.BitsPerPixel) / 8
			break
		}
	}
	if bpp < 3 {
		return nil, fmt.Errorf("unsupported depth %d", reply.Depth)
	}
	stride := len(reply.Data) / height
	if stride*height != len(reply.Data) || stride < width*bpp {
		return nil, fmt.Errorf("root window pixels: unexpected stride")
	}
	alpha := bpp == 4 && reply.Depth == 32

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := reply.Data[y*stride:]
		for x := 0; x < width; x++ {
			src := row[x*bpp:]
			i := img.PixOffset(x, y)
			img.Pix[i+0] = src[2]
			img.Pix[i+1] = src[1]
			img.Pix[i+2] = src[0]
			img.Pix[i+3] = 0xFF
			if alpha {
				img.Pix[i+3] = src[3]
			}
		}
	}
	return img, nil
}
