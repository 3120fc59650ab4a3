// Package camera grabs single frames from a local capture device.
package camera

import (
	"bytes"
	"fmt"

	"gocv.io/x/gocv"
)

// warmupFrames are read and discarded so auto exposure can settle.
const warmupFrames = 5

// Capture opens device, reads one frame and returns it JPEG encoded.
func Capture(device int) ([]byte, error) {
	webcam, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("opening camera %d: %w", device, err)
	}
	defer webcam.Close()

	img := gocv.NewMat()
	defer img.Close()

	for i := 0; i <= warmupFrames; i++ {
		if ok := webcam.Read(&img); !ok {
			return nil, fmt.Errorf("camera %d: device closed", device)
		}
	}
	if img.Empty() {
		return nil, fmt.Errorf("camera %d: empty frame", device)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("IMEncode failed: %w", err)
	}
	defer buf.Close()

	return bytes.Clone(buf.GetBytes()), nil
}
