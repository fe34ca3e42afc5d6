package annotation

import (
	"fmt"
	"strconv"
)

// YOLOLines formats rects as normalized "class xc yc w h" lines relative to
// an image of imgW x imgH pixels.
func YOLOLines(rects []Rect, imgW, imgH, classID int) ([]string, error) {
	if imgW <= 0 || imgH <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", imgW, imgH)
	}

	lines := make([]string, 0, len(rects))
	fw, fh := float64(imgW), float64(imgH)
	for _, r := range rects {
		xc := (float64(r.X) + float64(r.W)/2) / fw
		yc := (float64(r.Y) + float64(r.H)/2) / fh
		lines = append(lines, fmt.Sprintf("%d %s %s %s %s",
			classID, ftoa(xc), ftoa(yc), ftoa(float64(r.W)/fw), ftoa(float64(r.H)/fh)))
	}
	return lines, nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
