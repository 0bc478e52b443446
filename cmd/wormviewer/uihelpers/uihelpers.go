package uihelpers

// ComputeChartDimensions applies width/height clamp rules used for the chart image.
// Input: desired raw width (e.g., canvas width). Height keeps the 960x500 aspect ratio.
func ComputeChartDimensions(rawW int) (int, int) {
	w := rawW
	if w < 640 {
		w = 640
	}
	if w > 2400 {
		w = 2400
	}
	h := w * 500 / 960
	if h < 320 {
		h = 320
	}
	return w, h
}

// ComputeContainRect returns where an imgW x imgH image lands when drawn with
// "contain" fill inside a viewW x viewH box: offset, drawn size and scale factor.
func ComputeContainRect(imgW, imgH, viewW, viewH float32) (drawX, drawY, drawW, drawH, scale float32) {
	if imgW <= 0 || imgH <= 0 || viewW <= 0 || viewH <= 0 {
		return 0, 0, 0, 0, 1
	}
	scale = viewW / imgW
	if s := viewH / imgH; s < scale {
		scale = s
	}
	drawW = imgW * scale
	drawH = imgH * scale
	drawX = (viewW - drawW) / 2
	drawY = (viewH - drawH) / 2
	return
}

// ViewToImage maps a position in the view box back to image pixels. ok is false when the
// position falls in the letterbox around the image.
func ViewToImage(x, y, imgW, imgH, viewW, viewH float32) (ix, iy float32, ok bool) {
	dx, dy, dw, dh, scale := ComputeContainRect(imgW, imgH, viewW, viewH)
	if dw == 0 || x < dx || y < dy || x > dx+dw || y > dy+dh {
		return 0, 0, false
	}
	return (x - dx) / scale, (y - dy) / scale, true
}
