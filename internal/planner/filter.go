package planner

import "fmt"

// maxFitPasses bounds the width/height correction loop in Fit.
const maxFitPasses = 4

// Fit returns the content size for a w x h source on a maxW x maxH
// canvas. Sources that already fit pass through unchanged (no upscale).
// Otherwise the width is corrected first, then the height, repeating
// until both bounds hold. For a fixed aspect ratio the first pass always
// suffices; passes reports how many ran.
func Fit(w, h, maxW, maxH float64) (rw, rh float64, passes int) {
	rw, rh = w, h
	if w <= maxW && h <= maxH {
		return rw, rh, 0
	}
	aspect := w / h
	for passes < maxFitPasses && (rw > maxW || rh > maxH) {
		passes++
		if rw > maxW {
			rw = maxW
			rh = rw / aspect
		}
		if rh > maxH {
			rh = maxH
			rw = rh * aspect
		}
	}
	return rw, rh, passes
}

// PadScale builds the scale-then-pad filter that centers a w x h picture
// on a black canvasW x canvasH frame.
func PadScale(w, h, canvasW, canvasH int) string {
	return fmt.Sprintf("scale=%d:%d,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black", w, h, canvasW, canvasH)
}
