package model

// BoundingBox is the picked element's rect in viewport pixels at pick time.
// Advisory only; it is never re-validated.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PickedTarget is the client-held result of one pick. ScreenshotImage is a
// data URL and stays empty when the snapshot could not be taken.
type PickedTarget struct {
	Locator         string      `json:"locator"`
	BoundingBox     BoundingBox `json:"boundingBox"`
	ScreenshotImage string      `json:"screenshotImage,omitempty"`
}

func (t PickedTarget) HasScreenshot() bool {
	return t.ScreenshotImage != ""
}
