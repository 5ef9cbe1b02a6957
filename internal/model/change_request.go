package model

import "strings"

// Viewport is the browser's inner size in CSS pixels when the request was made.
type Viewport struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// ChangeRequestInput is the payload one submit carries from the page to the
// relay. It is built once per submit and never mutated afterwards.
type ChangeRequestInput struct {
	URL             string   `json:"url" validate:"required,url"`
	Locator         string   `json:"locator" validate:"required"`
	Description     string   `json:"description" validate:"min=5,max=2000"`
	Viewport        Viewport `json:"viewport"`
	ScreenshotImage string   `json:"screenshotImage,omitempty"` // data URL, optional
	RelatedPRNumber *int     `json:"relatedPrNumber,omitempty" validate:"omitnil,gt=0"`
}

// HasScreenshot reports whether the payload carries an image data URL.
func (in ChangeRequestInput) HasScreenshot() bool {
	return strings.HasPrefix(in.ScreenshotImage, imageDataURLPrefix)
}

const imageDataURLPrefix = "data:image/"

// SubmitResult is what a filed change request reports back to the page.
type SubmitResult struct {
	IssueURL        string
	IssueNumber     int
	RelatedPRNumber *int
}
