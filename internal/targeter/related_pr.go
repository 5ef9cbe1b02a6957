package targeter

import (
	"net/url"
	"strconv"
)

// DetectRelatedPR reads the pull request a preview page belongs to from its
// "pr" query parameter, falling back to "pull". Anything other than a positive
// integer means no related PR.
func DetectRelatedPR(pageURL string) *int {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	q := u.Query()
	raw := q.Get("pr")
	if raw == "" {
		raw = q.Get("pull")
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
