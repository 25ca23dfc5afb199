package upload

import "net/url"

// Validator reports whether a raw string is acceptable as a callback URL.
type Validator interface {
	IsValid(raw string) bool
}

// SchemeValidator accepts absolute http and https URLs and nothing else.
type SchemeValidator struct{}

func (SchemeValidator) IsValid(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
