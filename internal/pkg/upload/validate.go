package upload

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
)

var allowedExt = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
}

// ValidateVideoFile checks the filename extension against the whitelist of
// supported container formats.
func ValidateVideoFile(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return errors.New("only the following video formats are supported: MP4, M4V, MOV, WEBM, MKV, AVI")
	}
	return nil
}

// ValidateSourceURL checks that a remote video source is an absolute
// http or https URL with a host.
func ValidateSourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("source URL is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("source URL must use http or https")
	}
	if u.Host == "" {
		return errors.New("source URL is missing a host")
	}
	return nil
}
