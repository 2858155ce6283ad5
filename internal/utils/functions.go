package utils

import (
	"net/url"
	"path"
)

// MatchURL reports whether targetURL equals one of patternURLs, or shares its
// scheme and host with a path matching the pattern path glob.
func MatchURL(patternURLs []string, targetURL string) bool {
	target, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	for _, patternURL := range patternURLs {
		if patternURL == targetURL {
			return true
		}
		pattern, errParse := url.Parse(patternURL)
		if errParse != nil {
			continue
		}
		if pattern.Scheme != target.Scheme || pattern.Host != target.Host {
			continue
		}
		matched, errMatch := path.Match(pattern.Path, target.Path)
		if errMatch == nil && matched {
			return true
		}
	}
	return false
}
