package utils

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var linkRegex = regexp.MustCompile(`https?://[^\s]+|discord\.gg/[^\s]+`)

// ExtractLinks finds http(s) URLs and bare invite links in message content.
func ExtractLinks(content string) []string {
	return linkRegex.FindAllString(content, -1)
}

// LinkDomain normalizes a raw link to its punycoded lowercase host.
func LinkDomain(raw string) (string, error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	host := strings.ToLower(parsed.Hostname())
	if asciiHost, err := idna.ToASCII(host); err == nil {
		host = asciiHost
	}
	return host, nil
}
