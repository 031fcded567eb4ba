package validate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

// Video identifiers are 6-11 characters from the URL-safe base64 set.
// Bare inputs are only treated as identifiers at the standard 11-char
// length; shorter strings like "not-a-url" would otherwise pass.
var (
	reVideoID   = regexp.MustCompile(`^[A-Za-z0-9_-]{6,11}$`)
	reCanonical = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// VideoID extracts the canonical video identifier from a raw input
// string. Two host families are accepted: youtube.com (watch, shorts,
// embed and live paths) and youtu.be short links. An input that is
// already a canonical 11-char identifier is returned unchanged, so the
// function is idempotent for such inputs. Identifiers extracted from a
// URL may be shorter than 11 chars and do not re-validate as bare
// input; accepting short bare strings would accept arbitrary words.
// It performs no I/O.
func VideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.Errorf(domain.KindInvalidURL, "empty url")
	}

	if reCanonical.MatchString(raw) {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", domain.Wrap(domain.KindInvalidURL, err, "parse url %q", raw)
	}

	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return "", domain.Errorf(domain.KindInvalidURL, "unsupported scheme %q", u.Scheme)
	}

	// Scheme-less inputs like "youtu.be/abc123" parse with an empty host.
	if u.Host == "" {
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return "", domain.Wrap(domain.KindInvalidURL, err, "parse url %q", raw)
		}
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "youtu.be":
		return idFromPath(strings.TrimPrefix(u.Path, "/"))
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		return idFromYouTubeURL(u)
	}

	return "", domain.Errorf(domain.KindInvalidURL, "unrecognized video host %q", host)
}

func idFromYouTubeURL(u *url.URL) (string, error) {
	if u.Path == "/watch" {
		return idFromPath(u.Query().Get("v"))
	}

	for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
		if strings.HasPrefix(u.Path, prefix) {
			rest := strings.TrimPrefix(u.Path, prefix)
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				rest = rest[:i]
			}
			return idFromPath(rest)
		}
	}

	return "", domain.Errorf(domain.KindInvalidURL, "no video identifier in path %q", u.Path)
}

func idFromPath(id string) (string, error) {
	if !reVideoID.MatchString(id) {
		return "", domain.Errorf(domain.KindInvalidURL, "invalid video identifier %q", id)
	}
	return id, nil
}
