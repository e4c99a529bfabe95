// SPDX-License-Identifier: MPL-2.0

package urlutil

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrInvalidURL is the sentinel error wrapped by InvalidURLError.
var ErrInvalidURL = errors.New("invalid URL")

// defaultPorts maps special schemes to the port that is dropped during
// canonicalization. "file" is special but has no default port.
var defaultPorts = map[string]string{
	"ftp":   "21",
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

// InvalidURLError is returned when a string cannot be parsed into an absolute URL.
// It wraps ErrInvalidURL for errors.Is() compatibility.
type InvalidURLError struct {
	// Input is the raw string that failed to parse.
	Input string
	// Reason is a short human-readable explanation.
	Reason string
	// Cause is the underlying net/url error, if any.
	Cause error
}

// Error implements the error interface for InvalidURLError.
func (e *InvalidURLError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid URL %q: %s: %v", e.Input, e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid URL %q: %s", e.Input, e.Reason)
}

// Unwrap returns ErrInvalidURL for errors.Is() compatibility.
func (e *InvalidURLError) Unwrap() error { return ErrInvalidURL }

// IsSpecialScheme reports whether scheme is one of the schemes with
// hierarchical, authority-based parsing rules.
func IsSpecialScheme(scheme string) bool {
	if scheme == "file" {
		return true
	}
	_, ok := defaultPorts[strings.ToLower(scheme)]
	return ok
}

// ParseAbsolute parses s as an absolute URL and returns its canonical form.
// Strings without a scheme ("moment", "./app.js", "/x") are rejected.
func ParseAbsolute(s string) (*url.URL, error) {
	input := trimControlAndSpace(s)
	if input == "" {
		return nil, &InvalidURLError{Input: s, Reason: "empty input"}
	}

	scheme, _, found := strings.Cut(input, ":")
	if !found || !validScheme(scheme) {
		return nil, &InvalidURLError{Input: s, Reason: "missing scheme"}
	}
	if IsSpecialScheme(scheme) {
		input = withAuthority(scheme, strings.ReplaceAll(input, `\`, "/"))
	}

	u, err := url.Parse(input)
	if err != nil {
		return nil, &InvalidURLError{Input: s, Reason: "malformed", Cause: err}
	}
	if !u.IsAbs() {
		return nil, &InvalidURLError{Input: s, Reason: "missing scheme"}
	}
	return canonicalize(s, u)
}

// ParseRelative resolves ref against base and returns the canonical result.
// An absolute ref is returned canonicalized, independent of base.
func ParseRelative(ref string, base *url.URL) (*url.URL, error) {
	if base == nil {
		return ParseAbsolute(ref)
	}
	input := trimControlAndSpace(ref)
	if IsSpecialScheme(base.Scheme) {
		input = strings.ReplaceAll(input, `\`, "/")
	}

	r, err := url.Parse(input)
	if err != nil {
		return nil, &InvalidURLError{Input: ref, Reason: "malformed", Cause: err}
	}
	resolved := base.ResolveReference(r)
	if !resolved.IsAbs() {
		return nil, &InvalidURLError{Input: ref, Reason: "base URL is not absolute"}
	}
	return canonicalize(ref, resolved)
}

// Serialize returns the canonical string form of u. A nil URL serializes to "".
// URLs built outside this package are canonicalized first; one that cannot be
// canonicalized serializes as u.String().
func Serialize(u *url.URL) string {
	if u == nil {
		return ""
	}
	if c, err := canonicalize(u.String(), u); err == nil {
		return c.String()
	}
	return u.String()
}

// withAuthority rewrites a special-scheme input so the text after the colon
// is read as an authority: "http:foo" and "http:///foo" both become
// "http://foo". File URLs gain an empty authority instead ("file:x" becomes
// "file:///x").
func withAuthority(scheme, input string) string {
	rest := strings.TrimLeft(input[len(scheme)+1:], "/")
	if strings.EqualFold(scheme, "file") {
		if strings.HasPrefix(input[len(scheme)+1:], "//") {
			return input
		}
		return scheme + ":///" + rest
	}
	return scheme + "://" + rest
}

// MustParseAbsolute is like ParseAbsolute but panics on error. It is intended
// for package-level variables and tests.
func MustParseAbsolute(s string) *url.URL {
	u, err := ParseAbsolute(s)
	if err != nil {
		panic(err)
	}
	return u
}

// FromFilePath returns the file: URL for an absolute filesystem path. Windows
// drive paths ("C:\app\index.html") gain a leading slash.
func FromFilePath(path string) (*url.URL, error) {
	if path == "" {
		return nil, &InvalidURLError{Input: path, Reason: "empty path"}
	}
	slashed := filepath.ToSlash(path)
	if len(slashed) >= 2 && slashed[1] == ':' {
		slashed = "/" + slashed
	}
	if !strings.HasPrefix(slashed, "/") {
		return nil, &InvalidURLError{Input: path, Reason: "path is not absolute"}
	}
	return canonicalize(path, &url.URL{Scheme: "file", Path: slashed})
}

func canonicalize(input string, u *url.URL) (*url.URL, error) {
	out := *u
	out.Scheme = strings.ToLower(out.Scheme)

	if !IsSpecialScheme(out.Scheme) {
		if out.Opaque == "" && out.Host != "" {
			out.Host = strings.ToLower(out.Host)
		}
		if out.Opaque == "" && strings.HasPrefix(out.Path, "/") {
			removeDotSegments(&out)
		}
		return &out, nil
	}

	if out.Opaque != "" {
		return nil, &InvalidURLError{Input: input, Reason: "special scheme requires a hierarchical URL"}
	}
	if out.Scheme != "file" && out.Host == "" {
		return nil, &InvalidURLError{Input: input, Reason: "special scheme requires a host"}
	}

	host := strings.ToLower(out.Host)
	if port := out.Port(); port != "" && defaultPorts[out.Scheme] == port {
		host = strings.TrimSuffix(host, ":"+port)
	}
	if h, p, err := net.SplitHostPort(host); err == nil && p == "" {
		host = h
	}
	out.Host = host

	if out.Path == "" {
		out.Path = "/"
		out.RawPath = ""
	}
	removeDotSegments(&out)
	return &out, nil
}

// removeDotSegments rewrites u's path without "." and ".." segments while
// keeping a trailing slash. net/url performs the same RFC 3986 algorithm when
// resolving an absolute-path reference against u itself.
func removeDotSegments(u *url.URL) {
	if !strings.Contains(u.Path, ".") {
		return
	}
	ref := &url.URL{
		Path:        u.Path,
		RawPath:     u.RawPath,
		RawQuery:    u.RawQuery,
		ForceQuery:  u.ForceQuery,
		Fragment:    u.Fragment,
		RawFragment: u.RawFragment,
	}
	resolved := u.ResolveReference(ref)
	u.Path = resolved.Path
	u.RawPath = resolved.RawPath
}

func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// trimControlAndSpace strips leading and trailing C0 control characters and spaces.
func trimControlAndSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r <= 0x20
	})
}
