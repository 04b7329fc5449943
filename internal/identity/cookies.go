package identity

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// The identity provider namespaces its cookies with a fixed prefix and
// a project ref derived from the service endpoint's hostname. The
// naming must match the provider's own client byte for byte, including
// the chunk suffixes used when a session payload exceeds one cookie.
const (
	cookiePrefix        = "sb-"
	authTokenSuffix     = "-auth-token"
	codeVerifierSuffix  = "-auth-token-code-verifier"
	maxCookieChunkSize  = 3180
	defaultCookiePath   = "/"
	defaultSameSiteMode = http.SameSiteLaxMode
)

type Cookie struct {
	Name  string
	Value string
}

type CookieOptions struct {
	Path     string
	MaxAge   int
	HTTPOnly *bool
	Secure   *bool
	SameSite http.SameSite
}

type SetCookie struct {
	Name    string
	Value   string
	Options CookieOptions
}

// CookieStore presents a uniform list/set cookie interface over the
// incompatible transport cookie APIs (request header pull vs. a single
// semicolon-joined string).
type CookieStore interface {
	GetAll() []Cookie
	SetAll(cookies []SetCookie)
}

// ProjectRef extracts the leading DNS label of the endpoint host,
// falling back to "sb" when the endpoint is unparseable.
func ProjectRef(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Hostname() == "" {
		return "sb"
	}
	host := u.Hostname()
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i]
	}
	return host
}

// CookieNamespace is the prefix all identity cookies share for a given
// endpoint, e.g. "sb-myproject-".
func CookieNamespace(endpoint string) string {
	return cookiePrefix + ProjectRef(endpoint) + "-"
}

func authTokenCookieName(endpoint string) string {
	return cookiePrefix + ProjectRef(endpoint) + authTokenSuffix
}

func codeVerifierCookieName(endpoint string) string {
	return cookiePrefix + ProjectRef(endpoint) + codeVerifierSuffix
}

// assembleChunked reassembles a possibly chunked cookie value: either a
// single cookie under the base name, or ordered ".0", ".1", ... chunks.
func assembleChunked(cookies []Cookie, baseName string) string {
	byName := make(map[string]string, len(cookies))
	for _, c := range cookies {
		byName[c.Name] = c.Value
	}
	if v, ok := byName[baseName]; ok && v != "" {
		return v
	}

	type chunk struct {
		index int
		value string
	}
	var chunks []chunk
	for name, value := range byName {
		rest, ok := strings.CutPrefix(name, baseName+".")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		chunks = append(chunks, chunk{index: idx, value: value})
	}
	if len(chunks) == 0 {
		return ""
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].index < chunks[j].index })
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.value)
	}
	return b.String()
}

// chunkValue splits a value into the provider's chunked cookie shape
// when it exceeds the per-cookie size limit.
func chunkValue(baseName, value string) []Cookie {
	if len(value) <= maxCookieChunkSize {
		return []Cookie{{Name: baseName, Value: value}}
	}
	var out []Cookie
	for i := 0; len(value) > 0; i++ {
		n := maxCookieChunkSize
		if n > len(value) {
			n = len(value)
		}
		out = append(out, Cookie{Name: fmt.Sprintf("%s.%d", baseName, i), Value: value[:n]})
		value = value[n:]
	}
	return out
}

// applyDefaults fills the options the caller did not override: path
// "/", http-only, same-site lax, secure tied to the deployment mode.
func applyDefaults(opts CookieOptions, secureDefault bool) (path string, maxAge int, httpOnly, secure bool, sameSite http.SameSite) {
	path = opts.Path
	if path == "" {
		path = defaultCookiePath
	}
	maxAge = opts.MaxAge
	httpOnly = true
	if opts.HTTPOnly != nil {
		httpOnly = *opts.HTTPOnly
	}
	secure = secureDefault
	if opts.Secure != nil {
		secure = *opts.Secure
	}
	sameSite = opts.SameSite
	if sameSite == 0 {
		sameSite = defaultSameSiteMode
	}
	return path, maxAge, httpOnly, secure, sameSite
}
