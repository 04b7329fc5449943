package identity

import (
	"net/http"
	"strings"
)

// RequestCookieStore adapts a server request (and optionally its
// response writer) to the CookieStore contract. Reads parse the raw
// Cookie header so duplicate names keep the header-supplied value; the
// per-name request accessor is only a fallback for cookies injected
// outside the header.
type RequestCookieStore struct {
	req           *http.Request
	w             http.ResponseWriter
	namespace     string
	secureDefault bool

	// written overlays same-request writes onto reads, so a session
	// persisted and then discarded within one request can still find
	// its own chunks to expire. A nil value records a deletion.
	written map[string]*string
}

func NewRequestCookieStore(r *http.Request, w http.ResponseWriter, endpoint string, secureDefault bool) *RequestCookieStore {
	return &RequestCookieStore{
		req:           r,
		w:             w,
		namespace:     CookieNamespace(endpoint),
		secureDefault: secureDefault,
		written:       make(map[string]*string),
	}
}

func (s *RequestCookieStore) GetAll() []Cookie {
	var out []Cookie
	seen := make(map[string]struct{})

	for name, value := range s.written {
		seen[name] = struct{}{}
		if value != nil {
			out = append(out, Cookie{Name: name, Value: *value})
		}
	}

	header := s.req.Header.Get("Cookie")
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if !strings.HasPrefix(name, s.namespace) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, Cookie{Name: name, Value: value})
	}

	// Fallback lookup covers cookies attached via the request cookie
	// API without a matching header entry; header values win.
	for _, c := range s.req.Cookies() {
		if !strings.HasPrefix(c.Name, s.namespace) {
			continue
		}
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func (s *RequestCookieStore) SetAll(cookies []SetCookie) {
	if s.w == nil {
		return
	}
	for _, c := range cookies {
		if c.Options.MaxAge < 0 {
			s.written[c.Name] = nil
		} else {
			value := c.Value
			s.written[c.Name] = &value
		}
		path, maxAge, httpOnly, secure, sameSite := applyDefaults(c.Options, s.secureDefault)
		http.SetCookie(s.w, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			MaxAge:   maxAge,
			HttpOnly: httpOnly,
			Secure:   secure,
			SameSite: sameSite,
		})
	}
}
