package identity

import "strings"

// StringCookieStore adapts a single semicolon-joined cookie string,
// the shape a browser document (or a CLI holding a captured cookie
// line) exposes. Writes rewrite the string in place; transport
// attributes beyond name=value have no representation here.
type StringCookieStore struct {
	raw       string
	namespace string
}

func NewStringCookieStore(raw, endpoint string) *StringCookieStore {
	return &StringCookieStore{raw: raw, namespace: CookieNamespace(endpoint)}
}

func (s *StringCookieStore) GetAll() []Cookie {
	var out []Cookie
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s.raw, ";") {
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
	return out
}

func (s *StringCookieStore) SetAll(cookies []SetCookie) {
	values := make(map[string]string)
	var order []string
	for _, part := range strings.Split(s.raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if _, dup := values[name]; !dup {
			order = append(order, name)
		}
		values[name] = value
	}
	for _, c := range cookies {
		if c.Options.MaxAge < 0 {
			delete(values, c.Name)
			continue
		}
		if _, dup := values[c.Name]; !dup {
			order = append(order, c.Name)
		}
		values[c.Name] = c.Value
	}
	var b strings.Builder
	for _, name := range order {
		value, ok := values[name]
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(value)
	}
	s.raw = b.String()
}

// Raw returns the current cookie string after any writes.
func (s *StringCookieStore) Raw() string { return s.raw }
