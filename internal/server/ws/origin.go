package ws

import (
	"net/http"
	"net/url"
	"strings"
)

// OriginPolicy decides which browser origins may open sockets or call the
// REST API. Requests without an Origin header come from non-browser clients
// and are always allowed.
type OriginPolicy struct {
	allowAll bool
	allowed  map[string]struct{}
}

// NewOriginPolicy builds a policy from configured origins. "*" allows any
// origin. Entries that are not scheme://host are ignored.
func NewOriginPolicy(origins []string) *OriginPolicy {
	p := &OriginPolicy{allowed: make(map[string]struct{}, len(origins))}

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			p.allowAll = true
			continue
		}
		if normalized, ok := normalizeOrigin(trimmed); ok {
			p.allowed[normalized] = struct{}{}
		}
	}

	return p
}

// AllowAll reports whether every origin is accepted.
func (p *OriginPolicy) AllowAll() bool { return p.allowAll }

// AllowedOrigin reports whether the given Origin header value is accepted.
func (p *OriginPolicy) AllowedOrigin(origin string) bool {
	if origin == "" || p.allowAll {
		return true
	}
	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}
	_, exists := p.allowed[normalized]
	return exists
}

// Allowed checks the request's Origin header.
func (p *OriginPolicy) Allowed(r *http.Request) bool {
	return p.AllowedOrigin(r.Header.Get("Origin"))
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}
