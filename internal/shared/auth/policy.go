// Package auth provides a role-based policy engine and HTTP middleware that
// authorizes requests from actor headers set by the upstream gateway.
package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Policy maps "METHOD:/path" actions to the roles allowed to perform them.
type Policy struct {
	Rules map[string][]string `json:"rules"`
}

// Engine evaluates actions against a loaded Policy.
type Engine struct {
	allowed map[string]map[string]struct{}
}

// LoadPolicy decodes a JSON policy bundle.
func LoadPolicy(r io.Reader) (*Engine, error) {
	var policy Policy
	if err := json.NewDecoder(r).Decode(&policy); err != nil {
		return nil, fmt.Errorf("decode policy bundle: %w", err)
	}
	return NewEngine(policy), nil
}

// NewEngine builds an Engine from an in-memory Policy.
func NewEngine(policy Policy) *Engine {
	engine := &Engine{allowed: map[string]map[string]struct{}{}}
	for resource, roles := range policy.Rules {
		key := strings.ToUpper(resource)
		set := engine.allowed[key]
		if set == nil {
			set = map[string]struct{}{}
			engine.allowed[key] = set
		}
		for _, role := range roles {
			set[strings.ToLower(role)] = struct{}{}
		}
	}
	return engine
}

// Allowed reports whether any of roles may perform action.
func (e *Engine) Allowed(action string, roles []string) bool {
	if e == nil {
		return false
	}
	set := e.allowed[strings.ToUpper(action)]
	if len(set) == 0 {
		return false
	}
	for _, role := range roles {
		if _, ok := set[strings.ToLower(strings.TrimSpace(role))]; ok {
			return true
		}
	}
	return false
}
