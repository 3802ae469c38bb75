package naming

import (
	"fmt"
	"strings"
)

// Registry assigns module names across a whole design. A name is claimed
// with a signature describing the variant; claiming again with the same
// signature returns the same name, a different signature gets a suffix.
type Registry struct {
	bySignature map[string]string
	owner       map[string]string
	reserved    map[string]bool
}

func NewRegistry(reserved ...string) *Registry {
	r := &Registry{
		bySignature: map[string]string{},
		owner:       map[string]string{},
		reserved:    map[string]bool{},
	}
	for _, name := range reserved {
		r.reserved[strings.ToLower(name)] = true
	}
	return r
}

// Claim returns the module name for the variant identified by signature.
// Claiming a reserved name is an error.
func (r *Registry) Claim(name, signature string) (string, error) {
	if got, ok := r.bySignature[signature]; ok {
		return got, nil
	}
	if r.reserved[strings.ToLower(name)] {
		return "", fmt.Errorf("module name %s collides with a reserved module", name)
	}
	candidate := name
	for i := 1; ; i++ {
		key := strings.ToLower(candidate)
		if _, taken := r.owner[key]; !taken && !r.reserved[key] {
			break
		}
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
	r.owner[strings.ToLower(candidate)] = signature
	r.bySignature[signature] = candidate
	return candidate, nil
}
