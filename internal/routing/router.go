package routing

// Router resolves the CLIConfig to use for a given agent role.
type Router struct {
	routing *RoleRouting
}

// NewRouter creates a router. Nil-safe: a nil routing table yields a no-op
// router that always returns the zero CLIConfig, leaving role-default
// resolution to internal/config's RoleDefaults.
func NewRouter(routing *RoleRouting) *Router {
	return &Router{routing: routing}
}

// ForRole returns the CLIConfig override for role, or Default if none is
// configured.
func (r *Router) ForRole(role string) CLIConfig {
	if r.routing == nil {
		return CLIConfig{}
	}
	if r.routing.Overrides != nil {
		if cfg, ok := r.routing.Overrides[role]; ok {
			return cfg
		}
	}
	return r.routing.Default
}

// IsConfigured reports whether the router carries any usable routing
// (a non-empty default or at least one override).
func (r *Router) IsConfigured() bool {
	if r.routing == nil {
		return false
	}
	return r.routing.Default.CLI != "" || r.routing.Default.Model != "" || len(r.routing.Overrides) > 0
}

// CLIs returns the set of unique CLI names referenced across Default and
// Overrides, used by the controller to confirm every referenced CLI is in
// the registry allowlist upfront, before any agent is spawned.
func (r *Router) CLIs() []string {
	if r.routing == nil {
		return nil
	}

	seen := make(map[string]bool)
	if r.routing.Default.CLI != "" {
		seen[r.routing.Default.CLI] = true
	}
	for _, cfg := range r.routing.Overrides {
		if cfg.CLI != "" {
			seen[cfg.CLI] = true
		}
	}

	clis := make([]string, 0, len(seen))
	for name := range seen {
		clis = append(clis, name)
	}
	return clis
}
