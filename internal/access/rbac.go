package access

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"room-reservation/internal/config"
)

// Resources and actions checked by the admin browser
const (
	ResourceRooms        = "rooms"
	ResourceReservations = "reservations"
	ResourceAccessLog    = "access_log"

	RoleSuperuser = "superuser"

	ActionRead   = "read"
	ActionCreate = "create"
	ActionDelete = "delete"
)

//go:embed policy.yaml
var defaultPolicy []byte

type Permission struct {
	Resource string   `yaml:"resource"`
	Actions  []string `yaml:"actions"`
}

type Role struct {
	Description string       `yaml:"description"`
	Permissions []Permission `yaml:"permissions"`
}

type RBACPolicy struct {
	DefaultRole string          `yaml:"default_role"`
	Roles       map[string]Role `yaml:"roles"`
	Users       map[string]struct {
		Roles []string `yaml:"roles"`
	} `yaml:"users"`
	Inheritance map[string][]string `yaml:"inheritance"`
}

type RBAC struct {
	policy      *RBACPolicy
	userRoles   map[string][]string // username -> roles
	mu          sync.RWMutex
	policyCache map[string]map[string]bool // username -> "resource:action" -> allowed
}

func NewRBAC() *RBAC {
	return &RBAC{
		userRoles:   make(map[string][]string),
		policyCache: make(map[string]map[string]bool),
	}
}

// NewRBACFromFile loads the policy at path, or the built-in policy when path is empty.
func NewRBACFromFile(path string) (*RBAC, error) {
	r := NewRBAC()
	if path == "" {
		return r, r.LoadPolicyData(defaultPolicy)
	}
	return r, r.LoadPolicy(path)
}

// NewRBACFromConfig loads the configured policy and grants the superuser role
// to every user listed in cfg.Superusers.
func NewRBACFromConfig(cfg config.RBACConfig) (*RBAC, error) {
	r, err := NewRBACFromFile(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}

	superusers := cfg.SuperuserList()
	if len(superusers) > 0 {
		if _, ok := r.policy.Roles[RoleSuperuser]; !ok {
			return nil, fmt.Errorf("policy has no %q role", RoleSuperuser)
		}
	}
	for _, username := range superusers {
		r.AssignRole(username, RoleSuperuser)
	}
	return r, nil
}

// LoadPolicy loads RBAC policy from YAML file
func (r *RBAC) LoadPolicy(filepath string) error {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("failed to read policy file: %w", err)
	}
	return r.LoadPolicyData(data)
}

func (r *RBAC) LoadPolicyData(data []byte) error {
	var policy RBACPolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return fmt.Errorf("failed to parse policy file: %w", err)
	}
	if policy.DefaultRole != "" {
		if _, ok := policy.Roles[policy.DefaultRole]; !ok {
			return fmt.Errorf("default role %q is not defined", policy.DefaultRole)
		}
	}

	r.mu.Lock()
	r.policy = &policy
	// Load user role assignments from policy
	r.userRoles = make(map[string][]string)
	for username, userData := range policy.Users {
		r.userRoles[username] = userData.Roles
	}
	r.policyCache = make(map[string]map[string]bool) // Clear cache
	r.mu.Unlock()

	slog.Info("RBAC policy loaded", "roles", len(policy.Roles), "users", len(policy.Users))
	return nil
}

// AssignRole assigns one or more roles to a user
func (r *RBAC) AssignRole(username string, roles ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, role := range roles {
		if !slices.Contains(r.userRoles[username], role) {
			r.userRoles[username] = append(r.userRoles[username], role)
		}
	}
	delete(r.policyCache, username) // Invalidate cache for this user

	slog.Debug("Roles assigned", "username", username, "roles", roles)
}

// GetUserRoles returns all roles for a user (including inherited)
func (r *RBAC) GetUserRoles(username string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userRolesLocked(username)
}

// userRolesLocked expects r.mu to be held.
func (r *RBAC) userRolesLocked(username string) []string {
	directRoles := r.userRoles[username]

	// If user has no roles and default role is defined, use default role
	if len(directRoles) == 0 && r.policy != nil && r.policy.DefaultRole != "" {
		directRoles = []string{r.policy.DefaultRole}
	}

	allRoles := make(map[string]bool)
	for _, role := range directRoles {
		allRoles[role] = true
		r.addInheritedRoles(role, allRoles)
	}

	result := make([]string, 0, len(allRoles))
	for role := range allRoles {
		result = append(result, role)
	}
	slices.Sort(result)
	return result
}

// addInheritedRoles recursively adds inherited roles
func (r *RBAC) addInheritedRoles(role string, roles map[string]bool) {
	if r.policy == nil || r.policy.Inheritance == nil {
		return
	}

	for _, inheritedRole := range r.policy.Inheritance[role] {
		if !roles[inheritedRole] {
			roles[inheritedRole] = true
			r.addInheritedRoles(inheritedRole, roles)
		}
	}
}

func (r *RBAC) allowed(roles []string, resource, action string) bool {
	for _, roleName := range roles {
		role, exists := r.policy.Roles[roleName]
		if !exists {
			continue
		}
		for _, perm := range role.Permissions {
			if perm.Resource != "*" && perm.Resource != resource {
				continue
			}
			if slices.Contains(perm.Actions, "*") || slices.Contains(perm.Actions, action) {
				return true
			}
		}
	}
	return false
}

// Can checks if a user can perform an action on a resource
func (r *RBAC) Can(username, resource, action string) bool {
	cacheKey := fmt.Sprintf("%s:%s", resource, action)

	r.mu.RLock()
	if r.policy == nil {
		r.mu.RUnlock()
		slog.Warn("RBAC policy not loaded")
		return false
	}
	if cache, exists := r.policyCache[username]; exists {
		if allowed, found := cache[cacheKey]; found {
			r.mu.RUnlock()
			return allowed
		}
	}
	allowed := r.allowed(r.userRolesLocked(username), resource, action)
	r.mu.RUnlock()

	// Cache the result
	r.mu.Lock()
	if r.policyCache[username] == nil {
		r.policyCache[username] = make(map[string]bool)
	}
	r.policyCache[username][cacheKey] = allowed
	r.mu.Unlock()

	return allowed
}
