package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Groups with elevated access.
const (
	GroupAdmins    = "admins"
	GroupAssessors = "assessors"
)

// Path prefixes covered by the access rules.
const (
	AssessmentsPrefix   = "assessments/"
	QuestionnairePrefix = "questionnaire/"
)

// Action is an operation on an object.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// Identity is the authenticated caller.
type Identity struct {
	ID     string
	Groups []string
}

// InGroup reports whether the identity belongs to group.
func (i Identity) InGroup(group string) bool {
	return slices.Contains(i.Groups, group)
}

// ForbiddenError is returned when an identity may not perform an action.
type ForbiddenError struct {
	Identity string
	Action   Action
	Path     string
}

func (e *ForbiddenError) Error() string {
	who := e.Identity
	if who == "" {
		who = "anonymous"
	}
	return fmt.Sprintf("%s may not %s %q", who, e.Action, e.Path)
}

// Allowed reports whether id may perform action on path.
//
//	assessments/{identity}/*  owner, admins and assessors: read, write, delete
//	questionnaire/*           admins: read, write, delete; assessors: read
//	anything else             denied
func Allowed(id Identity, action Action, path string) bool {
	if !cleanPath(path) {
		return false
	}
	switch {
	case strings.HasPrefix(path, AssessmentsPrefix):
		if id.InGroup(GroupAdmins) || id.InGroup(GroupAssessors) {
			return true
		}
		owner, _, found := strings.Cut(strings.TrimPrefix(path, AssessmentsPrefix), "/")
		return found && id.ID != "" && owner == id.ID
	case strings.HasPrefix(path, QuestionnairePrefix):
		if id.InGroup(GroupAdmins) {
			return true
		}
		return action == ActionRead && id.InGroup(GroupAssessors)
	default:
		return false
	}
}

func cleanPath(path string) bool {
	if path == "" || strings.HasPrefix(path, "/") {
		return false
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// GuardedBucket enforces the access rules for one identity.
type GuardedBucket struct {
	inner    Bucket
	identity Identity
}

// WithAccess wraps b so every call is checked against id.
func WithAccess(b Bucket, id Identity) *GuardedBucket {
	return &GuardedBucket{inner: b, identity: id}
}

func (g *GuardedBucket) check(action Action, path string) error {
	if Allowed(g.identity, action, path) {
		return nil
	}
	return &ForbiddenError{Identity: g.identity.ID, Action: action, Path: path}
}

func (g *GuardedBucket) Put(ctx context.Context, path, contentType string, data []byte) error {
	if err := g.check(ActionWrite, path); err != nil {
		return err
	}
	return g.inner.Put(ctx, path, contentType, data)
}

func (g *GuardedBucket) Get(ctx context.Context, path string) (*Object, error) {
	if err := g.check(ActionRead, path); err != nil {
		return nil, err
	}
	return g.inner.Get(ctx, path)
}

func (g *GuardedBucket) Delete(ctx context.Context, path string) error {
	if err := g.check(ActionDelete, path); err != nil {
		return err
	}
	return g.inner.Delete(ctx, path)
}

// List checks read access on prefix itself.
func (g *GuardedBucket) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := g.check(ActionRead, prefix); err != nil {
		return nil, err
	}
	return g.inner.List(ctx, prefix)
}
