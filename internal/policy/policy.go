package policy

import (
	"fmt"

	"yamdb/internal/apperr"
)

type Action string

const (
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
)

type Resource string

const (
	ResourceCategory Resource = "category"
	ResourceGenre    Resource = "genre"
	ResourceWork     Resource = "work"
	ResourceReview   Resource = "review"
	ResourceComment  Resource = "comment"
	ResourceProfile  Resource = "profile"
	ResourceUsers    Resource = "users"
)

// Object is a fetched target whose ownership matters for the decision.
type Object interface {
	OwnerID() string
}

type requirement int

const (
	unsupported requirement = iota
	anyone
	authenticated
	adminOnly
	authorOrStaff
	ownerOnly
)

type rule map[Action]requirement

func readWrite(read, create, update, destroy requirement) rule {
	return rule{
		ActionList:          read,
		ActionRetrieve:      read,
		ActionCreate:        create,
		ActionUpdate:        update,
		ActionPartialUpdate: update,
		ActionDestroy:       destroy,
	}
}

var rules = map[Resource]rule{
	ResourceCategory: readWrite(anyone, adminOnly, unsupported, adminOnly),
	ResourceGenre:    readWrite(anyone, adminOnly, unsupported, adminOnly),
	ResourceWork:     readWrite(anyone, adminOnly, adminOnly, adminOnly),
	ResourceReview:   readWrite(anyone, authenticated, authorOrStaff, authorOrStaff),
	ResourceComment:  readWrite(anyone, authenticated, authorOrStaff, authorOrStaff),
	ResourceProfile:  readWrite(ownerOnly, unsupported, ownerOnly, unsupported),
	ResourceUsers:    readWrite(adminOnly, adminOnly, adminOnly, adminOnly),
}

func lookup(resource Resource, action Action) requirement {
	r, ok := rules[resource]
	if !ok {
		return unsupported
	}
	return r[action]
}

// Check is the coarse decision made before the target is loaded.
func Check(actor Actor, resource Resource, action Action) error {
	switch lookup(resource, action) {
	case anyone:
		return nil
	case authenticated, authorOrStaff, ownerOnly:
		if !actor.IsAuthenticated() {
			return errNotAuthenticated()
		}
		return nil
	case adminOnly:
		if !actor.IsAuthenticated() {
			return errNotAuthenticated()
		}
		if !actor.IsAdmin() {
			return apperr.Permission("you do not have permission to perform this action")
		}
		return nil
	default:
		return apperr.NotAllowed(fmt.Sprintf("%s is not supported on %s", action, resource))
	}
}

// CheckObject runs Check and then the ownership rule against a loaded target.
// It never allows something Check denies.
func CheckObject(actor Actor, resource Resource, action Action, obj Object) error {
	if err := Check(actor, resource, action); err != nil {
		return err
	}

	switch lookup(resource, action) {
	case authorOrStaff:
		if actor.IsStaff() || isOwner(actor, obj) {
			return nil
		}
		return apperr.Permission("only the author or a moderator can change this")
	case ownerOnly:
		if isOwner(actor, obj) {
			return nil
		}
		return apperr.Permission("you can only access your own profile")
	default:
		return nil
	}
}

// CanChangeRole guards role edits made through the self profile.
func CanChangeRole(actor Actor) error {
	if !actor.IsAuthenticated() {
		return errNotAuthenticated()
	}
	if !actor.IsAdmin() {
		return apperr.Permission("only an admin can change roles")
	}
	return nil
}

func isOwner(actor Actor, obj Object) bool {
	return obj != nil && actor.IsAuthenticated() && obj.OwnerID() != "" && obj.OwnerID() == actor.UserID()
}

func errNotAuthenticated() error {
	return apperr.Authentication("authentication credentials were not provided")
}
