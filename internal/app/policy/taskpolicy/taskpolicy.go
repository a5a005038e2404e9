// internal/app/policy/taskpolicy/taskpolicy.go
package taskpolicy

import (
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the resolved identity an operation runs as.
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// ActorFromRequest reads the signed-in user placed on the request by the
// bearer middleware. ok is false for anonymous requests.
func ActorFromRequest(r *http.Request) (Actor, bool) {
	role, uid, ok := authz.UserCtx(r)
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: uid, Role: role}, true
}

// CanManageTasks gates create, list-all, assign and delete.
func CanManageTasks(a Actor) bool {
	return a.IsAdmin()
}

// CanViewComments reports whether the actor may read a task's thread:
// admins always can, otherwise only assignees.
func CanViewComments(a Actor, t models.Task) bool {
	return a.IsAdmin() || t.IsAssigned(a.ID)
}

// CanComment: any authenticated user may comment on any task.
func CanComment(a Actor, _ models.Task) bool {
	return !a.ID.IsZero()
}

// CanUpdateStatus: any authenticated user may change any task's status, so
// the task itself is not consulted.
func CanUpdateStatus(a Actor) bool {
	return !a.ID.IsZero()
}
