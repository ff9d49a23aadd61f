// Package identity binds the console to the /api/auth/users resource used
// by the user administration screen.
package identity

import (
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/console/internal/controller"
	"github.com/hms/console/internal/rest"
	"github.com/hms/console/internal/view"
)

// Room is the live channel room carrying user administration hints.
const Room = "dashboard"

// User is one account as the auth service returns it.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"` // admin, doctor, nurse, user, patient
	CreatedAt time.Time `json:"createdAt"`
}

// Fields describes the user administration screen's columns.
func Fields() view.Fields[User] {
	return view.Fields[User]{
		Text: map[string]func(User) string{
			"search": func(u User) string { return u.Name + " " + u.Email },
		},
		Exact: map[string]func(User) string{
			"role": func(u User) string { return u.Role },
		},
		Sort: map[string]view.Comparator[User]{
			"name":      view.StringKey(func(u User) string { return u.Name }),
			"email":     view.StringKey(func(u User) string { return u.Email }),
			"createdAt": view.TimeKey(func(u User) time.Time { return u.CreatedAt }),
		},
	}
}

// New creates the user administration controller. roles scopes the
// server-side query (e.g. "user", "patient"); the wrapped list arrives
// under "users".
func New(api *rest.Client, roles []string, logger zerolog.Logger) *controller.Controller[User] {
	src := rest.NewResource[User](api, "auth/users", "users")
	if len(roles) > 0 {
		src = src.WithQuery(url.Values{"roles": {strings.Join(roles, ",")}})
	}
	return controller.New[User](src,
		controller.WithFields[User](Fields()),
		controller.WithDefaultSort[User](view.SortState{Key: "createdAt", Direction: view.Descending}),
		controller.WithReloadOn[User]("dashboard-update"),
		controller.WithLogger[User](logger),
	)
}
