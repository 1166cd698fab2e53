package api

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts all entity routes under /api.
func RegisterRoutes(app *fiber.App, users *UsersHandler, groups *GroupsHandler, memberships *MembershipsHandler) {
	root := app.Group("/api")

	u := root.Group("/users")
	u.Post("/", users.Create)
	u.Get("/:id", users.GetByID)
	u.Get("/", users.List)
	u.Put("/:id", users.Update)
	u.Delete("/:id", users.Delete)

	g := root.Group("/groups")
	g.Post("/", groups.Create)
	g.Get("/:id", groups.GetByID)
	g.Get("/", groups.List)
	g.Put("/:id", groups.Update)
	g.Delete("/:id", groups.Delete)

	m := root.Group("/user-groups")
	m.Post("/join", memberships.Join)
	m.Delete("/leave", memberships.Leave)
	m.Get("/group/:group_id/users", memberships.UsersInGroup)
	m.Get("/user/:user_id/groups", memberships.GroupsForUser)
}

// parseID reads a positive integer route parameter.
func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id < 1 {
		return 0, InvalidPayloadError(fmt.Sprintf("Invalid %s parameter", param))
	}
	return id, nil
}
