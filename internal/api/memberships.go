package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// MembershipStore is the repository surface the membership handlers need.
type MembershipStore interface {
	Add(ctx context.Context, userID, groupID int64) (bool, error)
	Remove(ctx context.Context, userID, groupID int64) (bool, error)
	ListUsersInGroup(ctx context.Context, groupID int64) ([]int64, error)
	ListGroupsForUser(ctx context.Context, userID int64) ([]int64, error)
}

type MembershipsHandler struct {
	memberships MembershipStore
}

func NewMembershipsHandler(memberships MembershipStore) *MembershipsHandler {
	return &MembershipsHandler{memberships: memberships}
}

// Join handles POST /api/user-groups/join. A duplicate pair makes Add
// report false, which surfaces as 400; a nonexistent user or group is a
// foreign key violation and falls through to the terminal handler.
func (h *MembershipsHandler) Join(c *fiber.Ctx) error {
	var payload MembershipPayload
	if err := c.BodyParser(&payload); err != nil {
		return InvalidPayloadError("Invalid JSON body")
	}
	if details := checkPayload(&payload); details != nil {
		return ValidationError(details)
	}

	added, err := h.memberships.Add(c.Context(), payload.UserID, payload.GroupID)
	if err != nil {
		return err
	}
	if !added {
		return OperationFailedError("Failed to add user to group")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User added to group successfully"})
}

// Leave handles DELETE /api/user-groups/leave
func (h *MembershipsHandler) Leave(c *fiber.Ctx) error {
	var payload MembershipPayload
	if err := c.BodyParser(&payload); err != nil {
		return InvalidPayloadError("Invalid JSON body")
	}
	if details := checkPayload(&payload); details != nil {
		return ValidationError(details)
	}

	removed, err := h.memberships.Remove(c.Context(), payload.UserID, payload.GroupID)
	if err != nil {
		return err
	}
	if !removed {
		return OperationFailedError("Failed to remove user from group")
	}
	return c.JSON(fiber.Map{"message": "User removed from group successfully"})
}

// UsersInGroup handles GET /api/user-groups/group/:group_id/users
func (h *MembershipsHandler) UsersInGroup(c *fiber.Ctx) error {
	groupID, err := parseID(c, "group_id")
	if err != nil {
		return err
	}

	ids, err := h.memberships.ListUsersInGroup(c.Context(), groupID)
	if err != nil {
		return err
	}
	return c.JSON(ids)
}

// GroupsForUser handles GET /api/user-groups/user/:user_id/groups
func (h *MembershipsHandler) GroupsForUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}

	ids, err := h.memberships.ListGroupsForUser(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(ids)
}
