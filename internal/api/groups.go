package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"user-management/internal/model"
	"user-management/internal/repo"
	"user-management/internal/store"
)

// GroupStore is the repository surface the group handlers need.
type GroupStore interface {
	Create(ctx context.Context, g model.Group) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Group, error)
	List(ctx context.Context) ([]model.Group, error)
	Update(ctx context.Context, id int64, g model.Group) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type GroupsHandler struct {
	groups GroupStore
}

func NewGroupsHandler(groups GroupStore) *GroupsHandler {
	return &GroupsHandler{groups: groups}
}

// Create handles POST /api/groups. A name collision is reported as 409
// rather than the generic failure it used to be.
func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	var payload GroupCreatePayload
	if err := c.BodyParser(&payload); err != nil {
		return InvalidPayloadError("Invalid JSON body")
	}
	if details := checkPayload(&payload); details != nil {
		return ValidationError(details)
	}

	id, err := h.groups.Create(c.Context(), model.Group{Name: payload.Name})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateName) {
			return DuplicateNameError(payload.Name)
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      id,
		"message": "Group created successfully",
	})
}

// GetByID handles GET /api/groups/:id
func (h *GroupsHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	group, err := h.groups.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError("Group")
		}
		return err
	}
	return c.JSON(group)
}

// List handles GET /api/groups. No pagination: all groups are returned.
func (h *GroupsHandler) List(c *fiber.Ctx) error {
	groups, err := h.groups.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(groups)
}

// Update handles PUT /api/groups/:id
func (h *GroupsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var payload GroupUpdatePayload
	if err := c.BodyParser(&payload); err != nil {
		return InvalidPayloadError("Invalid JSON body")
	}
	if details := checkPayload(&payload); details != nil {
		return ValidationError(details)
	}

	updated, err := h.groups.Update(c.Context(), id, model.Group{Name: payload.Name})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateName) {
			return DuplicateNameError(payload.Name)
		}
		return err
	}
	if !updated {
		return NotFoundError("Group")
	}
	return c.JSON(fiber.Map{"message": "Group updated successfully"})
}

// Delete handles DELETE /api/groups/:id
func (h *GroupsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	deleted, err := h.groups.Delete(c.Context(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return NotFoundError("Group")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
