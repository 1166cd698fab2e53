package api

import (
	"context"
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"

	"user-management/internal/model"
	"user-management/internal/store"
)

// UserStore is the repository surface the user handlers need.
type UserStore interface {
	Create(ctx context.Context, u model.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, int64, error)
	Update(ctx context.Context, id int64, u model.User) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type UsersHandler struct {
	users UserStore
}

func NewUsersHandler(users UserStore) *UsersHandler {
	return &UsersHandler{users: users}
}

// Create handles POST /api/users
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var payload UserCreatePayload
	if err := c.BodyParser(&payload); err != nil {
		return InvalidPayloadError("Invalid JSON body")
	}
	if details := checkPayload(&payload); details != nil {
		return ValidationError(details)
	}

	id, err := h.users.Create(c.Context(), payload.toUser())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      id,
		"message": "User created successfully",
	})
}

// GetByID handles GET /api/users/:id
func (h *UsersHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.users.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError("User")
		}
		return err
	}
	return c.JSON(user)
}

// List handles GET /api/users?page&limit
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page, details := parsePagination(c)
	if details != nil {
		return ValidationError(details)
	}

	users, total, err := h.users.List(c.Context(), page.Limit, page.Offset())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"users":       users,
		"totalCount":  total,
		"totalPages":  int64(math.Ceil(float64(total) / float64(page.Limit))),
		"currentPage": page.Page,
	})
}

// Update handles PUT /api/users/:id
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var payload UserUpdatePayload
	if err := c.BodyParser(&payload); err != nil {
		return InvalidPayloadError("Invalid JSON body")
	}
	if details := checkPayload(&payload); details != nil {
		return ValidationError(details)
	}

	updated, err := h.users.Update(c.Context(), id, payload.toUser())
	if err != nil {
		return err
	}
	if !updated {
		return NotFoundError("User")
	}
	return c.JSON(fiber.Map{"message": "User updated successfully"})
}

// Delete handles DELETE /api/users/:id
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	deleted, err := h.users.Delete(c.Context(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return NotFoundError("User")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
