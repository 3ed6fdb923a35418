package handler

import (
	"errors"
	"strings"

	"property-crm/internal/store"
	"property-crm/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// CollectionHandler serves list/get/create/update/delete for one store
// collection.
type CollectionHandler[T any, P store.Record[T]] struct {
	store *store.Store
	kind  store.Kind[T, P]
	label string
	// search returns the text a ?search= query is matched against.
	search func(*T) []string
}

func NewCollectionHandler[T any, P store.Record[T]](s *store.Store, kind store.Kind[T, P], label string, search func(*T) []string) *CollectionHandler[T, P] {
	return &CollectionHandler[T, P]{
		store:  s,
		kind:   kind,
		label:  label,
		search: search,
	}
}

// Register mounts the CRUD routes on router.
func (h *CollectionHandler[T, P]) Register(router fiber.Router) {
	router.Get("/", h.List)
	router.Get("/:id", h.Get)
	router.Post("/", h.Create)
	router.Put("/:id", h.Update)
	router.Delete("/:id", h.Delete)
}

func (h *CollectionHandler[T, P]) List(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)

	items := store.All(h.store, h.kind)
	if params.Search != "" && h.search != nil {
		items = filterItems(items, params.Search, h.search)
	}

	page, pagination := utils.Paginate(items, params)
	responseData := fiber.Map{
		h.kind.Name:  page,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, h.label+" records retrieved successfully", responseData, pagination)
}

func (h *CollectionHandler[T, P]) Get(c *fiber.Ctx) error {
	item, err := store.Find(h.store, h.kind, c.Params("id"))
	if err != nil {
		return storeError(c, err, h.label)
	}
	return utils.SuccessResponse(c, h.label+" retrieved successfully", item)
}

func (h *CollectionHandler[T, P]) Create(c *fiber.Ctx) error {
	item, ok, err := parseBody[T](c)
	if !ok {
		return err
	}

	stored, err := store.Insert(c.UserContext(), h.store, h.kind, item)
	if err != nil {
		return storeError(c, err, h.label)
	}
	return utils.CreatedResponse(c, h.label+" created successfully", stored)
}

func (h *CollectionHandler[T, P]) Update(c *fiber.Ctx) error {
	item, ok, err := parseBody[T](c)
	if !ok {
		return err
	}

	// The id outlives the request, so it must not alias fiber's buffers.
	id := strings.Clone(c.Params("id"))
	stored, err := store.Replace(c.UserContext(), h.store, h.kind, id, item)
	if err != nil {
		return storeError(c, err, h.label)
	}
	return utils.SuccessResponse(c, h.label+" updated successfully", stored)
}

func (h *CollectionHandler[T, P]) Delete(c *fiber.Ctx) error {
	if err := store.Remove(c.UserContext(), h.store, h.kind, c.Params("id")); err != nil {
		return storeError(c, err, h.label)
	}
	return utils.SuccessResponse(c, h.label+" deleted successfully", nil)
}

// parseBody decodes and validates a request body. When ok is false the error
// response has already been written and err is what the handler returns.
func parseBody[T any](c *fiber.Ctx) (item T, ok bool, err error) {
	if err := c.BodyParser(&item); err != nil {
		return item, false, utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields := utils.ValidateStruct(item); fields != nil {
		return item, false, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  fields,
		})
	}
	return item, true, nil
}

func storeError(c *fiber.Ctx, err error, label string) error {
	if errors.Is(err, store.ErrNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, label+" not found", nil)
	}
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save "+strings.ToLower(label), err)
}

func filterItems[T any](items []T, query string, fields func(*T) []string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(items))
	for i := range items {
		for _, f := range fields(&items[i]) {
			if strings.Contains(strings.ToLower(f), query) {
				out = append(out, items[i])
				break
			}
		}
	}
	return out
}
