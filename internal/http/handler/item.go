package handler

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tungkyap/storage-management/internal/config"
	"github.com/tungkyap/storage-management/internal/service"
)

// CreateItem handles POST /items (multipart: fields + optional `image` file).
func CreateItem(svc service.ItemService, policy config.UploadPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.FormValue("name")
		if name == "" {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "name is required")
		}

		qtyValue := c.FormValue("quantity")
		if qtyValue == "" {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "quantity is required")
		}
		qty, err := strconv.Atoi(qtyValue)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_QUANTITY", "quantity must be an integer")
		}

		var minStock *int
		if v := c.FormValue("minimumStockLevel"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_STOCK_LEVEL", "minimumStockLevel must be an integer")
			}
			minStock = &n
		}

		in := service.CreateItemInput{
			Name:              name,
			Description:       c.FormValue("description"),
			Quantity:          qty,
			Location:          c.FormValue("location"),
			Category:          c.FormValue("category"),
			AssignedTo:        c.FormValue("assignedTo"),
			MinimumStockLevel: minStock,
			ImageURL:          c.FormValue("imageUrl"),
		}

		image, imgFile, err := optionalImage(c, policy)
		if err != nil {
			return err
		}
		if imgFile != nil {
			defer imgFile.Close()
		}

		item, err := svc.Create(c.UserContext(), in, image)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// ListItems handles GET /items.
func ListItems(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(items)
	}
}

// GetItem handles GET /items/:id.
func GetItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(item)
	}
}

// UpdateItem handles PATCH /items/:id (multipart: partial fields + optional `image`).
func UpdateItem(svc service.ItemService, policy config.UploadPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart form-data required")
		}

		in := service.UpdateItemInput{
			Name:        formValue(form, "name"),
			Description: formValue(form, "description"),
			Location:    formValue(form, "location"),
			Category:    formValue(form, "category"),
			AssignedTo:  formValue(form, "assignedTo"),
			ImageURL:    formValue(form, "imageUrl"),
		}
		if v := formValue(form, "quantity"); v != nil {
			n, err := strconv.Atoi(*v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_QUANTITY", "quantity must be an integer")
			}
			in.Quantity = &n
		}
		if v := formValue(form, "minimumStockLevel"); v != nil {
			n, err := strconv.Atoi(*v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_STOCK_LEVEL", "minimumStockLevel must be an integer")
			}
			in.MinimumStockLevel = &n
		}

		image, imgFile, err := optionalImage(c, policy)
		if err != nil {
			return err
		}
		if imgFile != nil {
			defer imgFile.Close()
		}

		item, err := svc.Update(c.UserContext(), c.Params("id"), in, image)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(item)
	}
}

// DeleteItem handles DELETE /items/:id and returns the deleted record.
func DeleteItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item, err := svc.Delete(c.UserContext(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(item)
	}
}

// ListItemsByCategory handles GET /items/category/:category.
func ListItemsByCategory(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.FindByCategory(c.UserContext(), c.Params("category"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(items)
	}
}

// ListLowStockItems handles GET /items/low-stock.
func ListLowStockItems(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.FindLowStock(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(items)
	}
}

// GetInventorySummary handles GET /items/summary.
func GetInventorySummary(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := svc.Summary(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(summary)
	}
}

// optionalImage extracts and validates the optional `image` multipart file.
// A non-nil error is an already-written policy or I/O rejection response.
func optionalImage(c *fiber.Ctx, policy config.UploadPolicy) (*service.UploadInput, multipart.File, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		// No image attached.
		return nil, nil, nil
	}
	if rejected := checkUploadPolicy(c, fh, policy, policy.AllowedImageTypes); rejected != nil {
		return nil, nil, rejected
	}
	up, f, err := openUpload(fh)
	if err != nil {
		return nil, nil, writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
	}
	return up, f, nil
}

func formValue(form *multipart.Form, key string) *string {
	if vs, ok := form.Value[key]; ok && len(vs) > 0 {
		v := vs[0]
		return &v
	}
	return nil
}
