package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tungkyap/storage-management/internal/model"
	"github.com/tungkyap/storage-management/internal/repository"
)

var (
	ErrItemNotFound       = errors.New("item not found")
	ErrNameRequired       = errors.New("name is required")
	ErrNegativeQuantity   = errors.New("quantity must not be negative")
	ErrNegativeStockLevel = errors.New("minimum stock level must not be negative")
)

// CreateItemInput holds the fields accepted when creating an item.
type CreateItemInput struct {
	Name              string
	Description       string
	Quantity          int
	Location          string
	Category          string
	AssignedTo        string
	MinimumStockLevel *int
	ImageURL          string
}

// UpdateItemInput holds a partial update; nil fields keep the stored value.
type UpdateItemInput struct {
	Name              *string
	Description       *string
	Quantity          *int
	Location          *string
	Category          *string
	AssignedTo        *string
	MinimumStockLevel *int
	ImageURL          *string
}

// ItemService defines the use cases of the item lifecycle.
type ItemService interface {
	// Create stores a new item, uploading the optional image first and
	// computing the low-stock flag from the resolved quantity and threshold.
	Create(ctx context.Context, in CreateItemInput, image *UploadInput) (*model.Item, error)

	// List returns all items.
	List(ctx context.Context) ([]model.Item, error)

	// Get returns a single item by its ID.
	Get(ctx context.Context, id string) (*model.Item, error)

	// Update applies a partial update, replacing the stored image when a new
	// one is supplied (the previous image is deleted best-effort, exactly once,
	// and only when one was recorded).
	Update(ctx context.Context, id string, in UpdateItemInput, image *UploadInput) (*model.Item, error)

	// Delete removes an item and best-effort deletes its stored image,
	// returning the deleted record.
	Delete(ctx context.Context, id string) (*model.Item, error)

	// FindByCategory returns items matching the category exactly.
	FindByCategory(ctx context.Context, category string) ([]model.Item, error)

	// FindLowStock returns the live low-stock set, computed by the store
	// independently of the persisted flag.
	FindLowStock(ctx context.Context) ([]model.Item, error)

	// Summary returns aggregate inventory counters.
	Summary(ctx context.Context) (*model.InventorySummary, error)
}

// itemService is a concrete implementation of ItemService.
type itemService struct {
	repo  repository.ItemRepository
	files FileService
}

// NewItemService constructs a new ItemService.
func NewItemService(repo repository.ItemRepository, files FileService) ItemService {
	return &itemService{repo: repo, files: files}
}

func (s *itemService) Create(ctx context.Context, in CreateItemInput, image *UploadInput) (*model.Item, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrNameRequired
	}
	if in.Quantity < 0 {
		return nil, ErrNegativeQuantity
	}
	if in.MinimumStockLevel != nil && *in.MinimumStockLevel < 0 {
		return nil, ErrNegativeStockLevel
	}

	imageURL := in.ImageURL
	imagePublicID := ""
	if image != nil {
		// Item images are tracked through the item row itself, not a
		// duplicate file record.
		res, err := s.files.SaveFile(ctx, *image, false)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		imageURL = res.ImageURL
		imagePublicID = res.PublicID
	}

	item := &model.Item{
		ID:                uuid.New().String(),
		Name:              in.Name,
		Description:       in.Description,
		Quantity:          in.Quantity,
		Location:          in.Location,
		Category:          in.Category,
		AssignedTo:        in.AssignedTo,
		MinimumStockLevel: in.MinimumStockLevel,
		IsLowStock:        model.LowStock(in.Quantity, in.MinimumStockLevel),
		ImageURL:          imageURL,
		ImagePublicID:     imagePublicID,
	}
	return s.repo.Create(ctx, item)
}

func (s *itemService) List(ctx context.Context) ([]model.Item, error) {
	return s.repo.List(ctx)
}

func (s *itemService) Get(ctx context.Context, id string) (*model.Item, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *itemService) Update(ctx context.Context, id string, in UpdateItemInput, image *UploadInput) (*model.Item, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, ErrNameRequired
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return nil, ErrNegativeQuantity
	}
	if in.MinimumStockLevel != nil && *in.MinimumStockLevel < 0 {
		return nil, ErrNegativeStockLevel
	}

	imageURL := existing.ImageURL
	if in.ImageURL != nil && *in.ImageURL != "" {
		imageURL = *in.ImageURL
	}
	imagePublicID := existing.ImagePublicID

	if image != nil {
		res, err := s.files.SaveFile(ctx, *image, false)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		imageURL = res.ImageURL
		imagePublicID = res.PublicID
		if existing.ImagePublicID != "" {
			s.deleteStoredImage(ctx, existing.ID, existing.ImagePublicID)
		}
	}

	quantity := existing.Quantity
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	minStock := existing.MinimumStockLevel
	if in.MinimumStockLevel != nil {
		minStock = in.MinimumStockLevel
	}

	updated := &model.Item{
		ID:                existing.ID,
		Name:              strOr(in.Name, existing.Name),
		Description:       strOr(in.Description, existing.Description),
		Quantity:          quantity,
		Location:          strOr(in.Location, existing.Location),
		Category:          strOr(in.Category, existing.Category),
		AssignedTo:        strOr(in.AssignedTo, existing.AssignedTo),
		MinimumStockLevel: minStock,
		IsLowStock:        model.LowStock(quantity, minStock),
		ImageURL:          imageURL,
		ImagePublicID:     imagePublicID,
	}

	stored, err := s.repo.Update(ctx, updated)
	if err != nil {
		// The row can vanish between the load and the write; no
		// compare-and-swap is attempted, last write wins.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return stored, nil
}

func (s *itemService) Delete(ctx context.Context, id string) (*model.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.ImagePublicID != "" {
		s.deleteStoredImage(ctx, item.ID, item.ImagePublicID)
	} else if item.ImageURL != "" {
		// No recorded public id; derive one from the URL's last path segment
		// stripped of query string and extension.
		s.deleteStoredImage(ctx, item.ID, publicIDFromURL(item.ImageURL))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *itemService) FindByCategory(ctx context.Context, category string) ([]model.Item, error) {
	return s.repo.FindByCategory(ctx, category)
}

func (s *itemService) FindLowStock(ctx context.Context) ([]model.Item, error) {
	return s.repo.FindLowStock(ctx)
}

func (s *itemService) Summary(ctx context.Context) (*model.InventorySummary, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	lastUpdated := time.Now().UTC()
	if stats.LastUpdated != nil {
		lastUpdated = *stats.LastUpdated
	}
	return &model.InventorySummary{
		TotalItems:    stats.TotalItems,
		TotalStock:    stats.TotalStock,
		LowStockCount: stats.LowStockCount,
		LastUpdated:   lastUpdated,
	}, nil
}

// deleteStoredImage removes an item's stored image best-effort: failures are
// logged and never propagated to the caller.
func (s *itemService) deleteStoredImage(ctx context.Context, itemID, publicID string) {
	if err := s.files.DeleteObject(ctx, publicID); err != nil {
		logWarn(map[string]any{
			"component":     "items",
			"event":         "image_delete_failed",
			"item_id":       itemID,
			"public_id":     publicID,
			"error_message": err.Error(),
		})
	}
}

// publicIDFromURL derives a storage identifier from an image URL: the last
// path segment without query string, truncated at the first dot.
func publicIDFromURL(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	name := parts[len(parts)-1]
	if i := strings.Index(name, "?"); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}

func strOr(p *string, def string) string {
	if p != nil {
		return *p
	}
	return def
}

func logWarn(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	data["level"] = "warn"
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal service log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
