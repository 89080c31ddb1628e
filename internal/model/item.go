package model

import "time"

// Item represents a tracked inventory item.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
//
// MinimumStockLevel is a pointer: nil means no threshold is configured, which
// always yields IsLowStock == false.
type Item struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Quantity          int       `json:"quantity"`
	Location          string    `json:"location,omitempty"`
	Category          string    `json:"category,omitempty"`
	AssignedTo        string    `json:"assignedTo,omitempty"`
	MinimumStockLevel *int      `json:"minimumStockLevel,omitempty"`
	IsLowStock        bool      `json:"isLowStock"`
	ImageURL          string    `json:"imageUrl,omitempty"`
	ImagePublicID     string    `json:"imagePublicId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// LowStock reports whether quantity is at or below a configured minimum stock
// level. Items without a threshold are never low on stock.
func LowStock(quantity int, minimumStockLevel *int) bool {
	return minimumStockLevel != nil && quantity <= *minimumStockLevel
}

// InventorySummary is the aggregate view over all items.
type InventorySummary struct {
	TotalItems    int       `json:"totalItems"`
	TotalStock    int       `json:"totalStock"`
	LowStockCount int       `json:"lowStockCount"`
	LastUpdated   time.Time `json:"lastUpdated"`
}
