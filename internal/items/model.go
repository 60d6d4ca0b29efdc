// Package items manages the catalog items a company sells. Quote and
// invoice lines may reference an item; the reference is optional and used
// to enrich derived documents with the catalog name and description.
package items

import "time"

// Item is a catalog entry owned by a company.
type Item struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    *string   `json:"category,omitempty"`
	IsService   bool      `json:"is_service"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateItemRequest is the payload for creating or replacing an item.
type CreateItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price" validate:"gte=0"`
	Category    *string `json:"category,omitempty"`
	IsService   bool    `json:"is_service"`
}
