// Package clients manages the client records a company bills against.
// Documents reference clients for display names; the engines themselves
// never enforce that a referenced client exists.
package clients

import "time"

// Client is a billable party owned by a company.
type Client struct {
	ID            int64     `json:"id"`
	CompanyID     int64     `json:"company_id"`
	Name          string    `json:"name"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Address       *string   `json:"address,omitempty"`
	TaxID         *string   `json:"tax_id,omitempty"`
	ClientCompany *string   `json:"client_company,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateClientRequest is the payload for creating or replacing a client.
type CreateClientRequest struct {
	Name          string  `json:"name" validate:"required"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
	TaxID         *string `json:"tax_id,omitempty"`
	ClientCompany *string `json:"client_company,omitempty"`
}
