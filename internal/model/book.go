package model

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a title in the catalogue. The catalogue is read-only from
// this service's point of view; prices are integer currency units.
type Book struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"`
	CoverURL  string    `json:"coverUrl" db:"cover_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
