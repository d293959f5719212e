package domain

import "time"

// Factory status values.
const (
	FactoryStatusActive   = "active"
	FactoryStatusInactive = "inactive"
)

// Category groups factories.
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CategoryRef is the id+name pair embedded in factory responses.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Factory is the central aggregate of the catalog, owning products and
// pictures.
type Factory struct {
	ID                 int64     `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	Location           string    `json:"location" db:"location"`
	Address            string    `json:"address" db:"address"`
	Phone              string    `json:"phone" db:"phone"`
	Email              string    `json:"email" db:"email"`
	Certification      string    `json:"certification" db:"certification"`
	ProductionCapacity string    `json:"productionCapacity" db:"production_capacity"`
	Description        string    `json:"description" db:"description"`
	RecommendedReason  string    `json:"recommendedReason" db:"recommended_reason"`
	VideoLink          string    `json:"videoLink" db:"video_link"`
	MainImage          string    `json:"mainImage" db:"main_image"`
	Status             string    `json:"status" db:"status"`
	CategoryID         int64     `json:"categoryId" db:"category_id"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`

	Category *CategoryRef `json:"category,omitempty"`
}

// FactoryDetail is a factory with its owned products and pictures, returned
// by the single-factory lookup.
type FactoryDetail struct {
	Factory
	Products []*Product `json:"products"`
	Pictures []*Picture `json:"pictures"`
}

// FactoryRef is the id+name pair embedded in product and picture responses.
type FactoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product belongs to a factory.
type Product struct {
	ID        int64   `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Price     float64 `json:"price" db:"price"`
	FactoryID int64   `json:"factoryId" db:"factory_id"`

	Factory *FactoryRef `json:"factory,omitempty"`
}

// Picture is an uploaded image attached to a factory.
type Picture struct {
	ID        int64  `json:"id" db:"id"`
	URL       string `json:"url" db:"url"`
	FactoryID int64  `json:"factoryId" db:"factory_id"`

	Factory *FactoryRef `json:"factory,omitempty"`
}
