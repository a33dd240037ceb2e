package models

import "time"

type Category string

const (
	CategoryLanaia    Category = "lanaia"
	CategoryOKGlacons Category = "ok-glacons"
)

func (c Category) Valid() bool {
	return c == CategoryLanaia || c == CategoryOKGlacons
}

type Product struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Category    Category  `gorm:"size:32;not null;index" json:"category"`
	Unit        string    `gorm:"size:32;not null" json:"unit"`
	Price       int64     `gorm:"not null" json:"price"`
	Image       string    `json:"image"`
	Available   int       `gorm:"not null;default:1" json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateProductRequest struct {
	ID          string   `json:"id" binding:"required,max=64"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Category    Category `json:"category" binding:"required"`
	Unit        string   `json:"unit" binding:"required"`
	Price       int64    `json:"price" binding:"gte=0"`
	Image       string   `json:"image"`
	Available   *int     `json:"available" binding:"omitempty,gte=0"`
}

type UpdateProductRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1"`
	Description *string   `json:"description"`
	Category    *Category `json:"category"`
	Unit        *string   `json:"unit" binding:"omitempty,min=1"`
	Price       *int64    `json:"price" binding:"omitempty,gte=0"`
	Image       *string   `json:"image"`
	Available   *int      `json:"available" binding:"omitempty,gte=0"`
}

type ImageUploadRequest struct {
	ContentType string `json:"contentType" binding:"required,oneof=image/jpeg image/png image/webp"`
}

// DefaultCatalog is the product range loaded into an empty database.
func DefaultCatalog() []Product {
	return []Product{
		{ID: "lanaia-tubes", Name: "Mouchoirs Lanaïa - Tubes", Category: CategoryLanaia, Unit: "tube", Price: 1000, Image: "/ImageLanaia1.jpg",
			Description: "Mouchoirs doux et résistants en tubes pratiques, disponibles en 5 couleurs élégantes."},
		{ID: "lanaia-paquets", Name: "Mouchoirs Lanaïa - Paquets", Category: CategoryLanaia, Unit: "paquet", Price: 500,
			Description: "Paquets familiaux de mouchoirs de qualité premium. Idéal pour la maison."},
		{ID: "lanaia-poches", Name: "Mouchoirs Lanaïa - Poches", Category: CategoryLanaia, Unit: "poche", Price: 100,
			Description: "Pochettes individuelles pratiques à emporter partout. Hygiène et confort garantis."},
		{ID: "glacons-verres", Name: "Verres de Glaçons", Category: CategoryOKGlacons, Unit: "verre", Price: 500, Image: "/product-cup.jpg",
			Description: "Des verres entièrement en glace pour une expérience unique et mémorable."},
		{ID: "glacons-5kg", Name: "Glaçons (Sac 5kg)", Category: CategoryOKGlacons, Unit: "sac", Price: 1000,
			Description: "Glaçons de qualité premium, parfaits pour toutes vos boissons."},
		{ID: "blocs-ancienne", Name: "Blocs à l'ancienne", Category: CategoryOKGlacons, Unit: "unité", Price: 100,
			Description: "Blocs de glace massifs pour conservation longue durée. Idéal pour événements et professionnels."},
		{ID: "glace-carbonique", Name: "Glace Carbonique", Category: CategoryOKGlacons, Unit: "kg", Price: 7000,
			Description: "Glace sèche de haute qualité pour transport frigorifique et effets spéciaux."},
	}
}
