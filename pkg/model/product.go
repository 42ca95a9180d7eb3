package model

import (
	"math"
	"time"
)

var ProductCategories = []string{
	"Food & Treats",
	"Toys & Entertainment",
	"Health & Wellness",
	"Grooming Supplies",
	"Accessories",
	"Beds & Furniture",
	"Feeding Supplies",
	"Training Aids",
	"Travel & Outdoor",
	"Clothing & Fashion",
	"Aquarium Supplies",
	"Bird Supplies",
}

var (
	ProductPetTypes = []string{"Dog", "Cat", "Bird", "Fish", "Rabbit", "Hamster", "All"}
	ProductSizes    = []string{"XS", "S", "M", "L", "XL", "One Size"}
	AgeGroups       = []string{"Puppy/Kitten", "Adult", "Senior", "All Ages"}
)

const (
	StockOut = "Out of Stock"
	StockLow = "Low Stock"
	StockIn  = "In Stock"

	LowStockThreshold = 5
)

type ProductImage struct {
	URL string `json:"url" bson:"url" validate:"required,url"`
	Alt string `json:"alt,omitempty" bson:"alt,omitempty" validate:"max=200"`
}

type NutritionalInfo struct {
	Protein  string `json:"protein,omitempty" bson:"protein,omitempty"`
	Fat      string `json:"fat,omitempty" bson:"fat,omitempty"`
	Fiber    string `json:"fiber,omitempty" bson:"fiber,omitempty"`
	Moisture string `json:"moisture,omitempty" bson:"moisture,omitempty"`
}

type Product struct {
	ID                      string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name                    string          `json:"name" bson:"name" validate:"required,max=200"`
	Description             string          `json:"description" bson:"description" validate:"required,max=2000"`
	Category                string          `json:"category" bson:"category" validate:"required,product_category"`
	Brand                   string          `json:"brand,omitempty" bson:"brand,omitempty" validate:"max=100"`
	Price                   float64         `json:"price" bson:"price" validate:"min=0"`
	OriginalPrice           float64         `json:"original_price,omitempty" bson:"original_price,omitempty" validate:"min=0"`
	Stock                   int             `json:"stock" bson:"stock" validate:"min=0"`
	Images                  []ProductImage  `json:"images" bson:"images" validate:"dive"`
	AvailableFor            []string        `json:"available_for" bson:"available_for" validate:"dive,product_pet_type"`
	Size                    string          `json:"size,omitempty" bson:"size,omitempty" validate:"omitempty,product_size"`
	Weight                  string          `json:"weight,omitempty" bson:"weight,omitempty" validate:"max=50"`
	AgeGroup                string          `json:"age_group,omitempty" bson:"age_group,omitempty" validate:"omitempty,age_group"`
	Features                []string        `json:"features" bson:"features"`
	Ingredients             []string        `json:"ingredients" bson:"ingredients"`
	NutritionalInfo         NutritionalInfo `json:"nutritional_info" bson:"nutritional_info"`
	Colors                  []string        `json:"colors" bson:"colors"`
	Rating                  float64         `json:"rating" bson:"rating" validate:"min=0,max=5"`
	ReviewCount             int             `json:"review_count" bson:"review_count" validate:"min=0"`
	Tags                    []string        `json:"tags" bson:"tags"`
	IsFeatured              bool            `json:"is_featured" bson:"is_featured"`
	IsOnSale                bool            `json:"is_on_sale" bson:"is_on_sale"`
	InStock                 bool            `json:"in_stock" bson:"in_stock"`
	IsActive                bool            `json:"is_active" bson:"is_active"`
	VeterinarianRecommended bool            `json:"veterinarian_recommended" bson:"veterinarian_recommended"`
	PopularityScore         int             `json:"popularity_score" bson:"popularity_score" validate:"min=0"`
	CreatedAt               time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at" bson:"updated_at"`
}

// DiscountPercentage is the rounded saving against OriginalPrice, 0 when there is none.
func (p *Product) DiscountPercentage() int {
	if p.OriginalPrice > 0 && p.OriginalPrice > p.Price {
		return int(math.Round((p.OriginalPrice - p.Price) / p.OriginalPrice * 100))
	}
	return 0
}

func (p *Product) StockStatus() string {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock < LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

type StarRating struct {
	Full  int
	Half  int
	Empty int
}

func (p *Product) StarRating() StarRating {
	full := int(math.Floor(p.Rating))
	half := 0
	if p.Rating-float64(full) >= 0.5 {
		half = 1
	}
	return StarRating{Full: full, Half: half, Empty: 5 - full - half}
}

func (p *Product) PrimaryImage() *ProductImage {
	if len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}
