// Package catalog holds the listing filters and sort orders shared by the service
// and product catalogs.
package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"petcare/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortRating    = "rating"
	SortNewest    = "newest"
	SortPopular   = "popular"

	// PetTypeAll matches items offered for every pet type.
	PetTypeAll = "All"
)

type Filter struct {
	Category string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	PetType  string
	OnSale   bool
	InStock  bool
	Sort     string
}

// FilterFromQuery reads category, search, minPrice, maxPrice, pet, onSale, inStock and sort.
// Prices that do not parse are ignored.
func FilterFromQuery(q url.Values) Filter {
	f := Filter{
		Category: sanitizer.TrimAndNormalize(q.Get("category")),
		Search:   sanitizer.TrimAndNormalize(q.Get("search")),
		PetType:  sanitizer.TrimAndNormalize(q.Get("pet")),
		OnSale:   q.Get("onSale") == "true",
		InStock:  q.Get("inStock") == "true",
		Sort:     strings.TrimSpace(q.Get("sort")),
	}
	f.MinPrice = parsePrice(q.Get("minPrice"))
	f.MaxPrice = parsePrice(q.Get("maxPrice"))
	return f
}

func parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// Query builds the Mongo filter. Only active items are ever listed.
func (f Filter) Query() bson.M {
	query := bson.M{"is_active": true}

	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Search != "" {
		query["$text"] = bson.M{"$search": f.Search}
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	if f.PetType != "" {
		query["available_for"] = bson.M{"$in": []string{f.PetType, PetTypeAll}}
	}
	if f.OnSale {
		query["is_on_sale"] = true
	}
	if f.InStock {
		query["in_stock"] = true
	}
	return query
}

// SortOrder maps the sort key to a Mongo sort document. Rating is honoured only
// when the catalog has ratings. Searches without an explicit order rank by text score.
func (f Filter) SortOrder(hasRating bool) bson.D {
	switch f.Sort {
	case SortPriceLow:
		return bson.D{{Key: "price", Value: 1}}
	case SortPriceHigh:
		return bson.D{{Key: "price", Value: -1}}
	case SortNewest:
		return bson.D{{Key: "created_at", Value: -1}}
	case SortPopular:
		return bson.D{{Key: "popularity_score", Value: -1}}
	case SortRating:
		if hasRating {
			return bson.D{{Key: "rating", Value: -1}, {Key: "review_count", Value: -1}}
		}
	}

	if f.Search != "" {
		return bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}
	}
	return bson.D{{Key: "popularity_score", Value: -1}, {Key: "name", Value: 1}}
}

// FindOptions combines SortOrder with the text score projection a score sort requires.
func (f Filter) FindOptions(hasRating bool) *options.FindOptions {
	sort := f.SortOrder(hasRating)
	opts := options.Find().SetSort(sort)
	if f.Search != "" && sort[0].Key == "score" {
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
	}
	return opts
}

// IsBrowsing is true when the listing is not narrowed by category or search,
// which is when featured items are shown.
func (f Filter) IsBrowsing() bool {
	return f.Category == "" && f.Search == ""
}

// RelatedQuery selects other active items of the same category.
func RelatedQuery(category string, exclude any) bson.M {
	return bson.M{
		"is_active": true,
		"category":  category,
		"_id":       bson.M{"$ne": exclude},
	}
}
