package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFilterFromQuery(t *testing.T) {
	q := url.Values{
		"category": {"  Food &  Treats "},
		"search":   {"kibble"},
		"minPrice": {"10"},
		"maxPrice": {"abc"},
		"pet":      {"Dog"},
		"onSale":   {"true"},
		"inStock":  {"yes"},
		"sort":     {"price_low"},
	}

	f := FilterFromQuery(q)
	assert.Equal(t, "Food & Treats", f.Category)
	assert.Equal(t, "kibble", f.Search)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 10.0, *f.MinPrice)
	assert.Nil(t, f.MaxPrice)
	assert.True(t, f.OnSale)
	assert.False(t, f.InStock)
	assert.Equal(t, SortPriceLow, f.Sort)
}

func TestFilterQuery(t *testing.T) {
	t.Run("empty filter lists active only", func(t *testing.T) {
		assert.Equal(t, bson.M{"is_active": true}, Filter{}.Query())
	})

	t.Run("all filters", func(t *testing.T) {
		lo, hi := 5.0, 50.0
		f := Filter{
			Category: "Grooming",
			Search:   "brush",
			MinPrice: &lo,
			MaxPrice: &hi,
			PetType:  "Cat",
			OnSale:   true,
			InStock:  true,
		}

		q := f.Query()
		assert.Equal(t, true, q["is_active"])
		assert.Equal(t, "Grooming", q["category"])
		assert.Equal(t, bson.M{"$search": "brush"}, q["$text"])
		assert.Equal(t, bson.M{"$gte": 5.0, "$lte": 50.0}, q["price"])
		assert.Equal(t, bson.M{"$in": []string{"Cat", PetTypeAll}}, q["available_for"])
		assert.Equal(t, true, q["is_on_sale"])
		assert.Equal(t, true, q["in_stock"])
	})

	t.Run("max price only", func(t *testing.T) {
		hi := 20.0
		q := Filter{MaxPrice: &hi}.Query()
		assert.Equal(t, bson.M{"$lte": 20.0}, q["price"])
	})
}

func TestSortOrder(t *testing.T) {
	tests := []struct {
		name      string
		filter    Filter
		hasRating bool
		want      bson.D
	}{
		{"default", Filter{}, true, bson.D{{Key: "popularity_score", Value: -1}, {Key: "name", Value: 1}}},
		{"search ranks by score", Filter{Search: "food"}, true, bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}},
		{"explicit sort beats score", Filter{Search: "food", Sort: SortPriceHigh}, true, bson.D{{Key: "price", Value: -1}}},
		{"price low", Filter{Sort: SortPriceLow}, false, bson.D{{Key: "price", Value: 1}}},
		{"newest", Filter{Sort: SortNewest}, false, bson.D{{Key: "created_at", Value: -1}}},
		{"popular", Filter{Sort: SortPopular}, false, bson.D{{Key: "popularity_score", Value: -1}}},
		{"rating", Filter{Sort: SortRating}, true, bson.D{{Key: "rating", Value: -1}, {Key: "review_count", Value: -1}}},
		{"rating without ratings falls back", Filter{Sort: SortRating}, false, bson.D{{Key: "popularity_score", Value: -1}, {Key: "name", Value: 1}}},
		{"unknown sort", Filter{Sort: "cheapest"}, true, bson.D{{Key: "popularity_score", Value: -1}, {Key: "name", Value: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.SortOrder(tt.hasRating))
		})
	}
}

func TestFindOptions_ProjectsScoreOnlyForScoreSort(t *testing.T) {
	opts := Filter{Search: "food"}.FindOptions(true)
	assert.NotNil(t, opts.Projection)

	opts = Filter{Search: "food", Sort: SortNewest}.FindOptions(true)
	assert.Nil(t, opts.Projection)
}

func TestIsBrowsing(t *testing.T) {
	assert.True(t, Filter{PetType: "Dog"}.IsBrowsing())
	assert.False(t, Filter{Category: "Toys & Entertainment"}.IsBrowsing())
	assert.False(t, Filter{Search: "ball"}.IsBrowsing())
}
