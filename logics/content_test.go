// Copyright 2025 anirec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logics

import (
	"testing"

	"github.com/anirec-io/anirec/storage/data"
	"github.com/stretchr/testify/assert"
)

func newContentDatabase() *data.MemoryDatabase {
	db := data.NewMemoryDatabase()
	db.InsertItem(data.Item{ItemId: 1, Name: "Sword Saga", Genre: "action adventure", Type: "TV", Episodes: 24, Rating: 8.2, Members: 5000})
	db.InsertItem(data.Item{ItemId: 2, Name: "Sword Saga Two", Genre: "action adventure", Type: "TV", Episodes: 24, Rating: 8.0, Members: 4500})
	db.InsertItem(data.Item{ItemId: 3, Name: "Quiet Feelings", Genre: "romance drama", Type: "Movie", Episodes: 1, Rating: 7.5, Members: 2000})
	_ = db.InsertRating(data.Rating{UserId: 10, ItemId: 1, Score: 9})
	_ = db.InsertRating(data.Rating{UserId: 10, ItemId: 3, Score: 5})
	_ = db.InsertRating(data.Rating{UserId: 11, ItemId: 2, Score: 8})
	return db
}

func newCatalogDatabase() *data.MemoryDatabase {
	db := data.NewMemoryDatabase()
	db.InsertItem(data.Item{ItemId: 1, Name: "Sword Saga", Genre: "action adventure", Type: "TV", Episodes: 24, Rating: 8.2, Members: 5000})
	db.InsertItem(data.Item{ItemId: 2, Name: "Sword Saga Two", Genre: "action adventure", Type: "TV", Episodes: 24, Rating: 8.0, Members: 4500})
	db.InsertItem(data.Item{ItemId: 3, Name: "Blade Chronicle", Genre: "action fantasy", Type: "TV", Episodes: 12, Rating: 7.8, Members: 3000})
	db.InsertItem(data.Item{ItemId: 4, Name: "Quiet Feelings", Genre: "romance drama", Type: "Movie", Episodes: 1, Rating: 7.5, Members: 2000})
	db.InsertItem(data.Item{ItemId: 5, Name: "Cooking Days", Genre: "comedy gourmet", Type: "Movie", Episodes: 11, Rating: 7.0, Members: 1500})
	_ = db.InsertRating(data.Rating{UserId: 10, ItemId: 1, Score: 9})
	_ = db.InsertRating(data.Rating{UserId: 10, ItemId: 2, Score: 8})
	_ = db.InsertRating(data.Rating{UserId: 11, ItemId: 3, Score: 8})
	_ = db.InsertRating(data.Rating{UserId: 11, ItemId: 4, Score: 7})
	return db
}

func assertUniqueItems(t *testing.T, recommendations []Recommendation) {
	seen := make(map[int32]bool)
	for _, recommendation := range recommendations {
		assert.False(t, seen[recommendation.ItemId])
		seen[recommendation.ItemId] = true
	}
}

func TestContentBased(t *testing.T) {
	content := NewContentBased(newContentDatabase(), testRecommendConfig())
	recommendations, err := content.Recommend(10, 3)
	assert.NoError(t, err)
	// items 1 and 3 are already rated, only the sequel remains
	assert.Len(t, recommendations, 1)
	assert.Equal(t, int32(2), recommendations[0].ItemId)
	assert.Greater(t, recommendations[0].Score, 0.0)
	assert.Equal(t, TypeContentBased, recommendations[0].RecommendationType)
}

func TestContentBasedColdStart(t *testing.T) {
	content := NewContentBased(newContentDatabase(), testRecommendConfig())
	recommendations, err := content.Recommend(99, 3)
	assert.NoError(t, err)
	assert.NotEmpty(t, recommendations)
	for _, recommendation := range recommendations {
		assert.Equal(t, TypePopular, recommendation.RecommendationType)
	}
}

func TestContentBasedNothingLiked(t *testing.T) {
	db := newContentDatabase()
	_ = db.InsertRating(data.Rating{UserId: 12, ItemId: 1, Score: 5})
	content := NewContentBased(db, testRecommendConfig())
	recommendations, err := content.Recommend(12, 3)
	assert.NoError(t, err)
	assert.NotEmpty(t, recommendations)
	for _, recommendation := range recommendations {
		assert.Equal(t, TypePopular, recommendation.RecommendationType)
	}
}

func TestContentBasedUnknownLikedItems(t *testing.T) {
	db := newContentDatabase()
	// the only liked item is missing from the item table
	_ = db.InsertRating(data.Rating{UserId: 13, ItemId: 999, Score: 9})
	content := NewContentBased(db, testRecommendConfig())
	recommendations, err := content.Recommend(13, 3)
	assert.NoError(t, err)
	assert.Empty(t, recommendations)
}

func TestContentBasedDeterminism(t *testing.T) {
	// two liked items vote for every candidate, so a candidate must
	// appear once with the accumulated score
	content := NewContentBased(newCatalogDatabase(), testRecommendConfig())
	first, err := content.Recommend(10, 5)
	assert.NoError(t, err)
	assert.Len(t, first, 3)
	assertUniqueItems(t, first)
	content.Invalidate()
	second, err := content.Recommend(10, 5)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStandardize(t *testing.T) {
	columns := standardize([][]float32{
		{1, 2, 3},
		{5, 5, 5},
	})
	assert.InDelta(t, -1.2247, columns[0][0], 1e-3)
	assert.InDelta(t, 0, columns[0][1], 1e-6)
	assert.InDelta(t, 1.2247, columns[0][2], 1e-3)
	// constant columns become zero instead of dividing by zero
	assert.Equal(t, []float32{0, 0, 0}, columns[1])
}
