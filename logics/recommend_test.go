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
	"sync"
	"testing"

	"github.com/anirec-io/anirec/storage/data"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestRecommenderBadRequest(t *testing.T) {
	recommender := NewRecommender(newContentDatabase(), testRecommendConfig())
	_, err := recommender.Recommend("nonsense", 10, 5)
	assert.True(t, errors.Is(err, errors.BadRequest))
	_, err = recommender.Recommend(StrategyHybrid, 10, 0)
	assert.True(t, errors.Is(err, errors.BadRequest))
	_, err = recommender.PopularItems(-1)
	assert.True(t, errors.Is(err, errors.BadRequest))
}

func TestRecommenderStrategies(t *testing.T) {
	recommender := NewRecommender(newContentDatabase(), testRecommendConfig())
	strategies := recommender.Strategies()
	assert.Contains(t, strategies, StrategyCollaborative)
	assert.Contains(t, strategies, StrategyContentBased)
	assert.Contains(t, strategies, StrategyHybrid)
	for name := range strategies {
		recommendations, err := recommender.Recommend(name, 10, 3)
		assert.NoError(t, err)
		assert.NotEmpty(t, recommendations)
	}
}

func TestRecommenderFallback(t *testing.T) {
	// an empty rating table breaks the collaborative engine, the facade
	// degrades to popularity ranking instead of failing the request
	db := data.NewMemoryDatabase()
	db.InsertItem(data.Item{ItemId: 1, Name: "a", Rating: 8.0})
	db.InsertItem(data.Item{ItemId: 2, Name: "b", Rating: 9.0})
	cfg := testRecommendConfig()
	cfg.FallbackMinRatings = 0
	recommender := NewRecommender(db, cfg)
	recommendations, err := recommender.Recommend(StrategyCollaborative, 1, 2)
	assert.NoError(t, err)
	assert.Len(t, recommendations, 2)
	assert.Equal(t, int32(2), recommendations[0].ItemId)
	for _, recommendation := range recommendations {
		assert.Equal(t, TypePopular, recommendation.RecommendationType)
	}
}

func TestRecommenderColdStartMatchesPopularity(t *testing.T) {
	// a user without history gets the popularity ranking from every
	// strategy, including the hybrid fusion of two fallback lists
	recommender := NewRecommender(newContentDatabase(), testRecommendConfig())
	popular, err := recommender.PopularItems(3)
	assert.NoError(t, err)
	popularIds := lo.Map(popular, func(recommendation Recommendation, _ int) int32 {
		return recommendation.ItemId
	})
	for _, strategy := range []string{StrategyCollaborative, StrategyContentBased, StrategyHybrid} {
		recommendations, err := recommender.Recommend(strategy, 99, 3)
		assert.NoError(t, err)
		ids := lo.Map(recommendations, func(recommendation Recommendation, _ int) int32 {
			return recommendation.ItemId
		})
		assert.Equal(t, popularIds, ids, strategy)
	}
}

func TestRecommenderAddRating(t *testing.T) {
	recommender := NewRecommender(newContentDatabase(), testRecommendConfig())
	// prime the cache before writing
	ratings, err := recommender.UserRatings(50)
	assert.NoError(t, err)
	assert.Empty(t, ratings)

	assert.NoError(t, recommender.AddRating(data.Rating{UserId: 50, ItemId: 1, Score: 6}))
	assert.NoError(t, recommender.AddRating(data.Rating{UserId: 50, ItemId: 1, Score: 9}))
	ratings, err = recommender.UserRatings(50)
	assert.NoError(t, err)
	assert.Len(t, ratings, 1)
	assert.Equal(t, 9.0, ratings[0].Score)
}

func TestRecommenderConcurrentRatings(t *testing.T) {
	// rating reads and writes may arrive on concurrent server goroutines
	recommender := NewRecommender(newContentDatabase(), testRecommendConfig())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			assert.NoError(t, recommender.AddRating(data.Rating{UserId: 60, ItemId: int32(i%3 + 1), Score: 8}))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_, err := recommender.UserRatings(60)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()
	ratings, err := recommender.UserRatings(60)
	assert.NoError(t, err)
	assert.Len(t, ratings, 3)
}

func TestRecommenderItemInfo(t *testing.T) {
	recommender := NewRecommender(newContentDatabase(), testRecommendConfig())
	item, err := recommender.ItemInfo(1)
	assert.NoError(t, err)
	assert.Equal(t, "Sword Saga", item.Name)
	_, err = recommender.ItemInfo(42)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestRecommenderInvalidate(t *testing.T) {
	recommender := NewRecommender(newContentDatabase(), testRecommendConfig())
	before, err := recommender.Recommend(StrategyCollaborative, 10, 3)
	assert.NoError(t, err)
	assert.NoError(t, recommender.AddRating(data.Rating{UserId: 11, ItemId: 1, Score: 10}))
	recommender.Invalidate()
	after, err := recommender.Recommend(StrategyCollaborative, 10, 3)
	assert.NoError(t, err)
	assert.NotEqual(t, before, after)
}
