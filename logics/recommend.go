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
	"time"

	"github.com/anirec-io/anirec/base/log"
	"github.com/anirec-io/anirec/config"
	"github.com/anirec-io/anirec/storage/data"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Recommendation types mark which engine produced an item.
const (
	TypeCollaborative       = "collaborative"
	TypeContentBased        = "content_based"
	TypeHybrid              = "hybrid"
	TypeHybridCollaborative = "hybrid_collaborative"
	TypeHybridContent       = "hybrid_content"
	TypePopular             = "popular"
)

// Strategy names accepted by the recommender facade.
const (
	StrategyCollaborative = "collaborative"
	StrategyContentBased  = "content"
	StrategyHybrid        = "hybrid"
)

// Recommendation is a scored item returned to callers.
type Recommendation struct {
	ItemId             int32   `json:"anime_id"`
	Name               string  `json:"name"`
	Genre              string  `json:"genre"`
	Type               string  `json:"type"`
	Episodes           int     `json:"episodes"`
	Rating             float64 `json:"rating"`
	Members            int     `json:"members"`
	Score              float64 `json:"score"`
	RecommendationType string  `json:"recommendation_type"`
}

func newRecommendation(item data.Item, score float64, recommendationType string) Recommendation {
	return Recommendation{
		ItemId:             item.ItemId,
		Name:               item.Name,
		Genre:              item.Genre,
		Type:               item.Type,
		Episodes:           item.Episodes,
		Rating:             item.Rating,
		Members:            item.Members,
		Score:              score,
		RecommendationType: recommendationType,
	}
}

// Strategy is a recommendation engine selectable by name.
type Strategy interface {
	Recommend(userId int32, n int) ([]Recommendation, error)
	Invalidate()
}

const ratingCacheExpiration = time.Minute

// Recommender routes requests to the configured strategies and degrades to
// popularity ranking when an engine fails. It is safe for concurrent use.
type Recommender struct {
	mu          sync.Mutex
	db          data.Database
	strategies  map[string]Strategy
	hybrid      *Hybrid
	fallback    *Popular
	ratingCache *ttlcache.Cache[int32, []data.Rating]
}

// NewRecommender creates the facade with one engine per strategy.
func NewRecommender(db data.Database, cfg config.RecommendConfig) *Recommender {
	hybrid := NewHybrid(db, cfg)
	return &Recommender{
		db: db,
		strategies: map[string]Strategy{
			StrategyCollaborative: NewCollaborative(db, cfg),
			StrategyContentBased:  NewContentBased(db, cfg),
			StrategyHybrid:        hybrid,
		},
		hybrid:      hybrid,
		fallback:    NewPopular(db, cfg.FallbackMinRatings),
		ratingCache: ttlcache.New[int32, []data.Rating](ttlcache.WithTTL[int32, []data.Rating](ratingCacheExpiration)),
	}
}

// Strategies lists the selectable strategy names with descriptions.
func (r *Recommender) Strategies() map[string]string {
	return map[string]string{
		StrategyCollaborative: "scores from the ratings of similar users",
		StrategyContentBased:  "scores from similarity to previously liked items",
		StrategyHybrid:        "weighted fusion of collaborative and content scores",
	}
}

// Recommend returns n recommendations from the named strategy. An unknown
// strategy or non-positive n is a bad request. Engine failures degrade to
// popularity ranking instead of surfacing.
func (r *Recommender) Recommend(strategy string, userId int32, n int) ([]Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < 1 {
		return nil, errors.BadRequestf("n must be positive, got %d", n)
	}
	engine, exist := r.strategies[strategy]
	if !exist {
		return nil, errors.BadRequestf("unknown strategy %q", strategy)
	}
	recommendations, err := engine.Recommend(userId, n)
	if err != nil {
		log.Logger().Warn("recommendation engine failed, falling back to popularity",
			zap.String("strategy", strategy), zap.Int32("user_id", userId), zap.Error(err))
		return r.fallback.Recommend(n)
	}
	return recommendations, nil
}

// DiverseRecommend interleaves collaborative and content recommendations.
func (r *Recommender) DiverseRecommend(userId int32, n int) ([]Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < 1 {
		return nil, errors.BadRequestf("n must be positive, got %d", n)
	}
	recommendations, err := r.hybrid.DiverseRecommend(userId, n)
	if err != nil {
		log.Logger().Warn("diverse recommendation failed, falling back to popularity",
			zap.Int32("user_id", userId), zap.Error(err))
		return r.fallback.Recommend(n)
	}
	return recommendations, nil
}

// AdaptiveRecommend tunes the hybrid weights to the user's rating spread.
func (r *Recommender) AdaptiveRecommend(userId int32, n int) ([]Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < 1 {
		return nil, errors.BadRequestf("n must be positive, got %d", n)
	}
	recommendations, err := r.hybrid.AdaptiveRecommend(userId, n)
	if err != nil {
		log.Logger().Warn("adaptive recommendation failed, falling back to popularity",
			zap.Int32("user_id", userId), zap.Error(err))
		return r.fallback.Recommend(n)
	}
	return recommendations, nil
}

// PopularItems returns the globally popular ranking.
func (r *Recommender) PopularItems(n int) ([]Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < 1 {
		return nil, errors.BadRequestf("n must be positive, got %d", n)
	}
	return r.fallback.Recommend(n)
}

// ItemInfo looks up item metadata by id.
func (r *Recommender) ItemInfo(itemId int32) (*data.Item, error) {
	item, err := r.db.ItemInfo(itemId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return item, nil
}

// AddRating records a rating and invalidates the user's cached history.
// Re-rating the same item overwrites the previous score.
func (r *Recommender) AddRating(rating data.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.db.InsertRating(rating); err != nil {
		return errors.Trace(err)
	}
	r.ratingCache.Delete(rating.UserId)
	return nil
}

// UserRatings returns the user's rating history through a short-lived
// cache.
func (r *Recommender) UserRatings(userId int32) ([]data.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached := r.ratingCache.Get(userId); cached != nil {
		return cached.Value(), nil
	}
	ratings, err := r.db.RatingsForUser(userId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	r.ratingCache.Set(userId, ratings, ttlcache.DefaultTTL)
	return ratings, nil
}

// Invalidate drops every engine's cached model so the next request
// rebuilds from the current ratings.
func (r *Recommender) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, engine := range r.strategies {
		engine.Invalidate()
	}
}
