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
	"github.com/anirec-io/anirec/base/log"
	"github.com/anirec-io/anirec/common/heap"
	"github.com/anirec-io/anirec/common/tfidf"
	"github.com/anirec-io/anirec/config"
	"github.com/anirec-io/anirec/dataset"
	"github.com/anirec-io/anirec/storage/data"
	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ContentBased recommends items similar to the ones a user liked. Item
// features are TF-IDF vectors of genre, type and name concatenated with
// standardized numeric fields. Unlike the rating matrix the similarity
// matrix covers every loaded item.
type ContentBased struct {
	db             data.Database
	vocabSize      int
	likedThreshold float64
	fallback       *Popular

	items      []data.Item
	itemDict   *dataset.Dict
	similarity [][]float32
}

// NewContentBased creates a content filtering engine. The similarity matrix
// is built lazily on the first request and cached until Invalidate.
func NewContentBased(db data.Database, cfg config.RecommendConfig) *ContentBased {
	return &ContentBased{
		db:             db,
		vocabSize:      cfg.VocabSize,
		likedThreshold: cfg.LikedThreshold,
		fallback:       NewPopular(db, cfg.EngineMinRatings),
	}
}

// Invalidate drops the cached similarity matrix so that the next request
// rebuilds it from the data provider.
func (c *ContentBased) Invalidate() {
	c.items = nil
	c.itemDict = nil
	c.similarity = nil
}

func (c *ContentBased) build() error {
	if c.similarity != nil {
		return nil
	}
	items, err := c.db.Items()
	if err != nil {
		return errors.Trace(err)
	}
	if len(items) == 0 {
		return errors.New("empty item table")
	}
	// text features over genre, type and name
	texts := lo.Map(items, func(item data.Item, _ int) string {
		return item.Genre + " " + item.Type + " " + item.Name
	})
	vectorizer := tfidf.NewVectorizer(c.vocabSize)
	features := vectorizer.FitTransform(texts)
	// standardized numeric features
	numeric := standardize([][]float32{
		lo.Map(items, func(item data.Item, _ int) float32 { return float32(item.Episodes) }),
		lo.Map(items, func(item data.Item, _ int) float32 { return float32(item.Rating) }),
		lo.Map(items, func(item data.Item, _ int) float32 { return float32(item.Members) }),
	})
	for i := range features {
		for _, column := range numeric {
			features[i] = append(features[i], column[i])
		}
	}
	itemDict := dataset.NewDict()
	for _, item := range items {
		itemDict.NotCount(item.ItemId)
	}
	c.items = items
	c.itemDict = itemDict
	c.similarity = cosineMatrix(features)
	log.Logger().Info("built item similarity matrix",
		zap.Int("items", len(items)),
		zap.Int("features", vectorizer.NumFeatures()+len(numeric)))
	return nil
}

// standardize scales each column to zero mean and unit variance. Constant
// columns become zero.
func standardize(columns [][]float32) [][]float32 {
	for _, column := range columns {
		var mean float32
		for _, v := range column {
			mean += v
		}
		mean /= float32(len(column))
		var variance float32
		for _, v := range column {
			variance += (v - mean) * (v - mean)
		}
		variance /= float32(len(column))
		if variance == 0 {
			for i := range column {
				column[i] = 0
			}
			continue
		}
		std := math32.Sqrt(variance)
		for i := range column {
			column[i] = (column[i] - mean) / std
		}
	}
	return columns
}

// Recommend scores unseen items by their similarity to the user's liked
// items.
func (c *ContentBased) Recommend(userId int32, n int) ([]Recommendation, error) {
	if err := c.build(); err != nil {
		return nil, errors.Trace(err)
	}
	history, err := c.db.RatingsForUser(userId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(history) == 0 {
		// cold start
		return c.fallback.Recommend(n)
	}
	liked := lo.Filter(history, func(rating data.Rating, _ int) bool {
		return rating.Score >= c.likedThreshold
	})
	if len(liked) == 0 {
		return c.fallback.Recommend(n)
	}
	// accumulate similarity to every liked item
	scores := make([]float64, len(c.items))
	mapped := 0
	for _, rating := range liked {
		itemIndex := c.itemDict.Index(rating.ItemId)
		if itemIndex == dataset.NotId {
			continue
		}
		mapped++
		for i, similarity := range c.similarity[itemIndex] {
			scores[i] += float64(similarity)
		}
	}
	if mapped == 0 {
		return []Recommendation{}, nil
	}
	// rank candidates, excluding everything already rated
	rated := mapset.NewThreadUnsafeSet[int32]()
	for _, rating := range history {
		rated.Add(rating.ItemId)
	}
	filter := heap.NewTopKFilter[int32, float64](n)
	for i, item := range c.items {
		if !rated.Contains(item.ItemId) {
			filter.Push(item.ItemId, scores[i])
		}
	}
	ids, weights := filter.PopAll()
	return lo.Map(ids, func(itemId int32, i int) Recommendation {
		index := c.itemDict.Index(itemId)
		return newRecommendation(c.items[index], weights[i], TypeContentBased)
	}), nil
}
