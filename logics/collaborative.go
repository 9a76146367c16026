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
	"github.com/anirec-io/anirec/config"
	"github.com/anirec-io/anirec/dataset"
	"github.com/anirec-io/anirec/storage/data"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Collaborative is user-based collaborative filtering over a bounded rating
// matrix. The matrix covers the maxUsers most active users and the maxAnime
// most rated items; everyone else gets the popularity fallback.
type Collaborative struct {
	db           data.Database
	maxUsers     int
	maxAnime     int
	numNeighbors int
	fallback     *Popular

	userDict   *dataset.Dict
	itemDict   *dataset.Dict
	matrix     [][]float32
	similarity [][]float32
}

// NewCollaborative creates a collaborative filtering engine. Matrices are
// built lazily on the first request and cached until Invalidate.
func NewCollaborative(db data.Database, cfg config.RecommendConfig) *Collaborative {
	return &Collaborative{
		db:           db,
		maxUsers:     cfg.MaxUsers,
		maxAnime:     cfg.MaxAnime,
		numNeighbors: cfg.NumNeighbors,
		fallback:     NewPopular(db, cfg.EngineMinRatings),
	}
}

// Invalidate drops the cached matrices so that the next request rebuilds
// them from the data provider.
func (c *Collaborative) Invalidate() {
	c.userDict = nil
	c.itemDict = nil
	c.matrix = nil
	c.similarity = nil
}

func (c *Collaborative) build() error {
	if c.similarity != nil {
		return nil
	}
	ratings, err := c.db.AllRatings()
	if err != nil {
		return errors.Trace(err)
	}
	if len(ratings) == 0 {
		return errors.New("empty rating table")
	}
	ds := dataset.NewDataset(ratings)
	userDict, itemDict := dataset.NewDict(), dataset.NewDict()
	for _, userId := range ds.TopUsers(c.maxUsers) {
		userDict.NotCount(userId)
	}
	for _, itemId := range ds.TopItems(c.maxAnime) {
		itemDict.NotCount(itemId)
	}
	matrix := make([][]float32, userDict.Count())
	for i := range matrix {
		matrix[i] = make([]float32, itemDict.Count())
	}
	for _, rating := range ratings {
		userIndex := userDict.Index(rating.UserId)
		itemIndex := itemDict.Index(rating.ItemId)
		if userIndex != dataset.NotId && itemIndex != dataset.NotId {
			matrix[userIndex][itemIndex] = float32(rating.Score)
		}
	}
	c.userDict, c.itemDict = userDict, itemDict
	c.matrix = matrix
	c.similarity = cosineMatrix(matrix)
	log.Logger().Info("built rating matrix",
		zap.Int("users", userDict.Count()),
		zap.Int("items", itemDict.Count()))
	return nil
}

// Recommend scores unseen items for a user by weighted neighbor votes.
func (c *Collaborative) Recommend(userId int32, n int) ([]Recommendation, error) {
	if err := c.build(); err != nil {
		return nil, errors.Trace(err)
	}
	userIndex := c.userDict.Index(userId)
	if userIndex == dataset.NotId {
		// cold start
		return c.fallback.Recommend(n)
	}
	// select the neighborhood by similarity
	similarities := c.similarity[userIndex]
	neighbors := heap.NewTopKFilter[int32, float32](c.numNeighbors)
	for v := range similarities {
		if int32(v) != userIndex {
			neighbors.Push(int32(v), similarities[v])
		}
	}
	neighborIndices, _ := neighbors.PopAll()
	// accumulate weighted votes for items the user has not rated
	userRow := c.matrix[userIndex]
	scores := make(map[int32]float64)
	for _, neighborIndex := range neighborIndices {
		similarity := float64(similarities[neighborIndex])
		for itemIndex, rating := range c.matrix[neighborIndex] {
			if rating > 0 && userRow[itemIndex] == 0 {
				itemId, _ := c.itemDict.Value(int32(itemIndex))
				scores[itemId] += similarity * float64(rating)
			}
		}
	}
	filter := heap.NewTopKFilter[int32, float64](n)
	for itemId, score := range scores {
		filter.Push(itemId, score)
	}
	ids, weights := filter.PopAll()
	recommendations := make([]Recommendation, 0, len(ids))
	for i, itemId := range ids {
		item, err := c.db.ItemInfo(itemId)
		if errors.Is(err, errors.NotFound) {
			// rated items missing from the item table are skipped
			continue
		} else if err != nil {
			return nil, errors.Trace(err)
		}
		recommendations = append(recommendations, newRecommendation(*item, weights[i], TypeCollaborative))
	}
	return recommendations, nil
}
