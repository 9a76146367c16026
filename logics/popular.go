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
	"github.com/anirec-io/anirec/common/heap"
	"github.com/anirec-io/anirec/storage/data"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Popular recommends the best rated items among those with enough ratings.
// It is the cold start answer of both personalized engines and the error
// recovery path of the facade.
type Popular struct {
	db         data.Database
	minRatings int
}

// NewPopular creates a popularity recommender over items with at least
// minRatings observed ratings.
func NewPopular(db data.Database, minRatings int) *Popular {
	return &Popular{db: db, minRatings: minRatings}
}

// Recommend returns the top n items by aggregate rating, ties broken by
// ascending item id. Scores are fixed at zero.
func (p *Popular) Recommend(n int) ([]Recommendation, error) {
	items, err := p.db.PopularItems(p.minRatings)
	if err != nil {
		return nil, errors.Trace(err)
	}
	byId := make(map[int32]data.Item, len(items))
	filter := heap.NewTopKFilter[int32, float64](n)
	for _, item := range items {
		byId[item.ItemId] = item
		filter.Push(item.ItemId, item.Rating)
	}
	ids, _ := filter.PopAll()
	return lo.Map(ids, func(id int32, _ int) Recommendation {
		return newRecommendation(byId[id], 0, TypePopular)
	}), nil
}
