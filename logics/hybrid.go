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
	"sort"

	"github.com/anirec-io/anirec/base/log"
	"github.com/anirec-io/anirec/common/floats"
	"github.com/anirec-io/anirec/config"
	"github.com/anirec-io/anirec/storage/data"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Hybrid fuses collaborative and content scores through a weighted linear
// combination. Weights are runtime state and may be updated between calls,
// either by the caller or by the adaptive variant.
type Hybrid struct {
	db            data.Database
	collaborative *Collaborative
	content       *ContentBased

	collaborativeWeight        float64
	contentWeight              float64
	defaultCollaborativeWeight float64
	defaultContentWeight       float64
}

// NewHybrid creates a hybrid recommender with its own collaborative and
// content engines.
func NewHybrid(db data.Database, cfg config.RecommendConfig) *Hybrid {
	return &Hybrid{
		db:                         db,
		collaborative:              NewCollaborative(db, cfg),
		content:                    NewContentBased(db, cfg),
		collaborativeWeight:        cfg.CollaborativeWeight,
		contentWeight:              cfg.ContentWeight,
		defaultCollaborativeWeight: cfg.CollaborativeWeight,
		defaultContentWeight:       cfg.ContentWeight,
	}
}

// Weights returns the current fusion weights.
func (h *Hybrid) Weights() (collaborative, content float64) {
	return h.collaborativeWeight, h.contentWeight
}

// SetWeights replaces the fusion weights.
func (h *Hybrid) SetWeights(collaborative, content float64) {
	h.collaborativeWeight = collaborative
	h.contentWeight = content
}

// Invalidate drops the cached matrices of both sub-engines.
func (h *Hybrid) Invalidate() {
	h.collaborative.Invalidate()
	h.content.Invalidate()
}

// Recommend fuses the top 2n candidates of both engines into n
// recommendations.
func (h *Hybrid) Recommend(userId int32, n int) ([]Recommendation, error) {
	collaborativeRecs, err := h.collaborative.Recommend(userId, 2*n)
	if err != nil {
		return nil, errors.Trace(err)
	}
	contentRecs, err := h.content.Recommend(userId, 2*n)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return h.combine(collaborativeRecs, contentRecs, n), nil
}

type fusion struct {
	recommendation Recommendation
	collaborative  float64
	content        float64
}

// combine unions candidates by item id and ranks them by the weighted sum
// of both scores. A score missing on either side counts as zero. The sort
// is stable so that equal hybrid scores keep the candidate order,
// collaborative candidates first.
func (h *Hybrid) combine(collaborativeRecs, contentRecs []Recommendation, n int) []Recommendation {
	index := make(map[int32]int)
	var candidates []fusion
	for _, rec := range collaborativeRecs {
		index[rec.ItemId] = len(candidates)
		candidates = append(candidates, fusion{recommendation: rec, collaborative: rec.Score})
	}
	for _, rec := range contentRecs {
		if i, exist := index[rec.ItemId]; exist {
			candidates[i].content = rec.Score
		} else {
			index[rec.ItemId] = len(candidates)
			candidates = append(candidates, fusion{recommendation: rec, content: rec.Score})
		}
	}
	scores := lo.Map(candidates, func(candidate fusion, _ int) float64 {
		return h.collaborativeWeight*candidate.collaborative + h.contentWeight*candidate.content
	})
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	if n < len(order) {
		order = order[:n]
	}
	return lo.Map(order, func(i int, _ int) Recommendation {
		rec := candidates[i].recommendation
		rec.Score = scores[i]
		rec.RecommendationType = TypeHybrid
		return rec
	})
}

// DiverseRecommend interleaves the top n lists of both engines item by
// item, collaborative first. Provenance is kept in the recommendation type
// and the two lists are not deduplicated against each other.
func (h *Hybrid) DiverseRecommend(userId int32, n int) ([]Recommendation, error) {
	collaborativeRecs, err := h.collaborative.Recommend(userId, n)
	if err != nil {
		return nil, errors.Trace(err)
	}
	contentRecs, err := h.content.Recommend(userId, n)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var interleaved []Recommendation
	for i := 0; i < len(collaborativeRecs) || i < len(contentRecs); i++ {
		if i < len(collaborativeRecs) {
			rec := collaborativeRecs[i]
			rec.RecommendationType = TypeHybridCollaborative
			interleaved = append(interleaved, rec)
		}
		if i < len(contentRecs) && len(interleaved) < n {
			rec := contentRecs[i]
			rec.RecommendationType = TypeHybridContent
			interleaved = append(interleaved, rec)
		}
	}
	if n < len(interleaved) {
		interleaved = interleaved[:n]
	}
	return interleaved, nil
}

// AdaptiveRecommend adjusts the fusion weights from the spread of the
// user's historical ratings before recommending. Consistent raters lean on
// content similarity, erratic raters lean on their neighbors.
func (h *Hybrid) AdaptiveRecommend(userId int32, n int) ([]Recommendation, error) {
	history, err := h.db.RatingsForUser(userId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(history) == 0 {
		return h.Recommend(userId, n)
	}
	scores := lo.Map(history, func(rating data.Rating, _ int) float64 {
		return rating.Score
	})
	mean, std := floats.Mean(scores), floats.StdDev(scores)
	switch {
	case len(history) < 2:
		// spread is undefined for a single rating
		h.SetWeights(h.defaultCollaborativeWeight, h.defaultContentWeight)
	case std < 1.0:
		h.SetWeights(0.3, 0.7)
	case std > 2.0:
		h.SetWeights(0.8, 0.2)
	default:
		h.SetWeights(h.defaultCollaborativeWeight, h.defaultContentWeight)
	}
	log.Logger().Debug("adapted fusion weights",
		zap.Int32("user_id", userId),
		zap.Float64("mean", mean),
		zap.Float64("std", std),
		zap.Float64("collaborative_weight", h.collaborativeWeight),
		zap.Float64("content_weight", h.contentWeight))
	return h.Recommend(userId, n)
}
