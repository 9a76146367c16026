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

package dataset

import (
	"sort"

	"github.com/anirec-io/anirec/storage/data"
)

// Dataset indexes a rating table by user and item activity. It exists to
// select the bounded working set of the most active users and most rated
// items before matrices are built.
type Dataset struct {
	userDict *Dict
	itemDict *Dict
	ratings  []data.Rating
}

// NewDataset indexes a rating table.
func NewDataset(ratings []data.Rating) *Dataset {
	d := &Dataset{
		userDict: NewDict(),
		itemDict: NewDict(),
		ratings:  ratings,
	}
	for _, rating := range ratings {
		d.userDict.Id(rating.UserId)
		d.itemDict.Id(rating.ItemId)
	}
	return d
}

// Ratings returns the indexed rating table.
func (d *Dataset) Ratings() []data.Rating {
	return d.ratings
}

// CountUsers returns the number of distinct users.
func (d *Dataset) CountUsers() int {
	return d.userDict.Count()
}

// CountItems returns the number of distinct items.
func (d *Dataset) CountItems() int {
	return d.itemDict.Count()
}

// TopUsers returns the ids of the n users with the most ratings. Equal
// counts are broken by ascending user id.
func (d *Dataset) TopUsers(n int) []int32 {
	return topIds(d.userDict, n)
}

// TopItems returns the ids of the n items with the most ratings. Equal
// counts are broken by ascending item id.
func (d *Dataset) TopItems(n int) []int32 {
	return topIds(d.itemDict, n)
}

func topIds(dict *Dict, n int) []int32 {
	ids := make([]int32, dict.Count())
	copy(ids, dict.is)
	sort.Slice(ids, func(i, j int) bool {
		a, b := dict.Freq(dict.Index(ids[i])), dict.Freq(dict.Index(ids[j]))
		if a != b {
			return a > b
		}
		return ids[i] < ids[j]
	})
	if n < len(ids) {
		ids = ids[:n]
	}
	return ids
}
