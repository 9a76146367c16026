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

package data

import (
	"github.com/juju/errors"
)

// Item stores metadata about an anime title. Items are read-only once
// loaded.
type Item struct {
	ItemId   int32
	Name     string
	Genre    string
	Type     string
	Episodes int
	Rating   float64
	Members  int
}

// Rating is a single (user, item, score) observation. Scores live on the
// 1-10 scale of the source dataset.
type Rating struct {
	UserId int32
	ItemId int32
	Score  float64
}

// Database is the data provider consumed by the recommendation engines.
type Database interface {
	// Items returns all loaded items.
	Items() ([]Item, error)
	// ItemInfo returns a single item or a not found error.
	ItemInfo(itemId int32) (*Item, error)
	// RatingsForUser returns the rating history of a user, possibly empty.
	RatingsForUser(userId int32) ([]Rating, error)
	// AllRatings returns every loaded rating.
	AllRatings() ([]Rating, error)
	// PopularItems returns items with at least minRatingCount ratings.
	PopularItems(minRatingCount int) ([]Item, error)
	// InsertRating adds a rating, overwriting any previous score the user
	// gave the item.
	InsertRating(rating Rating) error
}

// MemoryDatabase keeps items and ratings in memory. There is at most one
// rating per (user, item) pair, the last insert wins.
type MemoryDatabase struct {
	items       []Item
	itemIndex   map[int32]int
	ratings     []Rating
	ratingIndex map[[2]int32]int
	userRatings map[int32][]int
	itemCounts  map[int32]int
}

// NewMemoryDatabase creates an empty in-memory database.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		itemIndex:   make(map[int32]int),
		ratingIndex: make(map[[2]int32]int),
		userRatings: make(map[int32][]int),
		itemCounts:  make(map[int32]int),
	}
}

// InsertItem adds an item. Reinserting an id overwrites the previous item.
func (d *MemoryDatabase) InsertItem(item Item) {
	if i, exist := d.itemIndex[item.ItemId]; exist {
		d.items[i] = item
		return
	}
	d.itemIndex[item.ItemId] = len(d.items)
	d.items = append(d.items, item)
}

// InsertRating adds a rating. A second rating for the same (user, item)
// pair overwrites the first.
func (d *MemoryDatabase) InsertRating(rating Rating) error {
	key := [2]int32{rating.UserId, rating.ItemId}
	if i, exist := d.ratingIndex[key]; exist {
		d.ratings[i] = rating
		return nil
	}
	d.ratingIndex[key] = len(d.ratings)
	d.userRatings[rating.UserId] = append(d.userRatings[rating.UserId], len(d.ratings))
	d.itemCounts[rating.ItemId]++
	d.ratings = append(d.ratings, rating)
	return nil
}

func (d *MemoryDatabase) Items() ([]Item, error) {
	return d.items, nil
}

func (d *MemoryDatabase) ItemInfo(itemId int32) (*Item, error) {
	if i, exist := d.itemIndex[itemId]; exist {
		item := d.items[i]
		return &item, nil
	}
	return nil, errors.NotFoundf("item %d", itemId)
}

func (d *MemoryDatabase) RatingsForUser(userId int32) ([]Rating, error) {
	indices := d.userRatings[userId]
	ratings := make([]Rating, 0, len(indices))
	for _, i := range indices {
		ratings = append(ratings, d.ratings[i])
	}
	return ratings, nil
}

func (d *MemoryDatabase) AllRatings() ([]Rating, error) {
	return d.ratings, nil
}

func (d *MemoryDatabase) PopularItems(minRatingCount int) ([]Item, error) {
	var popular []Item
	for _, item := range d.items {
		if d.itemCounts[item.ItemId] >= minRatingCount {
			popular = append(popular, item)
		}
	}
	return popular, nil
}
