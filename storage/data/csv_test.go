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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const animeCSV = `anime_id,name,genre,type,episodes,rating,members
1,Cowboy Bebop,"Action, Sci-Fi",TV,26,8.78,486824
5,Trigun,"Action, Comedy",TV,26,8.32,283069
6,Eden of the East,Unknown,Movie,Unknown,8.0,10000
`

const ratingCSV = `user_id,anime_id,rating
1,1,10
1,5,-1
2,1,8
2,5,7
3,6,9
`

func writeTempCSV(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	itemPath := writeTempCSV(t, "anime.csv", animeCSV)
	ratingPath := writeTempCSV(t, "rating.csv", ratingCSV)
	db, err := LoadCSV(itemPath, ratingPath, 0)
	assert.NoError(t, err)

	items, _ := db.Items()
	assert.Len(t, items, 3)
	item, err := db.ItemInfo(1)
	assert.NoError(t, err)
	assert.Equal(t, "Cowboy Bebop", item.Name)
	assert.Equal(t, 26, item.Episodes)
	assert.InDelta(t, 8.78, item.Rating, 1e-9)
	assert.Equal(t, 486824, item.Members)
	// unknown episode counts default to zero
	item, err = db.ItemInfo(6)
	assert.NoError(t, err)
	assert.Zero(t, item.Episodes)

	// the -1 placeholder rating is dropped
	all, _ := db.AllRatings()
	assert.Len(t, all, 4)
	ratings, _ := db.RatingsForUser(1)
	assert.Equal(t, []Rating{{1, 1, 10}}, ratings)
}

func TestLoadCSVSample(t *testing.T) {
	itemPath := writeTempCSV(t, "anime.csv", animeCSV)
	ratingPath := writeTempCSV(t, "rating.csv", ratingCSV)
	db, err := LoadCSV(itemPath, ratingPath, 3)
	assert.NoError(t, err)
	// three rows read, one of them unrated
	all, _ := db.AllRatings()
	assert.Len(t, all, 2)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV("no_such_anime.csv", "no_such_rating.csv", 0)
	assert.Error(t, err)
}
