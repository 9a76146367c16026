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
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/anirec-io/anirec/base/log"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// LoadCSV loads an in-memory database from the anime and rating tables of
// the Kaggle anime recommendation dataset. sampleSize bounds the number of
// rating rows read, zero reads everything. Ratings without a score (the
// dataset encodes watched-but-unrated as -1) are skipped.
func LoadCSV(itemPath, ratingPath string, sampleSize int) (*MemoryDatabase, error) {
	db := NewMemoryDatabase()
	if err := loadItems(db, itemPath); err != nil {
		return nil, errors.Trace(err)
	}
	if err := loadRatings(db, ratingPath, sampleSize); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("loaded dataset",
		zap.String("item_path", itemPath),
		zap.String("rating_path", ratingPath),
		zap.Int("items", len(db.items)),
		zap.Int("ratings", len(db.ratings)))
	return db, nil
}

func loadItems(db *MemoryDatabase, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return errors.Trace(err)
	}
	columns := columnIndex(header)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Trace(err)
		}
		itemId, err := parseInt32(field(row, columns, "anime_id"))
		if err != nil {
			log.Logger().Warn("skip malformed item row", zap.Strings("row", row))
			continue
		}
		// non-numeric episode counts ("Unknown") default to zero
		episodes, _ := strconv.Atoi(field(row, columns, "episodes"))
		rating, _ := strconv.ParseFloat(field(row, columns, "rating"), 64)
		members, _ := strconv.Atoi(field(row, columns, "members"))
		db.InsertItem(Item{
			ItemId:   itemId,
			Name:     field(row, columns, "name"),
			Genre:    field(row, columns, "genre"),
			Type:     field(row, columns, "type"),
			Episodes: episodes,
			Rating:   rating,
			Members:  members,
		})
	}
	return nil
}

func loadRatings(db *MemoryDatabase, path string, sampleSize int) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return errors.Trace(err)
	}
	columns := columnIndex(header)
	count := 0
	for sampleSize <= 0 || count < sampleSize {
		row, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Trace(err)
		}
		count++
		userId, err := parseInt32(field(row, columns, "user_id"))
		if err != nil {
			log.Logger().Warn("skip malformed rating row", zap.Strings("row", row))
			continue
		}
		itemId, err := parseInt32(field(row, columns, "anime_id"))
		if err != nil {
			log.Logger().Warn("skip malformed rating row", zap.Strings("row", row))
			continue
		}
		score, err := strconv.ParseFloat(field(row, columns, "rating"), 64)
		if err != nil || score <= 0 {
			continue
		}
		db.InsertRating(Rating{UserId: userId, ItemId: itemId, Score: score})
	}
	return nil
}

func columnIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	return columns
}

func field(row []string, columns map[string]int, name string) string {
	if i, exist := columns[name]; exist && i < len(row) {
		return row[i]
	}
	return ""
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return int32(v), nil
}
