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
	"testing"

	"github.com/anirec-io/anirec/storage/data"
	"github.com/stretchr/testify/assert"
)

func TestTopUsersAndItems(t *testing.T) {
	ratings := []data.Rating{
		{UserId: 1, ItemId: 10, Score: 8},
		{UserId: 1, ItemId: 11, Score: 7},
		{UserId: 1, ItemId: 12, Score: 6},
		{UserId: 2, ItemId: 10, Score: 9},
		{UserId: 2, ItemId: 11, Score: 5},
		{UserId: 3, ItemId: 10, Score: 4},
	}
	d := NewDataset(ratings)
	assert.Equal(t, 3, d.CountUsers())
	assert.Equal(t, 3, d.CountItems())
	assert.Equal(t, []int32{1, 2, 3}, d.TopUsers(10))
	assert.Equal(t, []int32{1, 2}, d.TopUsers(2))
	assert.Equal(t, []int32{10, 11, 12}, d.TopItems(10))
	assert.Equal(t, []int32{10}, d.TopItems(1))
}

func TestTopUsersTieBreak(t *testing.T) {
	// user 5 and user 4 both rated one item, ascending id wins the cutoff
	ratings := []data.Rating{
		{UserId: 5, ItemId: 1, Score: 8},
		{UserId: 4, ItemId: 2, Score: 7},
		{UserId: 6, ItemId: 1, Score: 6},
		{UserId: 6, ItemId: 2, Score: 6},
	}
	d := NewDataset(ratings)
	assert.Equal(t, []int32{6, 4}, d.TopUsers(2))
}
