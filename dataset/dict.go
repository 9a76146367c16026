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

// NotId marks an id outside the dictionary.
const NotId = int32(-1)

// Dict is a bidirectional mapping between sparse ids and dense indices that
// counts how often each id is added.
type Dict struct {
	si  map[int32]int32
	is  []int32
	cnt []int
}

func NewDict() *Dict {
	return &Dict{si: map[int32]int32{}}
}

// Count returns the number of distinct ids.
func (d *Dict) Count() int {
	return len(d.is)
}

// Id returns the dense index of an id, inserting and counting it.
func (d *Dict) Id(v int32) int32 {
	if y, ok := d.si[v]; ok {
		d.cnt[y]++
		return y
	}
	y := int32(len(d.is))
	d.si[v] = y
	d.is = append(d.is, v)
	d.cnt = append(d.cnt, 1)
	return y
}

// NotCount returns the dense index of an id, inserting it without counting.
func (d *Dict) NotCount(v int32) int32 {
	if y, ok := d.si[v]; ok {
		return y
	}
	y := int32(len(d.is))
	d.si[v] = y
	d.is = append(d.is, v)
	d.cnt = append(d.cnt, 0)
	return y
}

// Index returns the dense index of an id, or NotId if absent.
func (d *Dict) Index(v int32) int32 {
	if y, ok := d.si[v]; ok {
		return y
	}
	return NotId
}

// Value returns the id at a dense index.
func (d *Dict) Value(index int32) (int32, bool) {
	if index < 0 || int(index) >= len(d.is) {
		return 0, false
	}
	return d.is[index], true
}

// Freq returns how often an index was counted.
func (d *Dict) Freq(index int32) int {
	if index < 0 || int(index) >= len(d.cnt) {
		return 0
	}
	return d.cnt[index]
}
