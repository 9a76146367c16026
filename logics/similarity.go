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
	"github.com/anirec-io/anirec/common/floats"
)

// cosineMatrix computes the pairwise cosine similarity matrix of rows. The
// result is symmetric with a unit diagonal. Rows with zero norm have zero
// similarity to every other row by convention.
func cosineMatrix(rows [][]float32) [][]float32 {
	norms := make([]float32, len(rows))
	for i, row := range rows {
		norms[i] = floats.Norm(row)
	}
	similarity := make([][]float32, len(rows))
	for i := range rows {
		similarity[i] = make([]float32, len(rows))
		similarity[i][i] = 1
	}
	for i := range rows {
		for j := i + 1; j < len(rows); j++ {
			if norms[i] == 0 || norms[j] == 0 {
				continue
			}
			sim := floats.Dot(rows[i], rows[j]) / norms[i] / norms[j]
			similarity[i][j] = sim
			similarity[j][i] = sim
		}
	}
	return similarity
}
