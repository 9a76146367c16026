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

package tfidf

import (
	"strings"
	"unicode"

	"github.com/anirec-io/anirec/common/floats"
	"github.com/anirec-io/anirec/common/heap"
	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
)

var stopWords = mapset.NewThreadUnsafeSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "did", "do",
	"does", "doing", "down", "during", "each", "few", "for", "from",
	"further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"herself", "him", "himself", "his", "how", "if", "in", "into", "is",
	"it", "its", "itself", "just", "me", "more", "most", "my", "myself",
	"no", "nor", "not", "now", "of", "off", "on", "once", "only", "or",
	"other", "our", "ours", "ourselves", "out", "over", "own", "same",
	"she", "should", "so", "some", "such", "than", "that", "the", "their",
	"theirs", "them", "themselves", "then", "there", "these", "they",
	"this", "those", "through", "to", "too", "under", "until", "up",
	"very", "was", "we", "were", "what", "when", "where", "which", "while",
	"who", "whom", "why", "will", "with", "you", "your", "yours",
	"yourself", "yourselves",
)

// Vectorizer converts documents into L2-normalized TF-IDF vectors over a
// bounded vocabulary of unigrams and bigrams. Stop words and single
// character tokens are discarded before n-grams are formed.
type Vectorizer struct {
	maxFeatures int
	terms       []string
	index       map[string]int
	idf         []float32
}

// NewVectorizer creates a vectorizer with at most maxFeatures terms in its
// vocabulary. The vocabulary keeps the terms with the highest total counts
// across the corpus, ties broken alphabetically.
func NewVectorizer(maxFeatures int) *Vectorizer {
	return &Vectorizer{maxFeatures: maxFeatures}
}

// Terms returns the fitted vocabulary in column order.
func (v *Vectorizer) Terms() []string {
	return v.terms
}

// NumFeatures returns the dimensionality of transformed vectors.
func (v *Vectorizer) NumFeatures() int {
	return len(v.terms)
}

// FitTransform learns the vocabulary and inverse document frequencies from
// docs and returns one dense row per document.
func (v *Vectorizer) FitTransform(docs []string) [][]float32 {
	// count terms per document and across the corpus
	counts := make([]map[string]int, len(docs))
	corpus := make(map[string]int)
	documents := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, term := range Tokenize(doc) {
			counts[i][term]++
			corpus[term]++
		}
		for term := range counts[i] {
			documents[term]++
		}
	}
	// bound the vocabulary
	filter := heap.NewTopKFilter[string, int](v.maxFeatures)
	for term, count := range corpus {
		filter.Push(term, count)
	}
	terms, _ := filter.PopAll()
	v.terms = terms
	v.index = make(map[string]int, len(terms))
	for i, term := range terms {
		v.index[term] = i
	}
	// smoothed inverse document frequency
	v.idf = make([]float32, len(terms))
	for i, term := range terms {
		v.idf[i] = math32.Log(float32(1+len(docs))/float32(1+documents[term])) + 1
	}
	// weight and normalize rows
	rows := make([][]float32, len(docs))
	for i := range docs {
		rows[i] = v.transform(counts[i])
	}
	return rows
}

func (v *Vectorizer) transform(counts map[string]int) []float32 {
	row := make([]float32, len(v.terms))
	for term, count := range counts {
		if i, exist := v.index[term]; exist {
			row[i] = float32(count) * v.idf[i]
		}
	}
	if norm := floats.Norm(row); norm > 0 {
		floats.Scale(row, 1/norm)
	}
	return row
}

// Tokenize lowercases a document, splits it into alphanumeric tokens of at
// least two characters, removes stop words and appends bigrams.
func Tokenize(doc string) []string {
	fields := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len([]rune(field)) < 2 || stopWords.Contains(field) {
			continue
		}
		tokens = append(tokens, field)
	}
	terms := make([]string, 0, 2*len(tokens))
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
