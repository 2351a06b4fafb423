package textmining

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptyVocabulary is returned when no document contributes a single term
// after stop-word removal.
var ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain only stop words")

// Vectorizer builds smoothed TF-IDF vectors over word n-grams.
type Vectorizer struct {
	// MaxFeatures keeps only the most frequent terms across the corpus.
	// Zero means no limit.
	MaxFeatures int
	MinN        int
	MaxN        int
}

// NewVectorizer returns a unigram+bigram vectorizer.
func NewVectorizer(maxFeatures int) *Vectorizer {
	return &Vectorizer{MaxFeatures: maxFeatures, MinN: 1, MaxN: 2}
}

// Matrix is a dense document-term matrix. Each row is L2 normalised, or all
// zeros for a document with no retained terms.
type Matrix struct {
	Vocabulary []string
	Rows       [][]float64
}

// FitTransform learns the vocabulary and idf weights from docs and returns
// their vectors in input order.
func (v *Vectorizer) FitTransform(docs []string) (*Matrix, error) {
	minN, maxN := v.MinN, v.MaxN
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}

	termCounts := make([]map[string]int, len(docs))
	corpusCount := make(map[string]int)
	docFreq := make(map[string]int)
	for i, doc := range docs {
		counts := make(map[string]int)
		for _, term := range NGrams(Tokenize(doc), minN, maxN) {
			counts[term]++
		}
		for term, c := range counts {
			corpusCount[term] += c
			docFreq[term]++
		}
		termCounts[i] = counts
	}
	if len(corpusCount) == 0 {
		return nil, ErrEmptyVocabulary
	}

	vocab := make([]string, 0, len(corpusCount))
	for term := range corpusCount {
		vocab = append(vocab, term)
	}
	if v.MaxFeatures > 0 && len(vocab) > v.MaxFeatures {
		sort.Slice(vocab, func(i, j int) bool {
			ci, cj := corpusCount[vocab[i]], corpusCount[vocab[j]]
			if ci != cj {
				return ci > cj
			}
			return vocab[i] < vocab[j]
		})
		vocab = vocab[:v.MaxFeatures]
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	n := float64(len(docs))
	for j, term := range vocab {
		index[term] = j
		idf[j] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	rows := make([][]float64, len(docs))
	for i, counts := range termCounts {
		row := make([]float64, len(vocab))
		for term, c := range counts {
			if j, ok := index[term]; ok {
				row[j] = float64(c) * idf[j]
			}
		}
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
		rows[i] = row
	}
	return &Matrix{Vocabulary: vocab, Rows: rows}, nil
}

// Cosine returns the cosine similarity of a and b, 0 when either is a zero
// vector.
func Cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
