package textmining

import "sort"

// ClusterTexts vectorises docs and partitions them into k groups, returning
// one label per doc in input order.
func ClusterTexts(docs []string, k, maxFeatures int, seed int64) ([]int, error) {
	m, err := NewVectorizer(maxFeatures).FitTransform(docs)
	if err != nil {
		return nil, err
	}
	c, err := NewKMeans(k, seed).Fit(m.Rows)
	if err != nil {
		return nil, err
	}
	return c.Labels, nil
}

// Similar ranks candidates by TF-IDF cosine similarity to query and returns
// up to limit of them scoring strictly above threshold, most similar first.
// The vocabulary is fitted on candidates plus query.
func Similar(query string, candidates []string, threshold float64, limit int) ([]string, error) {
	docs := append(append(make([]string, 0, len(candidates)+1), candidates...), query)
	m, err := NewVectorizer(0).FitTransform(docs)
	if err != nil {
		return nil, err
	}
	q := m.Rows[len(m.Rows)-1]

	type scored struct {
		idx int
		sim float64
	}
	ranked := make([]scored, len(candidates))
	for i := range candidates {
		ranked[i] = scored{idx: i, sim: Cosine(q, m.Rows[i])}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].sim > ranked[j].sim })

	var out []string
	for i := 0; i < len(ranked) && i < limit; i++ {
		if ranked[i].sim > threshold {
			out = append(out, candidates[ranked[i].idx])
		}
	}
	return out, nil
}
