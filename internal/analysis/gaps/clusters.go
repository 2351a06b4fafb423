package gaps

import (
	"fmt"
	"sort"

	"citation-intelligence/internal/analysis/textmining"
	"citation-intelligence/internal/models"

	"gonum.org/v1/gonum/stat"
)

type queryCluster struct {
	id      int
	queries []string
}

func (c queryCluster) avgCitations(in *input) float64 {
	counts := make([]float64, len(c.queries))
	for i, q := range c.queries {
		counts[i] = float64(len(in.byQuery[q]))
	}
	return stat.Mean(counts, nil)
}

// isUnderRepresented reports whether q is cited less than half as often as
// its cluster average and fewer than three times.
func (c queryCluster) isUnderRepresented(in *input, q string, avg float64) bool {
	n := len(in.byQuery[q])
	return float64(n) < avg*0.5 && n < 3
}

// clusterTracked groups tracked queries by TF-IDF similarity into
// min(5, n/4) clusters, keeping clusters with two or more queries. Too few
// queries yield no clusters and no error.
func (a *Analyzer) clusterTracked(tracked []string) ([]queryCluster, error) {
	if len(tracked) < a.cfg.MinClusterQueries {
		return nil, nil
	}
	k := min(5, len(tracked)/4)
	if k < 2 {
		return nil, nil
	}
	labels, err := textmining.ClusterTexts(tracked, k, a.cfg.MaxFeatures, a.cfg.ClusterSeed)
	if err != nil {
		return nil, fmt.Errorf("cluster tracked queries: %w", err)
	}

	var out []queryCluster
	for id := 0; id < k; id++ {
		c := queryCluster{id: id}
		for i, q := range tracked {
			if labels[i] == id {
				c.queries = append(c.queries, q)
			}
		}
		if len(c.queries) >= 2 {
			out = append(out, c)
		}
	}
	return out, nil
}

// TopicClusters describes how citations spread over clusters of similar
// tracked queries.
func (a *Analyzer) TopicClusters(records []models.CitationRecord, trackedQueries []string) ([]models.TopicCluster, error) {
	in := newInput(records, trackedQueries, nil)
	clusters, err := a.clusterTracked(in.tracked)
	if err != nil {
		return nil, err
	}

	out := make([]models.TopicCluster, 0, len(clusters))
	for _, c := range clusters {
		avg := c.avgCitations(in)

		var cited []models.CitationRecord
		rep, repCount := c.queries[0], -1
		gapsIn := make([]string, 0)
		for _, q := range c.queries {
			n := len(in.byQuery[q])
			cited = append(cited, in.byQuery[q]...)
			if n > repCount {
				rep, repCount = q, n
			}
			if c.isUnderRepresented(in, q, avg) {
				gapsIn = append(gapsIn, q)
			}
		}
		related := make([]string, 0, len(c.queries)-1)
		for _, q := range c.queries {
			if q != rep {
				related = append(related, q)
			}
		}

		tc := models.TopicCluster{
			ClusterID:           fmt.Sprintf("cluster_%d", c.id),
			RepresentativeQuery: rep,
			RelatedQueries:      related,
			TotalCitations:      len(cited),
			DominantDomains:     dominantDomains(cited, 3),
			ContentTypes:        make([]models.CitationType, 0),
			GapOpportunities:    gapsIn,
		}
		if len(cited) > 0 {
			prom := make([]float64, len(cited))
			seen := make(map[models.CitationType]bool)
			for i, r := range cited {
				prom[i] = r.ProminenceScore
				if r.CitationType != "" && !seen[r.CitationType] {
					seen[r.CitationType] = true
					tc.ContentTypes = append(tc.ContentTypes, r.CitationType)
				}
			}
			tc.AvgCitationStrength = stat.Mean(prom, nil)
		}
		out = append(out, tc)
	}
	return out, nil
}

// dominantDomains returns the n most cited domains, ties by name.
func dominantDomains(records []models.CitationRecord, n int) []string {
	counts := make(map[string]int)
	for _, r := range records {
		if r.SourceDomain != "" {
			counts[r.SourceDomain]++
		}
	}
	domains := make([]string, 0, len(counts))
	for d := range counts {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool {
		if counts[domains[i]] != counts[domains[j]] {
			return counts[domains[i]] > counts[domains[j]]
		}
		return domains[i] < domains[j]
	})
	if len(domains) > n {
		domains = domains[:n]
	}
	return domains
}
