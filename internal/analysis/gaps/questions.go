package gaps

import (
	"fmt"
	"regexp"
	"strings"

	"citation-intelligence/internal/models"
)

// QuestionType is the phrasing family a tracked query belongs to.
type QuestionType string

const (
	QuestionWhatIs       QuestionType = "what_is"
	QuestionHowTo        QuestionType = "how_to"
	QuestionWhy          QuestionType = "why"
	QuestionWhen         QuestionType = "when"
	QuestionWhere        QuestionType = "where"
	QuestionWhich        QuestionType = "which"
	QuestionBest         QuestionType = "best"
	QuestionVsComparison QuestionType = "vs_comparison"
	QuestionGeneral      QuestionType = "general"
)

// questionPatterns are tried in order; the first match wins.
var questionPatterns = []struct {
	qtype QuestionType
	re    *regexp.Regexp
}{
	{QuestionWhatIs, regexp.MustCompile(`\bwhat\s+is\b`)},
	{QuestionHowTo, regexp.MustCompile(`\bhow\s+to\b|\bhow\s+do\b|\bhow\s+can\b`)},
	{QuestionWhy, regexp.MustCompile(`\bwhy\b`)},
	{QuestionWhen, regexp.MustCompile(`\bwhen\b`)},
	{QuestionWhere, regexp.MustCompile(`\bwhere\b`)},
	{QuestionWhich, regexp.MustCompile(`\bwhich\b`)},
	{QuestionBest, regexp.MustCompile(`\bbest\b`)},
	{QuestionVsComparison, regexp.MustCompile(`\bvs\b|\bversus\b`)},
}

// highValueQuestions are the variations synthesised for single-phrasing
// topics, in emission order.
var highValueQuestions = []QuestionType{QuestionWhatIs, QuestionHowTo, QuestionBest}

var questionStopWords = map[string]bool{
	"what": true, "is": true, "how": true, "to": true, "do": true, "can": true, "why": true,
	"when": true, "where": true, "which": true, "the": true, "a": true, "an": true,
}

func classifyQuestion(query string) QuestionType {
	q := strings.ToLower(query)
	for _, p := range questionPatterns {
		if p.re.MatchString(q) {
			return p.qtype
		}
	}
	return QuestionGeneral
}

// topicKey is the first three content words of a query, or "" if it has none.
func topicKey(query string) string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if questionStopWords[w] {
			continue
		}
		words = append(words, w)
		if len(words) == 3 {
			break
		}
	}
	return strings.Join(words, " ")
}

func questionVariation(topic string, qt QuestionType) string {
	switch qt {
	case QuestionWhatIs:
		return fmt.Sprintf("What is %s?", topic)
	case QuestionHowTo:
		return "How to " + topic
	case QuestionBest:
		return "Best " + topic
	case QuestionWhy:
		return "Why " + topic
	case QuestionWhen:
		return "When " + topic
	case QuestionWhere:
		return "Where " + topic
	case QuestionWhich:
		return "Which " + topic
	case QuestionVsComparison:
		return topic + " vs alternatives"
	default:
		return topic
	}
}

func questionContentType(qt QuestionType) models.ContentType {
	switch qt {
	case QuestionWhatIs:
		return models.ContentExplainerArticle
	case QuestionHowTo:
		return models.ContentTutorialGuide
	case QuestionBest:
		return models.ContentComparisonReview
	case QuestionWhy:
		return models.ContentAnalyticalArticle
	case QuestionWhen:
		return models.ContentTimingGuide
	case QuestionWhere:
		return models.ContentDirectoryArticle
	case QuestionWhich:
		return models.ContentSelectionGuide
	case QuestionVsComparison:
		return models.ContentComparisonArticle
	default:
		return models.ContentComprehensiveArticle
	}
}

func questionAngles(qt QuestionType, topic string) []string {
	switch qt {
	case QuestionWhatIs:
		return []string{
			fmt.Sprintf("Complete beginner's guide to %s", topic),
			fmt.Sprintf("Visual explanation of %s with examples", topic),
			fmt.Sprintf("%s explained in simple terms", topic),
		}
	case QuestionHowTo:
		return []string{
			fmt.Sprintf("Step-by-step %s tutorial", topic),
			fmt.Sprintf("%s for beginners", topic),
			fmt.Sprintf("Advanced %s techniques", topic),
		}
	case QuestionBest:
		return []string{
			fmt.Sprintf("Top-rated %s options", topic),
			fmt.Sprintf("%s comparison with pros and cons", topic),
			fmt.Sprintf("Expert recommendations for %s", topic),
		}
	default:
		return []string{fmt.Sprintf("Comprehensive guide to %s", topic)}
	}
}
