package services

import (
	"customs-analytics-service/internal/domain"
	"math"
	"slices"
	"strings"
	"unicode"
)

// TermOptions controls the delay reason text summary.
type TermOptions struct {
	// MaxVocabulary caps the vocabulary at the most frequent terms.
	MaxVocabulary int

	// TopTerms is how many highest-weight terms to report.
	TopTerms int

	// ExtraStopwords are dropped in addition to the built-in list.
	ExtraStopwords []string
}

// DelayReasonTerms summarizes free-text delay reasons with TF-IDF.
//
// Text is lowercased and split into letter-or-digit runs; tokens
// shorter than two characters and stopwords are dropped. Empty reasons
// do not count as documents. The vocabulary keeps the MaxVocabulary
// most frequent terms across the corpus, and each kept term is scored
// by its total term frequency times a smoothed inverse document
// frequency, ln((1+n)/(1+df)) + 1. Ties break on the term itself.
func DelayReasonTerms(reasons []string, opts TermOptions) []domain.TermWeight {
	if opts.MaxVocabulary <= 0 || opts.TopTerms <= 0 {
		return nil
	}

	stop := make(map[string]bool, len(englishStopwords)+len(opts.ExtraStopwords))
	for _, w := range englishStopwords {
		stop[w] = true
	}
	for _, w := range opts.ExtraStopwords {
		stop[strings.ToLower(w)] = true
	}

	type termCount struct {
		total int
		docs  int
	}
	counts := make(map[string]*termCount)
	docs := 0

	for _, reason := range reasons {
		tokens := tokenize(reason, stop)
		if len(tokens) == 0 {
			continue
		}
		docs++

		inDoc := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			c := counts[t]
			if c == nil {
				c = &termCount{}
				counts[t] = c
			}
			c.total++
			if !inDoc[t] {
				c.docs++
				inDoc[t] = true
			}
		}
	}

	if docs == 0 {
		return nil
	}

	vocab := make([]string, 0, len(counts))
	for t := range counts {
		vocab = append(vocab, t)
	}
	slices.SortFunc(vocab, func(a, b string) int {
		if counts[a].total != counts[b].total {
			return counts[b].total - counts[a].total
		}
		return strings.Compare(a, b)
	})
	if len(vocab) > opts.MaxVocabulary {
		vocab = vocab[:opts.MaxVocabulary]
	}

	weights := make([]domain.TermWeight, 0, len(vocab))
	for _, t := range vocab {
		c := counts[t]
		idf := math.Log(float64(1+docs)/float64(1+c.docs)) + 1
		weights = append(weights, domain.TermWeight{
			Term:      t,
			Weight:    float64(c.total) * idf,
			Documents: c.docs,
		})
	}

	slices.SortFunc(weights, func(a, b domain.TermWeight) int {
		if a.Weight > b.Weight {
			return -1
		}
		if a.Weight < b.Weight {
			return 1
		}
		return strings.Compare(a.Term, b.Term)
	})

	if len(weights) > opts.TopTerms {
		weights = weights[:opts.TopTerms]
	}
	return weights
}

func tokenize(text string, stop map[string]bool) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || stop[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// englishStopwords is the built-in stopword list applied to delay
// reason text. It covers common English function words; domain noise
// words are added per deployment through the config.
var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am",
	"an", "and", "any", "are", "as", "at", "be", "because", "been",
	"before", "being", "below", "between", "both", "but", "by", "can",
	"cannot", "could", "did", "do", "does", "doing", "down", "during",
	"each", "few", "for", "from", "further", "had", "has", "have",
	"having", "he", "her", "here", "hers", "herself", "him", "himself",
	"his", "how", "i", "if", "in", "into", "is", "it", "its", "itself",
	"just", "me", "more", "most", "my", "myself", "no", "nor", "not",
	"now", "of", "off", "on", "once", "only", "or", "other", "our",
	"ours", "ourselves", "out", "over", "own", "same", "she", "should",
	"so", "some", "such", "than", "that", "the", "their", "theirs",
	"them", "themselves", "then", "there", "these", "they", "this",
	"those", "through", "to", "too", "under", "until", "up", "very",
	"was", "we", "were", "what", "when", "where", "which", "while",
	"who", "whom", "why", "will", "with", "would", "you", "your",
	"yours", "yourself", "yourselves",
}
