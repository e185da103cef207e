package service

import (
	_ "embed"

	"github.com/Kush-Singh-26/lectern/archive/models"
)

// SampleID is the id the embedded sample article is served under. The
// sample is only indexed when the sampleArticle config flag is set.
const SampleID = 0

//go:embed sample.md
var sampleMarkdown []byte

// SampleMeta returns the metadata of the embedded sample article.
func SampleMeta() models.ArticleMeta {
	return models.ArticleMeta{
		ID:          SampleID,
		Title:       "Universal Declaration of Human Rights",
		Description: "An overview of the Universal Declaration of Human Rights, adopted by the United Nations General Assembly on 10 December 1948, and its role in establishing a universal framework for fundamental rights and freedoms.",
		Date:        19481210,
		Tags:        []string{"Politics", "History"},
		Keywords:    []string{"human rights", "united nations"},
	}
}
