package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordsFromProfileText(t *testing.T) {
	got := Keywords("5 years Python backend engineer, AWS, distributed systems")

	assert.Equal(t, []string{"python", "backend", "engineer", "aws", "distributed", "systems"}, got)
}

func TestKeywordsRankByFrequency(t *testing.T) {
	got := Keywords("golang tooling, golang services, kubernetes")

	assert.Equal(t, []string{"golang", "tooling", "services", "kubernetes"}, got)
}

func TestKeywordsDropShortAndStopWords(t *testing.T) {
	got := Keywords("the cat and dog ran far with that")

	assert.Empty(t, got)
}

func TestKeywordsKeepAcronyms(t *testing.T) {
	got := Keywords("NIH funded research on ML6 pipelines")

	assert.Contains(t, got, "nih")
	assert.Contains(t, got, "ml6")
	assert.Contains(t, got, "pipelines")
}

func TestKeywordsIgnoreLowercaseShortTokens(t *testing.T) {
	got := Keywords("go dev api")

	assert.NotContains(t, got, "go")
	assert.NotContains(t, got, "dev")
	// "API" would qualify as an acronym, lowercase "api" does not.
	assert.NotContains(t, got, "api")
}

func TestKeywordsCapCount(t *testing.T) {
	words := []string{
		"mathematics", "physics", "chemistry", "biology", "genetics",
		"astronomy", "geology", "ecology", "robotics", "statistics",
	}

	got := Keywords(strings.Join(words, " "))
	assert.Len(t, got, 8)
}

func TestKeywordsStripPunctuation(t *testing.T) {
	got := Keywords("C++/Rust, low-latency (embedded)")

	assert.Contains(t, got, "rust")
	assert.Contains(t, got, "latency")
	assert.Contains(t, got, "embedded")
}

func TestKeywordsEmptyInput(t *testing.T) {
	assert.Empty(t, Keywords(""))
	assert.Empty(t, Keywords("   \n\t  "))
}
