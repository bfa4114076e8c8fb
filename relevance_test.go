package socialarchive_test

import (
	"testing"

	"github.com/fwojciec/socialarchive"
	"github.com/stretchr/testify/assert"
)

func TestIsRelevant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"see the exam next week", true},
		{"tenta on friday", true},
		{"two labs and three exercises", true},
		{"homework", true},
		{"formula sheet", true},
		{"answer-key", true},
		{"Omtenta i augusti", true},
		{"TENTA", true},
		{"assignment 2", true},
		{"Assigment due", true},
		{"Lab 1", true},
		{"Övning 3", true},
		{"övning", true},
		{"ovning", true},
		{"Läxa till måndag", true},
		{"inlämning", true},
		{"munta", true},
		{"quiz", true},
		{"Examination", true},
		{"uppgift", true},
		{"seminar", true},
		{"facit", true},
		{"kontrollskrivning", true},
		{"salsskrivning", true},
		{"salskrivning", true},
		{"formelsamling", true},
		{"<p>lab</p>", true},
		{"lab_report", false},
		{"laboratory", false},
		{"tentamen", false},
		{"collaborate", false},
		{"slaboration", false},
		{"kursövningar", false},
		{"welcome to the course", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, socialarchive.IsRelevant(tt.text))
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, socialarchive.KindExtract, socialarchive.KindOf("a/b/notes.pdf"))
	assert.Equal(t, socialarchive.KindExtract, socialarchive.KindOf("poster.AI"))
	assert.Equal(t, socialarchive.KindOpaque, socialarchive.KindOf("photo.JPG"))
	assert.Equal(t, socialarchive.KindOpaque, socialarchive.KindOf("slides.pptx"))
	assert.Equal(t, socialarchive.KindOpaque, socialarchive.KindOf("dump.pcap"))
	assert.Equal(t, socialarchive.KindText, socialarchive.KindOf("readme.txt"))
	assert.Equal(t, socialarchive.KindText, socialarchive.KindOf("Makefile"))
	assert.Equal(t, "extract", socialarchive.KindExtract.String())
}
