package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const madarCorpus26 = "sent\tlang\tsplit\n" +
	"شو بدك\tBEI\tcorpus-26-train\n" +
	"ازيك عامل ايه\tCAI\tcorpus-26-train\n" +
	"واش كاين\tRAB\tcorpus-26-dev\n" +
	"فين غادي\tRAB\tcorpus-26-test\n" +
	"ignored row\tCAI\tcorpus-26-other\n"

const madarCorpus6 = "sent\tlang\tsplit\n" +
	"شو بدك\tBEI\tcorpus-6-train\n" +
	"\tCAI\tcorpus-6-train\n" +
	"كيفك\tBEI\tcorpus-6-test\n"

func TestLoadMADAR(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "MADAR_Corpus26.tsv", madarCorpus26)
	writeFile(t, dir, "MADAR_Corpus6.tsv", madarCorpus6)
	writeFile(t, dir, "notes.txt", "not a corpus")

	s, err := LoadMADAR(context.Background(), dir)
	require.NoError(t, err)

	// files are read in name order: Corpus26 then Corpus6
	require.Len(t, s.Train, 4)
	assert.Equal(t, Document{Text: "شو بدك", Label: "BEI", City: "BEI"}, s.Train[0])
	assert.Equal(t, "CAI", s.Train[1].City)
	assert.Equal(t, "", s.Train[3].Text, "loader keeps raw rows; Clean drops them")

	require.Len(t, s.Validation, 1)
	assert.Equal(t, "RAB", s.Validation[0].Label)
	require.Len(t, s.Test, 2)
}

func TestLoadMADAR_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadMADAR(context.Background(), t.TempDir())
	require.ErrorIs(t, err, ErrNoData)

	dir := t.TempDir()
	writeFile(t, dir, "broken.tsv", "sent\tsplit\nشو\tcorpus-26-train\n")
	_, err = LoadMADAR(context.Background(), dir)
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "lang")
}

func TestLoadQADI(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "train.tsv", "text\tlabel\nانا رايح\tEG\nشلونك\tIQ\n")
	writeFile(t, dir, "validation-00000-of-00001.csv", "\uFEFFtext,label\n\"ايش تبي\",SA\n")
	writeFile(t, dir, "test.csv", "label,text\nMA,واش\n")

	s, err := LoadQADI(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []Document{
		{Text: "انا رايح", Label: "EG", City: Unknown},
		{Text: "شلونك", Label: "IQ", City: Unknown},
	}, s.Train)
	assert.Equal(t, []Document{{Text: "ايش تبي", Label: "SA", City: Unknown}}, s.Validation)
	assert.Equal(t, []Document{{Text: "واش", Label: "MA", City: Unknown}}, s.Test)
}

func TestLoadQADI_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "train.tsv", "text\tlabel\nانا\tEG\n")
	_, err := LoadQADI(context.Background(), dir)
	require.ErrorIs(t, err, ErrNoData)

	writeFile(t, dir, "validation.tsv", "text\tcountry\nانا\tEG\n")
	writeFile(t, dir, "test.tsv", "text\tlabel\nانا\tEG\n")
	_, err = LoadQADI(context.Background(), dir)
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	madar := t.TempDir()
	writeFile(t, madar, "corpus.tsv", madarCorpus26+"شو بدك\tBEI\tcorpus-26-train\n")

	qadi := t.TempDir()
	writeFile(t, qadi, "train.tsv", "text\tlabel\nشو بدك\tLB\nشو بدك\tLB\n \tEG\n")
	writeFile(t, qadi, "validation.tsv", "text\tlabel\nواش\tMA\n")
	writeFile(t, qadi, "test.tsv", "text\tlabel\nكيفك\t\n")

	s, err := Load(context.Background(), Sources{MADARDir: madar, QADIDir: qadi})
	require.NoError(t, err)

	// MADAR rows first, duplicates within and across sources collapse on (text, label)
	assert.Equal(t, []Document{
		{Text: "شو بدك", Label: "BEI", City: "BEI"},
		{Text: "ازيك عامل ايه", Label: "CAI", City: "CAI"},
		{Text: "شو بدك", Label: "LB", City: Unknown},
	}, s.Train)
	assert.Len(t, s.Validation, 2)
	assert.Len(t, s.Test, 1, "QADI row without label is dropped")

	_, err = Load(context.Background(), Sources{})
	require.ErrorIs(t, err, ErrNoData)
}

func TestClean(t *testing.T) {
	t.Parallel()

	got := Clean([]Document{
		{Text: " نص ", Label: "EG"},
		{Text: "نص", Label: "EG", City: "CAI"},
		{Text: "نص", Label: "SA"},
		{Text: "", Label: "EG"},
		{Text: "نص اخر", Label: ""},
	})
	assert.Equal(t, []Document{
		{Text: "نص", Label: "EG", City: Unknown},
		{Text: "نص", Label: "SA", City: Unknown},
	}, got)
}

func TestTarget(t *testing.T) {
	t.Parallel()

	d := Document{Text: "x", Label: "EG", City: "CAI"}

	target, err := ParseTarget(" City ")
	require.NoError(t, err)
	assert.Equal(t, TargetCity, target)
	assert.Equal(t, "CAI", target.Of(d))
	assert.Equal(t, "EG", TargetLabel.Of(d))

	_, err = ParseTarget("region")
	require.ErrorIs(t, err, ErrUnknownTarget)
}

func TestLabelCounts(t *testing.T) {
	t.Parallel()

	docs := []Document{
		{Label: "EG", City: "CAI"},
		{Label: "EG", City: Unknown},
		{Label: "SA", City: "RIY"},
	}
	assert.Equal(t, map[string]int{"CAI": 1, "RIY": 1}, LabelCounts(docs, TargetCity))
	assert.Equal(t, map[string]int{"EG": 2, "SA": 1}, LabelCounts(docs, TargetLabel))
	assert.Len(t, UniqueCities(docs), 3)
}

func TestIsLabeled(t *testing.T) {
	t.Parallel()

	assert.True(t, IsLabeled("EG"))
	assert.False(t, IsLabeled(""))
	assert.False(t, IsLabeled(Unknown))
}
