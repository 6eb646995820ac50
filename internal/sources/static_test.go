package sources

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

func drain(t *testing.T, src Source) []terms.TermRecord {
	t.Helper()
	var all []terms.TermRecord
	for {
		batch, err := src.FetchNextBatch(context.Background())
		if err == io.EOF {
			return all
		}
		require.NoError(t, err)
		all = append(all, batch...)
	}
}

func TestCuratedListsAreValid(t *testing.T) {
	lists := CuratedLists()
	require.NotEmpty(t, lists)

	names := make(map[string]bool)
	for _, l := range lists {
		assert.False(t, names[l.Source], "duplicate list %s", l.Source)
		names[l.Source] = true
		assert.NotEmpty(t, l.Entries, l.Source)

		for _, e := range l.Entries {
			rec := terms.NewTermRecord(e.Term, e.Category, l.Source, e.ConceptID, l.Confidence)
			assert.NoError(t, rec.Validate(), "%s: %q", l.Source, e.Term)
		}
	}
	assert.True(t, names["SNOMED-CT"])
	assert.True(t, names["Medical-Specialty"])
}

func TestStaticSourceEmitsOneBatch(t *testing.T) {
	src := NewStaticSource(StaticList{
		Source:     "Test",
		Confidence: 0.9,
		Entries: []StaticEntry{
			{Term: "Chest  Pain", Category: terms.CategorySymptom},
			{Term: "aspirin", Category: terms.CategoryMedication, ConceptID: "1191"},
		},
	})

	batch, err := src.FetchNextBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "chest pain", batch[0].Term)
	assert.Equal(t, "Test", batch[1].Source)
	assert.Equal(t, "1191", batch[1].ConceptID)

	_, err = src.FetchNextBatch(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "static", versionOf(src))
	assert.False(t, replaces(src))
}

func TestDefaultStaticSourcesAreFresh(t *testing.T) {
	first := DefaultStaticSources()
	for _, s := range first {
		drain(t, s)
	}
	second := DefaultStaticSources()
	batch, err := second[0].FetchNextBatch(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, batch)
}

const loincCSV = "\ufeff\"LOINC_NUM\",\"COMPONENT\",\"SYSTEM\",\"SHORTNAME\",\"LONG_COMMON_NAME\"\n" +
	"\"2345-7\",\"Glucose\",\"Ser/Plas\",\"Glucose SerPl-mCnc\",\"Glucose [Mass/volume] in Serum or Plasma\"\n" +
	"\"8867-4\",\"Heart rate\",\"XXX\",\"Heart rate\",\"Heart rate\"\n" +
	"\"1-8\",\"Hb\",\"Bld\",\"\",\"\"\n"

func TestLOINCReaderParsesRows(t *testing.T) {
	src := NewLOINCReader(strings.NewReader(loincCSV), 2)
	recs := drain(t, src)

	byTerm := make(map[string]terms.TermRecord)
	for _, r := range recs {
		byTerm[r.Term] = r
	}

	glucose, ok := byTerm["glucose"]
	require.True(t, ok)
	assert.Equal(t, terms.CategoryLabValues, glucose.Category)
	assert.Equal(t, "2345-7", glucose.ConceptID)
	assert.Equal(t, 0.95, glucose.Confidence)

	long := byTerm["glucose [mass/volume] in serum or plasma"]
	assert.Equal(t, 0.93, long.Confidence)
	assert.Equal(t, 0.90, byTerm["glucose serpl-mcnc"].Confidence)

	hr, ok := byTerm["heart rate"]
	require.True(t, ok)
	assert.Equal(t, terms.CategoryVitalSigns, hr.Category)

	// "Hb" is too short; duplicate heart rate names collapse to one record.
	_, ok = byTerm["hb"]
	assert.False(t, ok)
	assert.Len(t, recs, 4)
	assert.True(t, replaces(src))
	assert.Equal(t, "LOINC", src.Name())
}

func TestLOINCReaderRejectsMissingColumns(t *testing.T) {
	src := NewLOINCReader(strings.NewReader("CODE,NAME\n1,foo\n"), 10)
	_, err := src.FetchNextBatch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOINC_NUM")

	_, err = src.FetchNextBatch(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestLOINCSourceMissingFile(t *testing.T) {
	src := NewLOINCSource("/nonexistent/Loinc.csv", 10)
	_, err := src.FetchNextBatch(context.Background())
	require.Error(t, err)
}
