package aggregation

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fundrisk/internal/domain"
	fixtures "github.com/aristath/fundrisk/internal/testing"
)

var monday = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

func TestAggregator_Aggregate(t *testing.T) {
	agg := NewAggregator(Config{MinFiles: 21, Workers: 4}, zerolog.Nop())
	docs := fixtures.NAVSeries(monday, fixtures.FlatNAVs(22, 1.5)...)

	// reversed input order must come back sorted by date
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}

	res, err := agg.Aggregate(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, 22, res.Documents)
	assert.Equal(t, 22, res.Valid())
	assert.Empty(t, res.Failures)
	for i := 1; i < len(res.Statements); i++ {
		assert.False(t, res.Statements[i].StatementDate.Before(*res.Statements[i-1].StatementDate))
	}
	assert.Equal(t, "2024-03-04", res.Statements[0].StatementDate.Format("2006-01-02"))
}

func TestAggregator_InsufficientDocuments(t *testing.T) {
	agg := NewAggregator(Config{MinFiles: 21, Workers: 2}, zerolog.Nop())
	docs := fixtures.NAVSeries(monday, fixtures.FlatNAVs(20, 1.5)...)

	res, err := agg.Aggregate(context.Background(), docs)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientSample)
	assert.Contains(t, err.Error(), "20 files provided, 21 required")
	assert.Empty(t, res.Statements)
	assert.Equal(t, 20, res.Documents)
}

func TestAggregator_InsufficientValid(t *testing.T) {
	agg := NewAggregator(Config{MinFiles: 21, Workers: 3}, zerolog.Nop())
	docs := fixtures.NAVSeries(monday, fixtures.FlatNAVs(20, 1.5)...)
	docs = append(docs,
		domain.Document{Name: "broken.xml", Data: []byte("<arquivoposicao><header>")},
		domain.Document{Name: "feed.xml", Data: []byte("<rss/>")},
	)

	res, err := agg.Aggregate(context.Background(), docs)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientSample)
	assert.Equal(t, 20, res.Valid())
	require.Len(t, res.Failures, 2)
	assert.Equal(t, "broken.xml", res.Failures[0].Source)
	assert.Equal(t, "structural_parse_error", res.Failures[0].Kind)
	assert.Equal(t, "feed.xml", res.Failures[1].Source)
	assert.Equal(t, "format_unrecognized", res.Failures[1].Kind)
}

func TestAggregator_FailuresDoNotAbort(t *testing.T) {
	agg := NewAggregator(Config{MinFiles: 3, Workers: 2}, zerolog.Nop())
	docs := fixtures.NAVSeries(monday, 1.0, 1.1, 1.2)
	docs = append([]domain.Document{{Name: "bad.xml", Data: []byte("not xml")}}, docs...)

	res, err := agg.Aggregate(context.Background(), docs)

	require.NoError(t, err)
	assert.Equal(t, 3, res.Valid())
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "bad.xml", res.Failures[0].Source)
}

func TestAggregator_UndatedCountTowardMinimum(t *testing.T) {
	agg := NewAggregator(Config{MinFiles: 2, Workers: 1}, zerolog.Nop())
	undated := []byte(`<arquivoposicao_4_01><fundo><header><valorcota>1</valorcota><patliq>1</patliq></header></fundo></arquivoposicao_4_01>`)
	docs := append([]domain.Document{{Name: "undated.xml", Data: undated}}, fixtures.NAVSeries(monday, 1.0)...)

	res, err := agg.Aggregate(context.Background(), docs)

	require.NoError(t, err)
	require.Len(t, res.Statements, 2)
	assert.NotNil(t, res.Statements[0].StatementDate)
	assert.Nil(t, res.Statements[1].StatementDate)
	assert.Positive(t, res.Gaps)
}

func TestAggregator_Cancelled(t *testing.T) {
	agg := NewAggregator(Config{MinFiles: 1, Workers: 1}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.Aggregate(ctx, fixtures.NAVSeries(monday, 1.0, 1.1))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAggregator_Defaults(t *testing.T) {
	agg := NewAggregator(Config{}, zerolog.Nop())
	assert.Equal(t, DefaultMinFiles, agg.MinFiles())
}
