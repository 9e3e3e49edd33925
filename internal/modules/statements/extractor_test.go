package statements

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fundrisk/internal/domain"
)

func TestParser_Failures(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		kind   ErrorKind
		target error
		format domain.FormatTag
	}{
		{"malformed xml", `<arquivoposicao><header>`, KindStructural, ErrMalformedXML, domain.FormatUnknown},
		{"empty input", ``, KindStructural, ErrMalformedXML, domain.FormatUnknown},
		{"unknown format", `<rss><channel/></rss>`, KindUnrecognized, ErrUnknownFormat, domain.FormatUnknown},
	}

	parser := NewParser(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parser.Parse("bad.xml", []byte(tt.data))

			require.NotNil(t, res.Err)
			assert.Equal(t, tt.kind, res.Err.Kind)
			assert.ErrorIs(t, res.Err, tt.target)
			assert.Equal(t, "bad.xml", res.Err.Source)

			s := res.Statement
			assert.True(t, s.Failed())
			assert.Equal(t, "bad.xml", s.Source)
			assert.Equal(t, tt.format, s.Format)
			assert.Nil(t, s.StatementDate)
			assert.Nil(t, s.NAVPerShare)
			assert.Empty(t, s.Positions)
		})
	}
}

func TestExtractorFor(t *testing.T) {
	simple, ok := ExtractorFor(domain.FormatSimple, zerolog.Nop())
	require.True(t, ok)
	assert.Equal(t, domain.FormatSimple, simple.Format())

	iso, ok := ExtractorFor(domain.FormatISO20022, zerolog.Nop())
	require.True(t, ok)
	assert.Equal(t, domain.FormatISO20022, iso.Format())

	_, ok = ExtractorFor(domain.FormatUnknown, zerolog.Nop())
	assert.False(t, ok)
}
