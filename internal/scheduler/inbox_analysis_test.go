package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fundrisk/internal/domain"
	"github.com/aristath/fundrisk/internal/modules/analysis"
	"github.com/aristath/fundrisk/internal/modules/sources"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Name() string { return "inbox" }

func (m *mockSource) Load(ctx context.Context) (sources.Batch, error) {
	args := m.Called(ctx)
	return args.Get(0).(sources.Batch), args.Error(1)
}

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, batch sources.Batch, opts analysis.Options) (*analysis.Report, error) {
	args := m.Called(ctx, batch, opts)
	report, _ := args.Get(0).(*analysis.Report)
	return report, args.Error(1)
}

func TestInboxAnalysisJob_Run(t *testing.T) {
	batch := sources.Batch{Documents: []domain.Document{{Name: "a.xml", Data: []byte("<a/>")}}}

	tests := []struct {
		name    string
		loadErr error
		report  *analysis.Report
		runErr  error
		wantErr string
	}{
		{
			name:   "analyzes loaded batch",
			report: &analysis.Report{ID: "r1", ValidationStatus: analysis.StatusInsufficientSample},
		},
		{
			name:    "load failure",
			loadErr: errors.New("bucket gone"),
			wantErr: "failed to load inbox: bucket gone",
		},
		{
			name:    "analysis failure",
			runErr:  errors.New("boom"),
			wantErr: "failed to analyze inbox: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(mockSource)
			src.On("Load", mock.Anything).Return(batch, tt.loadErr)

			analyzer := new(mockAnalyzer)
			if tt.loadErr == nil {
				analyzer.On("Analyze", mock.Anything, batch, analysis.Options{Source: "inbox"}).
					Return(tt.report, tt.runErr)
			}

			job := NewInboxAnalysisJob(InboxAnalysisConfig{
				Log:      zerolog.Nop(),
				Source:   src,
				Analyzer: analyzer,
				Timeout:  time.Second,
			})
			assert.Equal(t, "inbox_analysis", job.Name())
			assert.Equal(t, "inbox", job.Source())

			err := job.Run()
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			src.AssertExpectations(t)
			analyzer.AssertExpectations(t)
		})
	}
}
