package mcp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil paper service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Chat: &mockChatService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingPaperService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Papers: &mockPaperService{},
			Chat:   &mockChatService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("empty ports", func(t *testing.T) {
		assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingPaperService)
	})

	t.Run("nil chat service returns error", func(t *testing.T) {
		ports := &Ports{Papers: &mockPaperService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingChatService)
	})

	t.Run("required ports only is valid", func(t *testing.T) {
		ports := &Ports{
			Papers: &mockPaperService{},
			Chat:   &mockChatService{},
		}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Papers:        &mockPaperService{},
			Chat:          &mockChatService{},
			Index:         &mockIndexService{},
			Summarization: &mockSummarizationService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		papers     []domain.Paper
		wantStatus string
		wantReady  int
	}{
		{name: "empty library", wantStatus: "ok"},
		{
			name: "ready paper",
			papers: []domain.Paper{
				{ID: "p1", Status: domain.PaperStatusReady},
				{ID: "p2", Status: domain.PaperStatusFailed},
			},
			wantStatus: "ok",
			wantReady:  1,
		},
		{
			name:       "nothing ready",
			papers:     []domain.Paper{{ID: "p1", Status: domain.PaperStatusProcessing}},
			wantStatus: "no ready papers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(&Ports{Papers: &mockPaperService{papers: tt.papers}, Chat: &mockChatService{}})
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, http.NoBody))

			require.Equal(t, http.StatusOK, rec.Code)
			var body health
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, len(tt.papers), body.Papers)
			assert.Equal(t, tt.wantReady, body.ByStatus[string(domain.PaperStatusReady)])
		})
	}
}

func TestHandler_HealthStoreError(t *testing.T) {
	server, err := NewServer(&Ports{Papers: &mockPaperService{err: errors.New("db locked")}, Chat: &mockChatService{}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, http.NoBody))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db locked")
}
