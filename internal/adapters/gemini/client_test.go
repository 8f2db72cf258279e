package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ewilliams-labs/musicmate/internal/adapters/llmchat"
	"github.com/ewilliams-labs/musicmate/internal/core/ports"
)

type fakeModels struct {
	reply  string
	err    error
	model  string
	calls  [][]*genai.Content
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.calls = append(f.calls, contents)
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(f.reply, genai.RoleModel)},
		},
	}, nil
}

func TestClient_Call(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		err         error
		wantSuccess bool
		wantErr     bool
		wantError   string
	}{
		{
			name:        "success",
			reply:       `{"message":"Try these","tracks":[]}`,
			wantSuccess: true,
		},
		{
			name:      "empty reply",
			reply:     " ",
			wantError: "gemini: empty response",
		},
		{
			name:      "api error",
			err:       genai.APIError{Code: 429, Message: "quota exceeded"},
			wantError: "gemini: 429 quota exceeded",
		},
		{
			name:    "transport error",
			err:     errors.New("dial tcp: connection refused"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := &fakeModels{reply: tt.reply, err: tt.err}
			client := newClient(models, "", 10)

			resp, err := client.Call(context.Background(), "something mellow", "", ports.AgentContext{SessionID: "s"})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
			if tt.wantSuccess {
				assert.Equal(t, tt.reply, resp.Result)
			}

			assert.Equal(t, defaultModel, models.model)
			require.NotNil(t, models.config)
			assert.Equal(t, "application/json", models.config.ResponseMIMEType)
			require.NotNil(t, models.config.SystemInstruction)
			assert.Equal(t, llmchat.SystemPrompt, models.config.SystemInstruction.Parts[0].Text)
		})
	}
}

func TestClient_CallReplaysHistory(t *testing.T) {
	models := &fakeModels{reply: `{"message":"ok"}`}
	client := newClient(models, "gemini-test", 10)
	ctx := context.Background()

	_, err := client.Call(ctx, "first", "", ports.AgentContext{SessionID: "s"})
	require.NoError(t, err)
	_, err = client.Call(ctx, "second", "", ports.AgentContext{SessionID: "s"})
	require.NoError(t, err)

	require.Len(t, models.calls, 2)
	second := models.calls[1]
	require.Len(t, second, 3)
	assert.Equal(t, string(genai.RoleUser), second[0].Role)
	assert.Equal(t, "first", second[0].Parts[0].Text)
	assert.Equal(t, string(genai.RoleModel), second[1].Role)
	assert.Equal(t, "second", second[2].Parts[0].Text)
	assert.Equal(t, "gemini-test", models.model)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "", 0)
	require.Error(t, err)
}
