package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"
)

// --- Mocks ---

// stubCall は mockAIClient が1回の呼び出しで返す内容です。
type stubCall struct {
	resp *gemini.Response
	err  error
}

type mockAIClient struct {
	mu    sync.Mutex
	queue []stubCall
	calls []struct {
		model string
		parts []*genai.Part
		opts  gemini.GenerateOptions
	}
}

func (m *mockAIClient) enqueue(resp *gemini.Response, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, stubCall{resp: resp, err: err})
}

func (m *mockAIClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockAIClient) GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
	return nil, nil
}

func (m *mockAIClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, struct {
		model string
		parts []*genai.Part
		opts  gemini.GenerateOptions
	}{model, parts, opts})

	if len(m.queue) == 0 {
		return textResponse(`{"modifiedPrompt": "unscripted"}`), nil
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	return next.resp, next.err
}

func (m *mockAIClient) UploadFile(ctx context.Context, data []byte, mimeType, displayName string) (string, string, error) {
	return "", "", nil
}

func (m *mockAIClient) DeleteFile(ctx context.Context, name string) error {
	return nil
}

func (m *mockAIClient) GetFile(ctx context.Context, name string) (*genai.File, error) {
	return nil, nil
}

// textResponse はテキスト1パートの応答を組み立てます。
func textResponse(text string) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
			}},
		},
	}
}

// imageResponse はインライン画像1パートの応答を組み立てます。
func imageResponse(data []byte, mimeType string) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{
					InlineData: &genai.Blob{MIMEType: mimeType, Data: data},
				}}},
			}},
		},
	}
}

type mockCache struct {
	mu   sync.Mutex
	data map[string]any
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]any)}
}

func (m *mockCache) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	return val, ok
}

func (m *mockCache) Set(key string, value any, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
}

type mockHTTPClient struct {
	data    []byte
	err     error
	lastURL string
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.lastURL = url
	return m.data, m.err
}

// mockVideoOperator は指定回数のポーリング後に完了するオペレーションを模倣します。
type mockVideoOperator struct {
	launchErr    error
	pollErr      error
	pollsNeeded  int
	polls        int
	launched     bool
	lastPrompt   string
	resultVideo  *genai.Video
	emptyOnDone  bool
}

func (m *mockVideoOperator) Launch(ctx context.Context, model, prompt string, image *genai.Image) (*genai.GenerateVideosOperation, error) {
	m.launched = true
	m.lastPrompt = prompt
	if m.launchErr != nil {
		return nil, m.launchErr
	}
	op := &genai.GenerateVideosOperation{}
	if m.pollsNeeded == 0 {
		m.finish(op)
	}
	return op, nil
}

func (m *mockVideoOperator) Poll(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	if m.pollErr != nil {
		return nil, m.pollErr
	}
	m.polls++
	if m.polls >= m.pollsNeeded {
		m.finish(op)
	}
	return op, nil
}

func (m *mockVideoOperator) finish(op *genai.GenerateVideosOperation) {
	op.Done = true
	if m.emptyOnDone {
		return
	}
	op.Response = &genai.GenerateVideosResponse{
		GeneratedVideos: []*genai.GeneratedVideo{{Video: m.resultVideo}},
	}
}
