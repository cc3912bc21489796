package studio

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/shouni/go-portrait-kit/pkg/catalog"
	"github.com/shouni/go-portrait-kit/pkg/domain"
	"github.com/shouni/go-portrait-kit/pkg/gateway"

	"github.com/stretchr/testify/require"
)

// mockGateway は gateway.Gateway のテストダブルです。
// プロンプトのプレフィックス単位で失敗やブロックを仕込めます。
type mockGateway struct {
	mu sync.Mutex

	synthCalls   []string
	failuresLeft map[string]int // プレフィックス一致で残回数分だけ失敗させる

	// block を非 nil にすると、SynthesizeImage はチャネルが閉じるまで待ちます。
	block chan struct{}

	variations     []string
	variationsErr  error
	variationCalls int

	jobTitleFn func(prompt, jobTitle string) string
	conceptFn  func(prompt, concept string) string

	video      *domain.VideoArtifact
	videoErr   error
	videoCalls int
}

var _ gateway.Gateway = (*mockGateway)(nil)

func newMockGateway() *mockGateway {
	return &mockGateway{failuresLeft: make(map[string]int)}
}

// failPrompt は prefix に前方一致するプロンプトを times 回だけ失敗させます。
func (m *mockGateway) failPrompt(prefix string, times int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failuresLeft[prefix] = times
}

func (m *mockGateway) synthCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.synthCalls)
}

func (m *mockGateway) recordedCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.synthCalls))
	copy(calls, m.synthCalls)
	return calls
}

func (m *mockGateway) SynthesizeImage(ctx context.Context, refs []domain.ReferenceImage, prompt string) (*domain.ImageArtifact, error) {
	m.mu.Lock()
	m.synthCalls = append(m.synthCalls, prompt)
	block := m.block
	var fail bool
	for prefix, left := range m.failuresLeft {
		if left > 0 && strings.HasPrefix(prompt, prefix) {
			m.failuresLeft[prefix] = left - 1
			fail = true
			break
		}
	}
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, &gateway.GenerationFailedError{Prompt: prompt, Err: errors.New("合成に失敗したのだ")}
	}
	return &domain.ImageArtifact{Data: []byte(prompt), MimeType: "image/png"}, nil
}

func (m *mockGateway) RewriteForJobTitle(ctx context.Context, prompt, jobTitle string) string {
	if m.jobTitleFn != nil {
		return m.jobTitleFn(prompt, jobTitle)
	}
	return prompt
}

func (m *mockGateway) RewriteForConcept(ctx context.Context, prompt, concept string) string {
	if m.conceptFn != nil {
		return m.conceptFn(prompt, concept)
	}
	return prompt
}

func (m *mockGateway) GenerateVariations(ctx context.Context, prompt string) ([]string, error) {
	m.mu.Lock()
	m.variationCalls++
	m.mu.Unlock()
	if m.variationsErr != nil {
		return nil, m.variationsErr
	}
	return m.variations, nil
}

func (m *mockGateway) SynthesizeVideo(ctx context.Context, image domain.ImageArtifact, prompt string) (*domain.VideoArtifact, error) {
	m.mu.Lock()
	m.videoCalls++
	m.mu.Unlock()
	if m.videoErr != nil {
		return nil, m.videoErr
	}
	return m.video, nil
}

// poolTemplates はカテゴリごとに perCategory 件の女性向けテンプレートを作ります。
func poolTemplates(perCategory int) []catalog.Template {
	categories := []domain.StyleCategory{
		domain.CategoryProfessional,
		domain.CategoryCasual,
		domain.CategoryHighFashion,
	}
	var templates []catalog.Template
	for _, category := range categories {
		for i := range perCategory {
			templates = append(templates, catalog.Template{
				Text:     fmt.Sprintf("%s scene %02d", category, i),
				Category: category,
				Gender:   domain.GenderFemale,
			})
		}
	}
	return templates
}

func testRef() domain.ReferenceImage {
	return domain.ReferenceImage{Data: []byte{0x89, 0x50, 0x4e, 0x47}, MimeType: "image/png", Name: "face.png"}
}

// newBareStudio は参照写真なしの Studio を作ります（参照チェックのテスト用）。
func newBareStudio(t *testing.T, gw gateway.Gateway, templates []catalog.Template) *Studio {
	t.Helper()
	st, err := New(Args{
		Gateway: gw,
		Catalog: catalog.New(templates),
		Rand:    rand.New(rand.NewSource(42)),
	})
	require.NoError(t, err)
	return st
}

// newTestStudio は参照写真1枚を積んだ Studio を作ります。
func newTestStudio(t *testing.T, gw gateway.Gateway, templates []catalog.Template) *Studio {
	t.Helper()
	st := newBareStudio(t, gw, templates)
	require.NoError(t, st.Session().AddReference(testRef()))
	return st
}
