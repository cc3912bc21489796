package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-portrait-kit/pkg/domain"

	"github.com/cenkalti/backoff/v4"
	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"
)

// デフォルト値の定義なのだ
const (
	DefaultMaxImageAttempts  = 3
	DefaultRetryDelay        = 1 * time.Second
	DefaultVideoPollInterval = 10 * time.Second
	DefaultRewriteCacheTTL   = 30 * time.Minute

	// VariationCount は1回の派生生成で要求するバリエーション数です。
	VariationCount = 5
)

// Config は GeminiGateway の依存関係と調整パラメータです。
type Config struct {
	AIClient   gemini.GenerativeModel
	VideoOps   VideoOperator
	HTTPClient HTTPClient
	Cache      TextCacher // nil 許容（キャッシュなし動作）

	TextModel  string
	ImageModel string
	VideoModel string
	APIKey     string // 動画ダウンロードリンクに付与するキー

	MaxImageAttempts  int
	RetryDelay        time.Duration
	VideoPollInterval time.Duration
	RewriteCacheTTL   time.Duration
}

// GeminiGateway は Gateway の Gemini 実装です。
// 画像合成は固定回数・固定間隔のリトライを内包し、プロンプト書き換えは
// フェイルオープン、バリエーション生成と動画生成は失敗を伝播させます。
type GeminiGateway struct {
	aiClient   gemini.GenerativeModel
	videoOps   VideoOperator
	httpClient HTTPClient
	cache      TextCacher

	textModel  string
	imageModel string
	videoModel string
	apiKey     string

	maxAttempts  int
	retryDelay   time.Duration
	pollInterval time.Duration
	cacheTTL     time.Duration
}

// NewGeminiGateway は依存関係を検証して GeminiGateway を初期化します。
func NewGeminiGateway(cfg Config) (*GeminiGateway, error) {
	if cfg.AIClient == nil {
		return nil, fmt.Errorf("AIClient は必須です")
	}
	if cfg.TextModel == "" || cfg.ImageModel == "" {
		return nil, fmt.Errorf("TextModel と ImageModel は必須です")
	}
	if cfg.MaxImageAttempts <= 0 {
		cfg.MaxImageAttempts = DefaultMaxImageAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.VideoPollInterval <= 0 {
		cfg.VideoPollInterval = DefaultVideoPollInterval
	}
	if cfg.RewriteCacheTTL <= 0 {
		cfg.RewriteCacheTTL = DefaultRewriteCacheTTL
	}

	return &GeminiGateway{
		aiClient:     cfg.AIClient,
		videoOps:     cfg.VideoOps,
		httpClient:   cfg.HTTPClient,
		cache:        cfg.Cache,
		textModel:    cfg.TextModel,
		imageModel:   cfg.ImageModel,
		videoModel:   cfg.VideoModel,
		apiKey:       cfg.APIKey,
		maxAttempts:  cfg.MaxImageAttempts,
		retryDelay:   cfg.RetryDelay,
		pollInterval: cfg.VideoPollInterval,
		cacheTTL:     cfg.RewriteCacheTTL,
	}, nil
}

// SynthesizeImage は参照画像群とプロンプトから1枚のポートレートを合成します。
// 各試行は完全に独立したリモート呼び出しで、部分結果の再利用はしません。
func (g *GeminiGateway) SynthesizeImage(ctx context.Context, refs []domain.ReferenceImage, prompt string) (*domain.ImageArtifact, error) {
	parts := make([]*genai.Part, 0, len(refs)+1)
	for _, ref := range refs {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: ref.MimeType, Data: ref.Data},
		})
	}
	parts = append(parts, &genai.Part{Text: prompt})

	var artifact *domain.ImageArtifact
	attempt := 0
	operation := func() error {
		attempt++
		resp, err := g.aiClient.GenerateWithParts(ctx, g.imageModel, parts, gemini.GenerateOptions{})
		if err != nil {
			slog.WarnContext(ctx, "画像合成の試行が失敗しました", "attempt", attempt, "error", err)
			return err
		}
		out, err := parseImageArtifact(resp)
		if err != nil {
			slog.WarnContext(ctx, "画像合成の応答に画像がありませんでした", "attempt", attempt, "error", err)
			return err
		}
		artifact = out
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.retryDelay), uint64(g.maxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, &GenerationFailedError{Prompt: prompt, Err: err}
	}
	return artifact, nil
}

// RewriteForJobTitle は服装の記述だけを職業に合わせて書き換えます。
func (g *GeminiGateway) RewriteForJobTitle(ctx context.Context, prompt, jobTitle string) string {
	return g.rewrite(ctx, "job_title", jobTitleInstruction(jobTitle), prompt)
}

// RewriteForConcept は指定のコンセプトをシーンに織り込みます。
func (g *GeminiGateway) RewriteForConcept(ctx context.Context, prompt, concept string) string {
	return g.rewrite(ctx, "concept", conceptInstruction(concept), prompt)
}

// rewrite は書き換え系2操作の共通ロジックです。
// どの段階の失敗も元プロンプトへのフォールバックで吸収します。1件の書き換え失敗で
// バッチ全体を止めないための意図的なフェイルオープンです。
func (g *GeminiGateway) rewrite(ctx context.Context, op, instruction, prompt string) string {
	cacheKey := op + "|" + instruction + "|" + prompt
	if g.cache != nil {
		if cached, ok := g.cache.Get(cacheKey); ok {
			if text, ok := cached.(string); ok {
				return text
			}
		}
	}

	resp, err := g.aiClient.GenerateWithParts(ctx, g.textModel,
		[]*genai.Part{{Text: fmt.Sprintf("Original prompt: %q", prompt)}},
		gemini.GenerateOptions{SystemPrompt: instruction},
	)
	if err != nil {
		slog.WarnContext(ctx, "プロンプト書き換えに失敗したため元のプロンプトで続行します", "op", op, "error", err)
		return prompt
	}

	text, err := extractText(resp)
	if err != nil {
		slog.WarnContext(ctx, "書き換え応答の解析に失敗したため元のプロンプトで続行します", "op", op, "error", err)
		return prompt
	}

	var parsed struct {
		ModifiedPrompt string `json:"modifiedPrompt"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err != nil || parsed.ModifiedPrompt == "" {
		slog.WarnContext(ctx, "書き換え応答のJSONが不正なため元のプロンプトで続行します", "op", op)
		return prompt
	}

	if g.cache != nil {
		g.cache.Set(cacheKey, parsed.ModifiedPrompt, g.cacheTTL)
	}
	return parsed.ModifiedPrompt
}

// GenerateVariations は同一撮影セッション風のバリエーションを最大5件生成します。
func (g *GeminiGateway) GenerateVariations(ctx context.Context, prompt string) ([]string, error) {
	resp, err := g.aiClient.GenerateWithParts(ctx, g.textModel,
		[]*genai.Part{{Text: fmt.Sprintf("Original prompt: %q", prompt)}},
		gemini.GenerateOptions{SystemPrompt: variationInstruction},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPromptVariationFailed, err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPromptVariationFailed, err)
	}

	var parsed struct {
		Prompts []string `json:"prompts"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err != nil || len(parsed.Prompts) == 0 {
		return nil, fmt.Errorf("%w: 応答のJSONが不正または空です", ErrPromptVariationFailed)
	}

	if len(parsed.Prompts) > VariationCount {
		parsed.Prompts = parsed.Prompts[:VariationCount]
	}
	return parsed.Prompts, nil
}

func jobTitleInstruction(jobTitle string) string {
	return fmt.Sprintf(`You are a prompt rewriting assistant. Modify the description of the clothing or outfit in the provided prompt to be appropriate for the job title of a %q.
- You MUST NOT change any other part of the prompt, such as the background, lighting, pose, camera angle, subject's expression, or overall mood.
- Only alter the text describing what the person is wearing.
- If the original prompt does not mention clothing, add a suitable clothing description for the specified job.
- Your response MUST be a JSON object with a single key "modifiedPrompt" which contains the full, rewritten prompt as a string.`, jobTitle)
}

func conceptInstruction(concept string) string {
	return fmt.Sprintf(`You are a prompt rewriting assistant for an AI image generator. Incorporate the following concept or object into the user's prompt: %q.
- You MUST integrate the concept/object naturally into the scene.
- You MUST NOT change the core elements of the original prompt, such as the overall composition, camera angle, lighting style, subject's pose (unless the concept requires it), or expression.
- Only add or modify parts of the prompt to include the new concept/object.
- Your response MUST be a JSON object with a single key "modifiedPrompt" which contains the full, rewritten prompt as a string.`, concept)
}

const variationInstruction = `You are a creative prompt engineer for an AI image generator. Based on the user's original prompt, create 5 new variations.
- The goal is images that are clearly different but belong to the same stylistic photoshoot.
- Maintain the original prompt's core mood, overall aesthetic, and subject description.
- Introduce noticeable variations in clothing, pose, lighting, and camera angle.
- Avoid changing the fundamental background setting, the subject's core identity, or the main color palette drastically.
- Ensure the output is a JSON object with a single key "prompts" containing an array of 5 string prompts.
- Do not include the original prompt in the output.`
