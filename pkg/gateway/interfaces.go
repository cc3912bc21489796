package gateway

import (
	"context"
	"time"

	"github.com/shouni/go-portrait-kit/pkg/domain"

	"google.golang.org/genai"
)

// Gateway は外部の生成AIサービスに対する抽象窓口です。
// オーケストレーターはこのインターフェースだけに依存し、通信・リトライ・
// レスポンス解析の詳細は実装側に閉じ込めます。
type Gateway interface {
	// SynthesizeImage は参照画像（1〜4枚）とプロンプトから1枚のポートレートを合成します。
	// 内部で固定回数までリトライし、使い切った場合は *GenerationFailedError を返します。
	SynthesizeImage(ctx context.Context, refs []domain.ReferenceImage, prompt string) (*domain.ImageArtifact, error)

	// RewriteForJobTitle は服装・衣装の記述だけを職業に合わせて書き換えます。
	// フェイルオープン: いかなる失敗時も元のプロンプトをそのまま返し、エラーは外に出しません。
	RewriteForJobTitle(ctx context.Context, prompt, jobTitle string) string

	// RewriteForConcept は構図・照明・ポーズを保ったまま、指定のコンセプトや
	// オブジェクトをシーンに織り込みます。こちらもフェイルオープンです。
	RewriteForConcept(ctx context.Context, prompt, concept string) string

	// GenerateVariations は同じ撮影セッションに属する5件のバリエーションプロンプトを
	// 生成します。応答が不正または空の場合は ErrPromptVariationFailed を返します
	// （書き換え系と違い、こちらは失敗を伝播させます）。
	GenerateVariations(ctx context.Context, prompt string) ([]string, error)

	// SynthesizeVideo は1枚の画像とプロンプトから短尺動画を生成します。
	// リモートジョブを起動し、固定間隔でポーリングして完了を待ちます。
	SynthesizeVideo(ctx context.Context, image domain.ImageArtifact, prompt string) (*domain.VideoArtifact, error)
}

// HTTPClient は URL からバイト列を取得する最小限のクライアントです。
// go-http-kit の ClientInterface がそのまま満たします。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// TextCacher は書き換え結果のキャッシュ操作を抽象化するインターフェースです。
type TextCacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}

// VideoOperator は動画生成のリモートオペレーション（起動とポーリング）を抽象化します。
type VideoOperator interface {
	Launch(ctx context.Context, model, prompt string, image *genai.Image) (*genai.GenerateVideosOperation, error)
	Poll(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}
