package builder

import (
	"context"
	"fmt"

	"github.com/shouni/go-portrait-kit/pkg/catalog"
	"github.com/shouni/go-portrait-kit/pkg/config"
	"github.com/shouni/go-portrait-kit/pkg/export"
	"github.com/shouni/go-portrait-kit/pkg/gateway"
	"github.com/shouni/go-portrait-kit/pkg/studio"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-gemini-client/gemini"
	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"google.golang.org/genai"
)

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	const defaultGeminiTemperature = float32(0.2)
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// InitializeVideoOperator は動画生成用の genai クライアントをラップして返します。
func InitializeVideoOperator(ctx context.Context, apiKey string) (gateway.VideoOperator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("動画クライアントの初期化に失敗しました: %w", err)
	}
	return gateway.NewGenaiVideoOperator(client), nil
}

// BuildStudio は環境設定からオーケストレーター一式を組み立てます。
func BuildStudio(ctx context.Context, cfg *config.Config) (*studio.Studio, error) {
	aiClient, err := InitializeAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	videoOps, err := InitializeVideoOperator(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	// 書き換え結果のキャッシュ。同じ職業・コンセプトの組に対する再問い合わせを抑えるのだ
	rewriteCache := cache.New(gateway.DefaultRewriteCacheTTL, 2*gateway.DefaultRewriteCacheTTL)

	gw, err := gateway.NewGeminiGateway(gateway.Config{
		AIClient:   aiClient,
		VideoOps:   videoOps,
		HTTPClient: httpkit.New(cfg.Options.HTTPTimeout),
		Cache:      rewriteCache,
		TextModel:  cfg.TextModel,
		ImageModel: cfg.ImageModel,
		VideoModel: cfg.VideoModel,
		APIKey:     cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("ゲートウェイの初期化に失敗しました: %w", err)
	}

	pool, err := catalog.Load()
	if err != nil {
		return nil, err
	}

	return studio.New(studio.Args{
		Gateway:          gw,
		Catalog:          pool,
		DispatchInterval: cfg.Options.DispatchInterval,
	})
}

// BuildExporter はローカル/GCS への保存用エクスポーターを組み立てます。
func BuildExporter(ctx context.Context, cfg *config.Config) (*export.Exporter, error) {
	gcsFactory, err := gcsfactory.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("ストレージクライアントの初期化に失敗しました: %w", err)
	}
	writer, err := gcsFactory.OutputWriter()
	if err != nil {
		return nil, fmt.Errorf("OutputWriter の取得に失敗しました: %w", err)
	}
	return export.NewExporter(writer, cfg.OutputDir)
}
