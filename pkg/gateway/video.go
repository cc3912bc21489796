package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/shouni/go-portrait-kit/pkg/domain"

	"google.golang.org/genai"
)

// SynthesizeVideo は画像1枚とプロンプトから短尺動画を生成します。
// リモートオペレーションを起動し、固定間隔でポーリングして完了を待ちます。
// ポーリング回数に上限は設けていません（リモートジョブが終わらない限り待ち続けます）。
// 打ち切りたい場合は ctx にデッドラインを設定してください。
func (g *GeminiGateway) SynthesizeVideo(ctx context.Context, image domain.ImageArtifact, prompt string) (*domain.VideoArtifact, error) {
	if g.videoOps == nil {
		return nil, &VideoGenerationFailedError{Reason: "VideoOperator が設定されていません"}
	}

	op, err := g.videoOps.Launch(ctx, g.videoModel, prompt, &genai.Image{
		ImageBytes: image.Data,
		MIMEType:   image.MimeType,
	})
	if err != nil {
		return nil, &VideoGenerationFailedError{Reason: "リモートジョブの起動", Err: err}
	}

	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, &VideoGenerationFailedError{Reason: "待機中にキャンセルされました", Err: ctx.Err()}
		case <-time.After(g.pollInterval):
		}

		op, err = g.videoOps.Poll(ctx, op)
		if err != nil {
			return nil, &VideoGenerationFailedError{Reason: "完了状態の取得", Err: err}
		}
	}

	video, err := resultVideo(op)
	if err != nil {
		return nil, err
	}

	// インラインでバイト列が返っていればそのまま採用する
	if len(video.VideoBytes) > 0 {
		return &domain.VideoArtifact{Data: video.VideoBytes, MimeType: videoMimeType(video)}, nil
	}

	if video.URI == "" {
		return nil, &VideoGenerationFailedError{Reason: "完了したがダウンロードリンクがありません"}
	}
	if g.httpClient == nil {
		return nil, &VideoGenerationFailedError{Reason: "HTTPClient が設定されていないためダウンロードできません"}
	}

	// ダウンロードリンクにはAPIキーの付与が必要なのだ
	data, err := g.httpClient.FetchBytes(ctx, fmt.Sprintf("%s&key=%s", video.URI, g.apiKey))
	if err != nil {
		return nil, &VideoGenerationFailedError{Reason: "動画のダウンロード", Err: err}
	}

	return &domain.VideoArtifact{Data: data, MimeType: videoMimeType(video)}, nil
}

func resultVideo(op *genai.GenerateVideosOperation) (*genai.Video, error) {
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, &VideoGenerationFailedError{Reason: "完了したが動画が含まれていません"}
	}
	return op.Response.GeneratedVideos[0].Video, nil
}

func videoMimeType(video *genai.Video) string {
	if video.MIMEType != "" {
		return video.MIMEType
	}
	return "video/mp4"
}

// GenaiVideoOperator は google.golang.org/genai クライアントによる VideoOperator 実装です。
type GenaiVideoOperator struct {
	client *genai.Client
}

// NewGenaiVideoOperator は genai クライアントをラップします。
func NewGenaiVideoOperator(client *genai.Client) *GenaiVideoOperator {
	return &GenaiVideoOperator{client: client}
}

func (o *GenaiVideoOperator) Launch(ctx context.Context, model, prompt string, image *genai.Image) (*genai.GenerateVideosOperation, error) {
	return o.client.Models.GenerateVideos(ctx, model, prompt, image, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
	})
}

func (o *GenaiVideoOperator) Poll(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return o.client.Operations.GetVideosOperation(ctx, op, nil)
}

var _ VideoOperator = (*GenaiVideoOperator)(nil)
