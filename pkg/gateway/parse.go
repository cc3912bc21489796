package gateway

import (
	"fmt"
	"strings"

	"github.com/shouni/go-portrait-kit/pkg/domain"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"
)

// parseImageArtifact は Gemini 応答から最初のインライン画像を取り出します。
func parseImageArtifact(resp *gemini.Response) (*domain.ImageArtifact, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, fmt.Errorf("Geminiからの有効な応答がありませんでした")
	}

	// 現在の仕様では最初の候補 (Candidate) のみを利用する。
	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &domain.ImageArtifact{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("画像生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)
	}

	return nil, fmt.Errorf("応答に画像データが見つかりませんでした")
}

// extractText は応答のテキストパートを連結して返します。
func extractText(resp *gemini.Response) (string, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return "", fmt.Errorf("Geminiからの有効な応答がありませんでした")
	}

	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("応答にコンテンツがありませんでした")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("応答にテキストが含まれていませんでした")
	}
	return text, nil
}

// stripCodeFence はモデルがJSONをコードフェンスで包んで返した場合に中身だけを取り出します。
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
