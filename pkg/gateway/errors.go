package gateway

import (
	"errors"
	"fmt"
)

// ErrPromptVariationFailed はバリエーションプロンプト生成の失敗を表します。
// 呼び出し側は元プロンプトで黙って代替してはいけません。
var ErrPromptVariationFailed = errors.New("バリエーションプロンプトの生成に失敗しました")

// GenerationFailedError は画像合成がリトライ上限まで失敗したことを表します。
// 診断のため元のプロンプトを保持します。
type GenerationFailedError struct {
	Prompt string
	Err    error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("画像生成がリトライ上限に達しました (prompt: %q): %v", e.Prompt, e.Err)
}

func (e *GenerationFailedError) Unwrap() error {
	return e.Err
}

// VideoGenerationFailedError は動画生成のどの段階で失敗したかを保持します。
type VideoGenerationFailedError struct {
	Reason string
	Err    error
}

func (e *VideoGenerationFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("動画生成に失敗しました (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("動画生成に失敗しました (%s)", e.Reason)
}

func (e *VideoGenerationFailedError) Unwrap() error {
	return e.Err
}
