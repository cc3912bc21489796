package studio

import "errors"

// 事前条件違反はクラッシュではなく、呼び出し側が案内表示に使える
// センチネルエラーとして返します。
var (
	// ErrNoReferenceImages は参照写真が1枚もない状態での生成要求です。
	ErrNoReferenceImages = errors.New("参照写真がアップロードされていません")

	// ErrGenerationInProgress はバッチまたは派生生成の実行中に新しい
	// バッチを開始しようとしたことを表します。
	ErrGenerationInProgress = errors.New("生成処理が既に実行中です")

	// ErrVideoInProgress は動画生成の多重起動を表します。
	ErrVideoInProgress = errors.New("動画生成が既に実行中です")

	// ErrNoMoreStyles は extend 時に未使用のスタイルが残っていないことを表します。
	ErrNoMoreStyles = errors.New("追加できるスタイルが残っていません")

	// ErrUnknownJob は存在しないジョブ ID の指定です。
	ErrUnknownJob = errors.New("指定されたジョブが見つかりません")

	// ErrSourceNotReady は成功成果物を持たないジョブからの派生・動画生成要求です。
	ErrSourceNotReady = errors.New("元になるジョブがまだ成功していません")

	// ErrTooManyReferences は参照写真の上限（4枚）超過です。
	ErrTooManyReferences = errors.New("参照写真は4枚までです")
)
