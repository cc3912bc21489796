package studio

import (
	"context"
	"log/slog"

	"github.com/shouni/go-portrait-kit/pkg/domain"
)

// CreateVideo は成功済みジョブの画像から短い動画を生成します。
// バッチ実行中は開始できず、動画生成自体も同時に1本だけです。
// 成果物はジョブには保存されず、呼び出し側へそのまま返されます。
func (st *Studio) CreateVideo(ctx context.Context, id int64) (*domain.VideoArtifact, error) {
	job, ok := st.session.jobByID(id)
	if !ok {
		return nil, ErrUnknownJob
	}
	if !job.Succeeded() {
		return nil, ErrSourceNotReady
	}
	if st.session.InProgress() {
		return nil, ErrGenerationInProgress
	}
	if !st.session.tryBeginVideo() {
		return nil, ErrVideoInProgress
	}
	defer st.session.endVideo()

	slog.InfoContext(ctx, "動画生成を開始するのだ", "job_id", id)
	return st.gateway.SynthesizeVideo(ctx, *job.Image, job.Prompt)
}
