package studio

import (
	"context"
	"log/slog"

	"github.com/shouni/go-portrait-kit/pkg/domain"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// dispatchAll はジョブ群の画像合成を並列に駆動し、全ジョブの決着を待ちます。
// 個々のジョブの失敗は自分のレコードの ERROR 化で吸収されるため、1件の失敗や
// 遅延が兄弟ジョブの完了を妨げることはありません。戻るのは全件決着後です。
func (st *Studio) dispatchAll(ctx context.Context, refs []domain.ReferenceImage, jobs domain.PortraitJobs, shot ShotType) error {
	eg, egCtx := errgroup.WithContext(ctx)

	// Burst 2 により、開始直後に2件までは同時にリクエストを開始できるのだ
	var limiter *rate.Limiter
	if st.interval > 0 {
		limiter = rate.NewLimiter(rate.Every(st.interval), 2)
	}

	slog.InfoContext(ctx, "並列ディスパッチを開始するのだ", "count", len(jobs), "interval", st.interval)

	for _, job := range jobs {
		job := job
		eg.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(egCtx); err != nil {
					// 待機中のキャンセルでもジョブを宙ぶらりんにしないのだ
					st.session.settleError(job.ID)
					return err
				}
			}
			st.generateOne(egCtx, refs, job, shot)
			return nil
		})
	}

	return eg.Wait()
}

// generateOne は1ジョブ分の画像合成を実行し、状態機械を進めます。
// GENERATING へ遷移 → 合成 → SUCCESS / ERROR で決着、が1回のディスパッチです。
func (st *Studio) generateOne(ctx context.Context, refs []domain.ReferenceImage, job domain.PortraitJob, shot ShotType) {
	st.session.markGenerating(job.ID)

	prompt := framedPrompt(job.Prompt, shot, st.intn)
	artifact, err := st.gateway.SynthesizeImage(ctx, refs, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "ポートレート生成に失敗したのだ", "job_id", job.ID, "error", err)
		st.session.settleError(job.ID)
		return
	}

	st.session.settleSuccess(job.ID, artifact)
}
