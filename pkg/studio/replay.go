package studio

import (
	"context"
	"log/slog"

	"github.com/shouni/go-portrait-kit/pkg/domain"
)

// RetryFailed は ERROR で決着したジョブ群だけをまとめて再ディスパッチします。
// 成功済みジョブには触れません。対象が1件もなければ、あるいは参照写真が
// 空になっていれば、なにもせず正常終了します。
func (st *Studio) RetryFailed(ctx context.Context) error {
	if !st.session.tryBeginBatch() {
		return ErrGenerationInProgress
	}
	defer st.session.endBatch()

	failed := st.session.Snapshot().Failed()
	if len(failed) == 0 {
		return nil
	}
	refs := st.session.References()
	if len(refs) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "失敗ジョブを再試行するのだ", "count", len(failed))
	return st.dispatchAll(ctx, refs, failed, st.session.Config().Shot)
}

// RetryOne は1ジョブだけを再ディスパッチします。バッチ全体の実行中ゲートは
// 通しません（バッチ進行中でも個別のやり直しを受け付けます）。
// 未知の ID はなにもせず正常終了します。
func (st *Studio) RetryOne(ctx context.Context, id int64) error {
	job, ok := st.session.jobByID(id)
	if !ok {
		return nil
	}
	refs := st.session.References()
	if len(refs) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "ジョブを個別に再試行するのだ", "job_id", id)
	return st.dispatchAll(ctx, refs, domain.PortraitJobs{job}, st.session.Config().Shot)
}
