package studio

import (
	"context"
	"log/slog"

	"github.com/shouni/go-portrait-kit/pkg/gateway"
)

// BranchFrom は成功済みジョブ1件を起点に、5件のバリエーションを派生生成します。
// プレースホルダは変奏が確定する前から GENERATING としてリストに現れるため、
// 利用側は着手を即座に観測できます。バリエーション生成自体が失敗した場合は
// 5件すべてを ERROR で決着させ、エラーを返します。
func (st *Studio) BranchFrom(ctx context.Context, sourceID int64) error {
	src, ok := st.session.jobByID(sourceID)
	if !ok {
		return ErrUnknownJob
	}
	if !src.Succeeded() {
		return ErrSourceNotReady
	}
	refs := st.session.References()
	if len(refs) == 0 {
		return ErrNoReferenceImages
	}
	if !st.session.tryBeginBatch() {
		return ErrGenerationInProgress
	}
	defer st.session.endBatch()

	placeholders := st.session.appendPlaceholders(gateway.VariationCount, src.Prompt, src.Category)

	variations, err := st.gateway.GenerateVariations(ctx, src.Prompt)
	if err != nil {
		slog.ErrorContext(ctx, "バリエーション生成に失敗したのだ", "source_id", sourceID, "error", err)
		for _, job := range placeholders {
			st.session.settleError(job.ID)
		}
		return err
	}

	cfg := st.session.Config()
	variations = st.applyRewritePasses(ctx, variations, cfg)

	// 位置どおりに割り当て、足りない位置は元プロンプトのまま進めるのだ
	for i := range placeholders {
		if i < len(variations) {
			placeholders[i].Prompt = variations[i]
			st.session.setPrompt(placeholders[i].ID, variations[i])
		}
	}

	slog.InfoContext(ctx, "派生生成を開始するのだ", "source_id", sourceID, "count", len(placeholders))
	return st.dispatchAll(ctx, refs, placeholders, cfg.Shot)
}
