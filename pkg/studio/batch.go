package studio

import (
	"context"
	"log/slog"

	"github.com/shouni/go-portrait-kit/pkg/catalog"
	"github.com/shouni/go-portrait-kit/pkg/domain"
)

// バッチごとの選抜サイズの定義なのだ
const (
	startSingleSize  = 20
	extendSingleSize = 10
)

// mix 時のカテゴリ別サイズ。並びは professional / casual / high-fashion。
var (
	startMixSizes  = map[domain.StyleCategory]int{domain.CategoryProfessional: 7, domain.CategoryCasual: 7, domain.CategoryHighFashion: 6}
	extendMixSizes = map[domain.StyleCategory]int{domain.CategoryProfessional: 4, domain.CategoryCasual: 3, domain.CategoryHighFashion: 3}
)

var categoryOrder = []domain.StyleCategory{domain.CategoryProfessional, domain.CategoryCasual, domain.CategoryHighFashion}

// StartBatch は新しいバッチを開始します。結果リストは新しいジョブ群で
// 置き換えられます。全ジョブが決着するまで戻りません。
func (st *Studio) StartBatch(ctx context.Context, cfg GenerateConfig) error {
	refs := st.session.References()
	if len(refs) == 0 {
		return ErrNoReferenceImages
	}
	if !st.session.tryBeginBatch() {
		return ErrGenerationInProgress
	}
	defer st.session.endBatch()

	st.session.setConfig(cfg)

	selected := st.selectTemplates(cfg, nil, startMixSizes, startSingleSize)
	texts, categories := st.prepareBatch(ctx, selected, cfg)

	jobs := st.session.resetJobs(texts, categories)
	slog.InfoContext(ctx, "バッチ生成を開始するのだ", "jobs", len(jobs), "style", cfg.Style, "gender", cfg.Gender)

	return st.dispatchAll(ctx, refs, jobs, cfg.Shot)
}

// ExtendBatch は既存の結果リストを崩さずに追加ジョブを生成します。
// 既存ジョブと完全一致するプロンプトは選抜対象から除外され、未使用の
// スタイルが残っていなければ ErrNoMoreStyles を返してなにもしません。
func (st *Studio) ExtendBatch(ctx context.Context, cfg GenerateConfig) error {
	refs := st.session.References()
	if len(refs) == 0 {
		return ErrNoReferenceImages
	}
	if !st.session.tryBeginBatch() {
		return ErrGenerationInProgress
	}
	defer st.session.endBatch()

	st.session.setConfig(cfg)

	selected := st.selectTemplates(cfg, st.session.usedPrompts(), extendMixSizes, extendSingleSize)
	if len(selected) == 0 {
		return ErrNoMoreStyles
	}
	texts, categories := st.prepareBatch(ctx, selected, cfg)

	jobs := st.session.appendJobs(texts, categories)
	slog.InfoContext(ctx, "追加バッチを開始するのだ", "jobs", len(jobs), "style", cfg.Style)

	return st.dispatchAll(ctx, refs, jobs, cfg.Shot)
}

// selectTemplates は性別フィルタ・使用済み除外・カテゴリ別サンプリングを行います。
// プールが要求サイズに満たないカテゴリは、あるだけ全部を採用します（エラーにしません）。
func (st *Studio) selectTemplates(cfg GenerateConfig, exclude map[string]struct{}, mixSizes map[domain.StyleCategory]int, singleSize int) []catalog.Template {
	pool := st.catalog.Filter(cfg.Gender)
	if len(exclude) > 0 {
		var eligible []catalog.Template
		for _, t := range pool {
			if _, used := exclude[t.Text]; !used {
				eligible = append(eligible, t)
			}
		}
		pool = eligible
	}

	if single, ok := cfg.Style.category(); ok {
		return st.sample(catalog.ByCategory(pool, single), singleSize)
	}

	// mix: カテゴリごとに独立して選抜して連結するのだ
	var selected []catalog.Template
	for _, category := range categoryOrder {
		selected = append(selected, st.sample(catalog.ByCategory(pool, category), mixSizes[category])...)
	}
	return selected
}

// prepareBatch は書き換えパスを適用し、表示順をシャッフルした上で
// プロンプト本文とカテゴリを位置を揃えて返します。
func (st *Studio) prepareBatch(ctx context.Context, selected []catalog.Template, cfg GenerateConfig) ([]string, []domain.StyleCategory) {
	texts := make([]string, len(selected))
	for i, t := range selected {
		texts[i] = t.Text
	}
	texts = st.applyRewritePasses(ctx, texts, cfg)

	// 書き換え結果を反映してからシャッフルするのだ
	final := make([]catalog.Template, len(selected))
	copy(final, selected)
	for i := range final {
		final[i].Text = texts[i]
	}
	st.shuffleTemplates(final)

	outTexts := make([]string, len(final))
	outCategories := make([]domain.StyleCategory, len(final))
	for i, t := range final {
		outTexts[i] = t.Text
		outCategories[i] = t.Category
	}
	return outTexts, outCategories
}
