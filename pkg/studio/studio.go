package studio

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shouni/go-portrait-kit/pkg/catalog"
	"github.com/shouni/go-portrait-kit/pkg/gateway"

	"golang.org/x/sync/errgroup"
)

// Studio はバッチ生成オーケストレーターの本体です。
// プロンプトプールからの選抜、書き換えパス、並列ディスパッチ、
// リトライ、派生生成のすべてがここを起点に動きます。
type Studio struct {
	gateway  gateway.Gateway
	catalog  *catalog.Catalog
	session  *Session
	interval time.Duration // ディスパッチ間隔（0 なら流量制限なし）

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Args は Studio の依存関係です。
type Args struct {
	Gateway gateway.Gateway
	Catalog *catalog.Catalog

	// DispatchInterval を正にすると、ジョブのディスパッチに
	// rate.Limiter による流量制限がかかります。
	DispatchInterval time.Duration

	// Rand を注入するとプロンプト選抜・シャッフル・ランダム構図が
	// 決定論的になります。nil なら時刻シードで初期化します。
	Rand *rand.Rand
}

// New は依存関係を検証して Studio を初期化します。
func New(args Args) (*Studio, error) {
	if args.Gateway == nil {
		return nil, fmt.Errorf("Gateway は必須です")
	}
	if args.Catalog == nil {
		return nil, fmt.Errorf("Catalog は必須です")
	}

	rng := args.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Studio{
		gateway:  args.Gateway,
		catalog:  args.Catalog,
		session:  NewSession(),
		interval: args.DispatchInterval,
		rng:      rng,
	}, nil
}

// Session は状態の読み取りと参照写真コマンドのためにセッションを公開します。
func (st *Studio) Session() *Session {
	return st.session
}

// intn は [0, n) の乱数を並行安全に引きます。
func (st *Studio) intn(n int) int {
	st.rngMu.Lock()
	defer st.rngMu.Unlock()
	return st.rng.Intn(n)
}

// sample はプールから k 件を乱数ロック下で選抜します。
func (st *Studio) sample(pool []catalog.Template, k int) []catalog.Template {
	st.rngMu.Lock()
	defer st.rngMu.Unlock()
	return catalog.Sample(st.rng, pool, k)
}

// shuffleTemplates は最終的なプロンプト集合の表示順を無作為化します。
func (st *Studio) shuffleTemplates(templates []catalog.Template) {
	st.rngMu.Lock()
	defer st.rngMu.Unlock()
	st.rng.Shuffle(len(templates), func(i, j int) {
		templates[i], templates[j] = templates[j], templates[i]
	})
}

// rewriteAll は1つの書き換えパスを全プロンプトに並列適用し、結果を位置どおりに
// 返します。書き換え側がフェイルオープンなので、このグループが失敗することは
// ありません。
func (st *Studio) rewriteAll(ctx context.Context, texts []string, rewrite func(ctx context.Context, text string) string) []string {
	out := make([]string, len(texts))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, text := range texts {
		i, text := i, text
		eg.Go(func() error {
			out[i] = rewrite(egCtx, text)
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

// applyRewritePasses は職業パスとコンセプトパスを（この順に）適用します。
// どちらも設定が空なら呼ばれません。
func (st *Studio) applyRewritePasses(ctx context.Context, texts []string, cfg GenerateConfig) []string {
	if jobTitle := cfg.TrimmedJobTitle(); jobTitle != "" {
		texts = st.rewriteAll(ctx, texts, func(ctx context.Context, text string) string {
			return st.gateway.RewriteForJobTitle(ctx, text, jobTitle)
		})
	}
	if concept := cfg.TrimmedConcept(); concept != "" {
		texts = st.rewriteAll(ctx, texts, func(ctx context.Context, text string) string {
			return st.gateway.RewriteForConcept(ctx, text, concept)
		})
	}
	return texts
}
