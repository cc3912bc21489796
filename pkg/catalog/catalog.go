package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/shouni/go-portrait-kit/pkg/domain"
)

//go:embed prompts.json
var promptsJSON []byte

// Template は事前定義されたシーン記述（プロンプト）1件です。
// スタイル分類と対象性別でタグ付けされ、ロード後は不変です。
type Template struct {
	Text     string               `json:"text"`
	Category domain.StyleCategory `json:"category"`
	Gender   domain.Gender        `json:"gender"`
}

// Catalog はプロンプトテンプレートの静的なプールです。
type Catalog struct {
	templates []Template
}

// Load は埋め込みの prompts.json からカタログを構築します。
func Load() (*Catalog, error) {
	var templates []Template
	if err := json.Unmarshal(promptsJSON, &templates); err != nil {
		return nil, fmt.Errorf("プロンプトカタログのパースに失敗しました: %w", err)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("プロンプトカタログが空なのだ。embed設定を確認してほしいのだ")
	}
	return &Catalog{templates: templates}, nil
}

// New は任意のテンプレート群からカタログを構築します。テスト用のプール差し替えにも使います。
func New(templates []Template) *Catalog {
	copied := make([]Template, len(templates))
	copy(copied, templates)
	return &Catalog{templates: copied}
}

// Len は登録されているテンプレート数を返します。
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Filter は対象性別に合うテンプレートを返します。unisex は常に含まれます。
func (c *Catalog) Filter(gender domain.Gender) []Template {
	var matched []Template
	for _, t := range c.templates {
		if t.Gender == gender || t.Gender == domain.GenderUnisex {
			matched = append(matched, t)
		}
	}
	return matched
}

// ByCategory は与えられたテンプレート群からカテゴリ一致分のみを抽出します。
func ByCategory(templates []Template, category domain.StyleCategory) []Template {
	var matched []Template
	for _, t := range templates {
		if t.Category == category {
			matched = append(matched, t)
		}
	}
	return matched
}

// Sample はプールから一様なランダム順列で k 件を重複なく選びます。
// k がプールより大きい場合は全件を（それぞれ一度だけ）返します。
// 乱数源を注入できるので、シードを固定すれば決定論的に動きます。
func Sample(rng *rand.Rand, pool []Template, k int) []Template {
	shuffled := make([]Template, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if k > len(shuffled) {
		k = len(shuffled)
	}
	return shuffled[:k]
}
