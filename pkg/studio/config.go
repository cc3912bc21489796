package studio

import (
	"strings"

	"github.com/shouni/go-portrait-kit/pkg/domain"
)

// StyleOption はバッチ生成時のスタイル選択です。
type StyleOption string

const (
	StyleMix          StyleOption = "mix"
	StyleProfessional StyleOption = "professional"
	StyleCasual       StyleOption = "casual"
	StyleHighFashion  StyleOption = "high-fashion"
)

// ShotType は構図（フレーミング）の指定です。
// ShotRandom はバッチ単位ではなくジョブのディスパッチごとに独立して解決されます。
type ShotType string

const (
	ShotUpper  ShotType = "upper"
	ShotFull   ShotType = "full"
	ShotFace   ShotType = "face"
	ShotRandom ShotType = "random"
)

// GenerateConfig はセッションの現在の生成設定です。
type GenerateConfig struct {
	Gender   domain.Gender
	Style    StyleOption
	Shot     ShotType
	JobTitle string
	Concept  string
}

// category は単一カテゴリ指定の StyleOption をドメインのカテゴリに写します。
func (o StyleOption) category() (domain.StyleCategory, bool) {
	switch o {
	case StyleProfessional:
		return domain.CategoryProfessional, true
	case StyleCasual:
		return domain.CategoryCasual, true
	case StyleHighFashion:
		return domain.CategoryHighFashion, true
	default:
		return "", false
	}
}

// TrimmedJobTitle は書き換えパスを起動すべきかの判定も兼ねます。
func (c GenerateConfig) TrimmedJobTitle() string {
	return strings.TrimSpace(c.JobTitle)
}

// TrimmedConcept は書き換えパスを起動すべきかの判定も兼ねます。
func (c GenerateConfig) TrimmedConcept() string {
	return strings.TrimSpace(c.Concept)
}

// フレーミング指示の定義なのだ
const (
	upperShotSuffix = "An upper body shot."
	fullShotSuffix  = "A full body shot."
	faceShotSuffix  = "A close-up portrait shot, focusing sharply on the face, its expression, and details."
)

// framedPrompt は保存されたプロンプトにフレーミング指示を付加します。
// 付加はディスパッチ時のみ行われ、ジョブに保存されたプロンプト本文は汚しません。
// ShotRandom は呼び出しのたびに再抽選されます（リトライでも同様）。
// intn は [0, n) の乱数を返す関数で、並行安全性は呼び出し側が保証します。
func framedPrompt(prompt string, shot ShotType, intn func(n int) int) string {
	resolved := shot
	if shot == ShotRandom {
		options := []ShotType{ShotFace, ShotUpper, ShotFull}
		resolved = options[intn(len(options))]
	}

	switch resolved {
	case ShotFull:
		return prompt + " " + fullShotSuffix
	case ShotFace:
		return prompt + " " + faceShotSuffix
	default:
		return prompt + " " + upperShotSuffix
	}
}
