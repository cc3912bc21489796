package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultTextModel      = "gemini-2.5-flash"
	DefaultImageModel     = "gemini-2.5-flash-image-preview"
	DefaultVideoModel     = "veo-2.0-generate-001"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultLocalOutputDir = "output/portraits" // エクスポーターのデフォルト保存先なのだ
)

// Config はアプリケーション全体の環境設定（APIキーやモデル名）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey string
	TextModel    string
	ImageModel   string
	VideoModel   string
	OutputDir    string

	Options RuntimeOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	return &Config{
		GeminiAPIKey: envutil.GetEnv("GEMINI_API_KEY", ""),
		TextModel:    envutil.GetEnv("GEMINI_MODEL", DefaultTextModel),
		ImageModel:   envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		VideoModel:   envutil.GetEnv("VIDEO_GEMINI_MODEL", DefaultVideoModel),
		OutputDir:    envutil.GetEnv("OUTPUT_DIR", DefaultLocalOutputDir),
		Options: RuntimeOptions{
			HTTPTimeout: DefaultHTTPTimeout,
		},
	}
}

// RuntimeOptions は呼び出し側が実行時に上書きできるパラメータなのだ。
type RuntimeOptions struct {
	// HTTPTimeout は動画ダウンロードなどの HTTP クライアントのタイムアウトです。
	HTTPTimeout time.Duration

	// DispatchInterval を正にすると、バッチディスパッチに流量制限がかかります。
	DispatchInterval time.Duration
}
