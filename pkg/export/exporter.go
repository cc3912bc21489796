package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/shouni/go-portrait-kit/pkg/domain"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// Exporter は生成済みポートレートを外部ストレージ（ローカル/GCS）へ書き出します。
// 保存パスは baseDir/portrait_<ID>.<ext> に揃えます。
type Exporter struct {
	writer  remoteio.OutputWriter
	baseDir string // 保存先のベースディレクトリ (例: "output/session-001")
}

// NewExporter は Exporter を初期化します。
func NewExporter(writer remoteio.OutputWriter, baseDir string) (*Exporter, error) {
	if writer == nil {
		return nil, fmt.Errorf("OutputWriter は必須です")
	}
	return &Exporter{writer: writer, baseDir: baseDir}, nil
}

// SaveImage はジョブ1件分の画像を保存し、保存先の相対パスを返します。
// 成功していないジョブ（成果物なし）はエラーです。
func (e *Exporter) SaveImage(ctx context.Context, job domain.PortraitJob) (string, error) {
	if !job.Succeeded() {
		return "", fmt.Errorf("ジョブ %d は成功していないため保存できません", job.ID)
	}

	fullPath := path.Join(e.baseDir, fileName(job))
	if err := e.writer.Write(ctx, fullPath, bytes.NewReader(job.Image.Data), job.Image.MimeType); err != nil {
		return "", fmt.Errorf("画像の保存に失敗しました: %w", err)
	}
	return fullPath, nil
}

// SaveAll は成功済みジョブをすべて保存し、保存先パスの一覧を返します。
// 1件の保存失敗で打ち切らず、最後にまとめてエラーを返します。
func (e *Exporter) SaveAll(ctx context.Context, jobs domain.PortraitJobs) ([]string, error) {
	var paths []string
	var firstErr error
	for _, job := range jobs {
		if !job.Succeeded() {
			continue
		}
		saved, err := e.SaveImage(ctx, job)
		if err != nil {
			slog.WarnContext(ctx, "画像の保存をスキップしました", "job_id", job.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		paths = append(paths, saved)
	}
	return paths, firstErr
}

// SaveVideo は動画成果物を保存し、保存先の相対パスを返します。
func (e *Exporter) SaveVideo(ctx context.Context, name string, video domain.VideoArtifact) (string, error) {
	fullPath := path.Join(e.baseDir, name+extension(video.MimeType))
	if err := e.writer.Write(ctx, fullPath, bytes.NewReader(video.Data), video.MimeType); err != nil {
		return "", fmt.Errorf("動画の保存に失敗しました: %w", err)
	}
	return fullPath, nil
}

func fileName(job domain.PortraitJob) string {
	return fmt.Sprintf("portrait_%03d%s", job.ID, extension(job.Image.MimeType))
}

// extension は MIME タイプから拡張子を引きます。未知のタイプは .bin です。
func extension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	default:
		return ".bin"
	}
}
