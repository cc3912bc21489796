package studio

import (
	"sync"

	"github.com/shouni/go-portrait-kit/pkg/domain"
)

// MaxReferenceImages はセッションに同時に保持できる参照写真の上限です。
const MaxReferenceImages = 4

// Session は1セッション分の共有可変状態の唯一の所有者です。
// ジョブの結果リスト（表示順）、参照写真セット、現在の生成設定、
// 実行中フラグを保持します。永続化はしません（プロセス終了で消えます）。
//
// ジョブ ID はリスト長ではなく単調増加カウンタで払い出すため、並行追加でも
// 一意性が崩れません。更新はすべて ID によるレコード単位の置き換えで、
// ゴルーチン間の競合はミューテックスで直列化します。
type Session struct {
	mu sync.RWMutex

	jobs   domain.PortraitJobs
	refs   []domain.ReferenceImage
	config GenerateConfig
	nextID int64

	batchActive bool
	videoActive bool
}

// NewSession は空のセッションを初期化します。
func NewSession() *Session {
	return &Session{}
}

// AddReference は参照写真を追加します。上限は4枚です。
func (s *Session) AddReference(img domain.ReferenceImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.refs) >= MaxReferenceImages {
		return ErrTooManyReferences
	}
	s.refs = append(s.refs, img)
	return nil
}

// RemoveReference は指定位置の参照写真を外します。範囲外は無視します。
func (s *Session) RemoveReference(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.refs) {
		return
	}
	s.refs = append(s.refs[:index], s.refs[index+1:]...)
}

// References は現在の参照写真セットのスナップショットを返します。
// ディスパッチ時にこのスナップショットを固定するため、以後のセット変更は
// 実行中・完了済みジョブに影響しません。
func (s *Session) References() []domain.ReferenceImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]domain.ReferenceImage, len(s.refs))
	copy(refs, s.refs)
	return refs
}

// Snapshot は結果リストの読み取り専用コピーを返します（表示層向け）。
func (s *Session) Snapshot() domain.PortraitJobs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make(domain.PortraitJobs, len(s.jobs))
	copy(jobs, s.jobs)
	return jobs
}

// InProgress はバッチまたは派生生成が実行中かを返します。
func (s *Session) InProgress() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batchActive
}

// VideoInProgress は動画生成が実行中かを返します。
func (s *Session) VideoInProgress() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.videoActive
}

// Config は現在の生成設定を返します。
func (s *Session) Config() GenerateConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// setConfig はバッチ開始時に現在の設定を差し替えます。
func (s *Session) setConfig(cfg GenerateConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

// tryBeginBatch はバッチ/派生生成のゲートを取得します。取得できなければ false。
func (s *Session) tryBeginBatch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchActive {
		return false
	}
	s.batchActive = true
	return true
}

func (s *Session) endBatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchActive = false
}

// tryBeginVideo は動画生成のゲートを取得します。
func (s *Session) tryBeginVideo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.videoActive {
		return false
	}
	s.videoActive = true
	return true
}

func (s *Session) endVideo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoActive = false
}

// resetJobs は結果リストを新しい PENDING ジョブ群で置き換えます（startBatch 用）。
// ID カウンタはリセットせず、セッション内での一意性を守ります。
func (s *Session) resetJobs(prompts []string, categories []domain.StyleCategory) domain.PortraitJobs {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = nil
	return s.appendLocked(prompts, categories, domain.StatusPending)
}

// appendJobs は結果リストの末尾に新しい PENDING ジョブ群を追加します（extendBatch 用）。
func (s *Session) appendJobs(prompts []string, categories []domain.StyleCategory) domain.PortraitJobs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(prompts, categories, domain.StatusPending)
}

// appendPlaceholders は派生生成用のプレースホルダを GENERATING 状態で追加します。
func (s *Session) appendPlaceholders(count int, prompt string, category domain.StyleCategory) domain.PortraitJobs {
	prompts := make([]string, count)
	categories := make([]domain.StyleCategory, count)
	for i := range count {
		prompts[i] = prompt
		categories[i] = category
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(prompts, categories, domain.StatusGenerating)
}

func (s *Session) appendLocked(prompts []string, categories []domain.StyleCategory, status domain.JobStatus) domain.PortraitJobs {
	created := make(domain.PortraitJobs, 0, len(prompts))
	for i, prompt := range prompts {
		job := domain.PortraitJob{
			ID:       s.nextID,
			Prompt:   prompt,
			Category: categories[i],
			Status:   status,
		}
		s.nextID++
		s.jobs = append(s.jobs, job)
		created = append(created, job)
	}
	return created
}

// jobByID は ID 一致のジョブを返します。
func (s *Session) jobByID(id int64) (domain.PortraitJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs.FindByID(id)
}

// usedPrompts は既存ジョブのプロンプト集合を返します。
func (s *Session) usedPrompts() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs.UsedPrompts()
}

// updateJob は ID 一致のレコードをまるごと置き換えます。
// 各ディスパッチの完了コールバックは自分のジョブだけを触るため、
// この直列化だけで相互干渉は起きません。
func (s *Session) updateJob(id int64, mutate func(*domain.PortraitJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			updated := s.jobs[i]
			mutate(&updated)
			s.jobs[i] = updated
			return
		}
	}
}

// markGenerating はジョブを GENERATING に遷移させ、成果物を外します。
// 「成果物は SUCCESS のときに限り非 nil」という不変条件を守るためです。
func (s *Session) markGenerating(id int64) {
	s.updateJob(id, func(j *domain.PortraitJob) {
		j.Status = domain.StatusGenerating
		j.Image = nil
	})
}

// settleSuccess はジョブを成果物付きの SUCCESS で確定します。
func (s *Session) settleSuccess(id int64, artifact *domain.ImageArtifact) {
	s.updateJob(id, func(j *domain.PortraitJob) {
		j.Status = domain.StatusSuccess
		j.Image = artifact
	})
}

// settleError はジョブを ERROR で確定します。成果物は持ちません。
func (s *Session) settleError(id int64) {
	s.updateJob(id, func(j *domain.PortraitJob) {
		j.Status = domain.StatusError
		j.Image = nil
	})
}

// setPrompt は派生生成でプレースホルダに確定プロンプトを割り当てます。
func (s *Session) setPrompt(id int64, prompt string) {
	s.updateJob(id, func(j *domain.PortraitJob) {
		j.Prompt = prompt
	})
}
