package domain

// JobStatus はポートレート生成ジョブのライフサイクル状態です。
// PENDING -> GENERATING -> {SUCCESS | ERROR} と遷移し、
// ERROR はリトライによって再び GENERATING に戻ることができます。
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusGenerating JobStatus = "generating"
	StatusSuccess    JobStatus = "success"
	StatusError      JobStatus = "error"
)

// StyleCategory はプロンプトテンプレートのスタイル分類です。
type StyleCategory string

const (
	CategoryProfessional StyleCategory = "professional"
	CategoryCasual       StyleCategory = "casual"
	CategoryHighFashion  StyleCategory = "high-fashion"
)

// Gender はテンプレートの対象性別です。unisex はどちらにもマッチします。
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderUnisex Gender = "unisex"
)

// ReferenceImage はユーザーがアップロードした参照写真です。
// バイナリ本体はスナップショット（JSON）には含めません。
type ReferenceImage struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
	Name     string `json:"name"`
}

// ImageArtifact は生成された1枚のポートレート画像です。
type ImageArtifact struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
}

// VideoArtifact は生成された短尺動画です。
type VideoArtifact struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
}

// PortraitJob は「1枚のポートレート生成依頼」を表す作業単位です。
// ID はセッション内で一意かつ単調増加で、再利用されません。
// Image は Status が StatusSuccess のときに限り非 nil になります。
type PortraitJob struct {
	ID       int64          `json:"id"`
	Prompt   string         `json:"prompt"`
	Category StyleCategory  `json:"category"`
	Status   JobStatus      `json:"status"`
	Image    *ImageArtifact `json:"image,omitempty"`
}

// Settled はジョブが終端状態（成功または失敗）に達しているかを返します。
func (j PortraitJob) Settled() bool {
	return j.Status == StatusSuccess || j.Status == StatusError
}

// Succeeded は成果物を持つ成功状態かを返します。
func (j PortraitJob) Succeeded() bool {
	return j.Status == StatusSuccess && j.Image != nil
}
