package domain

// PortraitJobs はセッションの結果リスト（表示順）を表すスライスです。
type PortraitJobs []PortraitJob

// Failed は ERROR 状態のジョブのみを抽出します。
func (js PortraitJobs) Failed() PortraitJobs {
	var failed PortraitJobs
	for _, j := range js {
		if j.Status == StatusError {
			failed = append(failed, j)
		}
	}
	return failed
}

// Unsettled はまだ終端状態に達していないジョブを抽出します。
func (js PortraitJobs) Unsettled() PortraitJobs {
	var pending PortraitJobs
	for _, j := range js {
		if !j.Settled() {
			pending = append(pending, j)
		}
	}
	return pending
}

// FindByID は ID が一致するジョブを返します。見つからない場合は ok が false です。
func (js PortraitJobs) FindByID(id int64) (PortraitJob, bool) {
	for _, j := range js {
		if j.ID == id {
			return j, true
		}
	}
	return PortraitJob{}, false
}

// UsedPrompts は既存ジョブのプロンプト本文の集合を返します。
// extend 時の重複排除（完全一致）に使います。
func (js PortraitJobs) UsedPrompts() map[string]struct{} {
	set := make(map[string]struct{}, len(js))
	for _, j := range js {
		set[j.Prompt] = struct{}{}
	}
	return set
}
