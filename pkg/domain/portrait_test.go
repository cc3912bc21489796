package domain

import (
	"encoding/json"
	"testing"
)

func TestPortraitJob_Status(t *testing.T) {
	t.Run("成功ジョブだけが成果物を持つのだ", func(t *testing.T) {
		success := PortraitJob{ID: 1, Status: StatusSuccess, Image: &ImageArtifact{Data: []byte("png"), MimeType: "image/png"}}
		if !success.Succeeded() || !success.Settled() {
			t.Errorf("成功ジョブの判定が正しくないのだ: %+v", success)
		}

		failed := PortraitJob{ID: 2, Status: StatusError}
		if failed.Succeeded() {
			t.Error("ERROR ジョブが Succeeded 判定されてしまったのだ")
		}
		if !failed.Settled() {
			t.Error("ERROR は終端状態のはずなのだ")
		}

		generating := PortraitJob{ID: 3, Status: StatusGenerating}
		if generating.Settled() {
			t.Error("GENERATING は終端状態ではないのだ")
		}
	})
}

func TestPortraitJob_JSONSnapshot(t *testing.T) {
	t.Run("バイナリを含まないスナップショットに変換できるのだ", func(t *testing.T) {
		job := PortraitJob{
			ID:       7,
			Prompt:   "A professional studio portrait",
			Category: CategoryProfessional,
			Status:   StatusSuccess,
			Image:    &ImageArtifact{Data: []byte("raw-bytes"), MimeType: "image/png"},
		}

		data, err := json.Marshal(job)
		if err != nil {
			t.Fatalf("Marshal失敗なのだ: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal失敗なのだ: %v", err)
		}
		if decoded["status"] != string(StatusSuccess) {
			t.Errorf("status が保持されていないのだ: %v", decoded["status"])
		}
		img, ok := decoded["image"].(map[string]any)
		if !ok {
			t.Fatal("image フィールドが欠落しているのだ")
		}
		if _, leaked := img["Data"]; leaked {
			t.Error("画像バイナリがスナップショットに漏れているのだ")
		}
	})
}

func TestPortraitJobs_Helpers(t *testing.T) {
	jobs := PortraitJobs{
		{ID: 0, Prompt: "p0", Status: StatusSuccess, Image: &ImageArtifact{Data: []byte("a"), MimeType: "image/png"}},
		{ID: 1, Prompt: "p1", Status: StatusError},
		{ID: 2, Prompt: "p2", Status: StatusGenerating},
		{ID: 3, Prompt: "p3", Status: StatusError},
	}

	if got := jobs.Failed(); len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("Failed の抽出結果が違うのだ: %+v", got)
	}

	if got := jobs.Unsettled(); len(got) != 1 || got[0].ID != 2 {
		t.Errorf("Unsettled の抽出結果が違うのだ: %+v", got)
	}

	if _, ok := jobs.FindByID(99); ok {
		t.Error("存在しない ID が見つかってしまったのだ")
	}
	if j, ok := jobs.FindByID(3); !ok || j.Prompt != "p3" {
		t.Errorf("FindByID の結果が違うのだ: %+v", j)
	}

	used := jobs.UsedPrompts()
	if len(used) != 4 {
		t.Errorf("UsedPrompts の件数が違うのだ: %d", len(used))
	}
	if _, ok := used["p2"]; !ok {
		t.Error("p2 が UsedPrompts に含まれていないのだ")
	}
}
