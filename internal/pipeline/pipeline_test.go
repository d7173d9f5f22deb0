package pipeline

import (
	"testing"

	"github.com/shouni/go-image-edit-kit/pkg/prompts"
)

func TestResolveTemplate(t *testing.T) {
	t.Run("断片テキストの値部で解決できる", func(t *testing.T) {
		tmpl, err := resolveTemplate("pose:standing")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if tmpl.Label != "立ち" || tmpl.Text != "pose:standing" {
			t.Errorf("解決結果が想定と異なる: %+v", tmpl)
		}
	})

	t.Run("リスト項目付きの指定も編集面の行と同じ規則で解決する", func(t *testing.T) {
		plain, err := resolveTemplate("pose:standing")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		marked, err := resolveTemplate("- pose:standing")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if plain != marked {
			t.Errorf("同じ断片に解決されるべき: %+v vs %+v", plain, marked)
		}
	})

	t.Run("表示ラベルでも解決できる", func(t *testing.T) {
		tmpl, err := resolveTemplate("pose:立ち")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if tmpl.Text != "pose:standing" {
			t.Errorf("Text = %q, want pose:standing", tmpl.Text)
		}
	})

	t.Run("未知のカテゴリはエラー", func(t *testing.T) {
		if _, err := resolveTemplate("weather:sunny"); err == nil {
			t.Error("未知カテゴリはエラーになるべき")
		}
	})

	t.Run("カテゴリに無い値はエラー", func(t *testing.T) {
		if _, err := resolveTemplate("pose:flying"); err == nil {
			t.Error("カタログに無い値はエラーになるべき")
		}
	})

	t.Run("コロンを含まない指定はエラー", func(t *testing.T) {
		if _, err := resolveTemplate("standing"); err == nil {
			t.Error("断片形式でない指定はエラーになるべき")
		}
	})

	// カタログの全断片が自分自身のテキストで解決できることの確認
	t.Run("カタログの全断片は自身のテキストで解決できる", func(t *testing.T) {
		for _, category := range prompts.Catalog() {
			for _, want := range category.Templates {
				got, err := resolveTemplate(want.Text)
				if err != nil {
					t.Errorf("%q の解決に失敗した: %v", want.Text, err)
					continue
				}
				if got != want {
					t.Errorf("%q → %+v, want %+v", want.Text, got, want)
				}
			}
		}
	})
}
