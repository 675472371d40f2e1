package ai

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

func TestGenerateSummary(t *testing.T) {
	ctx := context.Background()
	gen := NewMockGenerator()

	t.Run("topics come from the note", func(t *testing.T) {
		result, err := gen.GenerateSummary(ctx, "## テーマ\n目標設定\n振り返り")
		require.NoError(t, err)
		assert.Contains(t, result.SummaryText, "セッション要約")
		assert.Contains(t, result.SummaryText, "- テーマ\n")
		assert.Contains(t, result.SummaryText, "- 目標設定\n")
		assert.Contains(t, result.NextAgenda, "次回のアジェンダ案")
		assert.Equal(t, MockModel, result.Model)

		encoded, err := domain.EncodeActionItems(result.ActionItems)
		require.NoError(t, err)
		var items []map[string]any
		require.NoError(t, json.Unmarshal([]byte(encoded), &items))
		require.NotEmpty(t, items)
		for _, item := range items {
			assert.Contains(t, item, "item")
			assert.Contains(t, item, "done")
		}
		assert.Equal(t, "テーマについて振り返りを行う", result.ActionItems[0].Item)
		assert.Equal(t, "目標設定に取り組む", result.ActionItems[2].Item)
	})

	t.Run("empty note uses defaults", func(t *testing.T) {
		result, err := gen.GenerateSummary(ctx, "")
		require.NoError(t, err)
		assert.Contains(t, result.SummaryText, "セッションの振り返り")
		assert.Contains(t, result.SummaryText, "中長期目標の進捗確認")
		assert.Contains(t, result.SummaryText, "新たな気づきの整理")
		assert.Equal(t, MockModel, result.Model)
	})

	t.Run("plain lines", func(t *testing.T) {
		result, err := gen.GenerateSummary(ctx, "キャリア目標の再確認\n\n- スキルアップ計画")
		require.NoError(t, err)
		assert.Contains(t, result.SummaryText, "- キャリア目標の再確認\n- スキルアップ計画\n- 新たな気づきの整理")
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := gen.GenerateSummary(ctx, "note body here")
		require.NoError(t, err)
		b, err := gen.GenerateSummary(ctx, "note body here")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestGenerateFollowUp(t *testing.T) {
	ctx := context.Background()
	gen := NewMockGenerator()

	result, err := gen.GenerateFollowUp(ctx, "本日のテーマ\n目標振り返り", "田中太郎", "要約テキスト")
	require.NoError(t, err)
	assert.Equal(t, FollowUpSubject, result.Subject)
	assert.Contains(t, result.Body, "田中太郎様")
	assert.Contains(t, result.Body, "要約テキスト")

	result, err = gen.GenerateFollowUp(ctx, "", "テスト", "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Subject)
	assert.NotEmpty(t, result.Body)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockGenerator().GenerateSummary(ctx, "content")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGenerator(t *testing.T) {
	gen, err := NewGenerator("MOCK")
	require.NoError(t, err)
	assert.IsType(t, &MockGenerator{}, gen)

	gen, err = NewGenerator("")
	require.NoError(t, err)
	assert.NotNil(t, gen)

	_, err = NewGenerator("gpt")
	assert.Error(t, err)
}
