package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// MockModel is the model name recorded for mock summaries.
const MockModel = "mock"

// FollowUpSubject is the subject line of every mock follow-up email.
const FollowUpSubject = "【セッション振り返り】本日のセッションありがとうございました"

var leadingMarker = regexp.MustCompile(`^[-*#]+\s*`)

// MockGenerator builds summaries and emails from fixed Japanese templates,
// filling in topics taken from the first lines of the note.
type MockGenerator struct{}

// NewMockGenerator creates a new mock generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateSummary returns a templated summary whose topics are the first
// non-empty note lines.
func (m *MockGenerator) GenerateSummary(ctx context.Context, noteContent string) (*domain.GeneratedSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	topics := noteTopics(noteContent, 5)
	topic1 := topicOr(topics, 0, "セッションの振り返り")
	topic2 := topicOr(topics, 1, "中長期目標の進捗確認")
	topic3 := topicOr(topics, 2, "新たな気づきの整理")

	summary := fmt.Sprintf(`## セッション要約

### 主な話題
- %s
- %s
- %s

### 気づき・洞察
- クライアントは前回からの進捗について報告し、新たな視点を得ることができました
- 現在の課題に対する具体的なアプローチが明確になりました
- 自身の強みを活かした行動計画について前向きな姿勢が見られました

### 全体的な印象
セッション全体を通じて、クライアントは積極的に自己開示を行い、深い内省が見られました。次回のセッションでは、今回設定したアクションアイテムの振り返りと、さらなる目標の具体化が期待されます。`, topic1, topic2, topic3)

	agenda := fmt.Sprintf(`## 次回のアジェンダ案

- 今回のアクションアイテムの振り返り
- %s
- %s
- 中長期目標に向けた次のステップの検討`, topic2, topic3)

	return &domain.GeneratedSummary{
		SummaryText: summary,
		ActionItems: []domain.ActionItem{
			{Item: topic1 + "について振り返りを行う"},
			{Item: "前回のアクションアイテムの進捗を確認する"},
			{Item: topic2 + "に取り組む"},
		},
		NextAgenda: agenda,
		Model:      MockModel,
	}, nil
}

// GenerateFollowUp returns a templated thank-you email quoting the summary.
func (m *MockGenerator) GenerateFollowUp(ctx context.Context, noteContent, clientName, summaryText string) (*domain.GeneratedEmail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body := fmt.Sprintf(`%s様

お疲れさまでした。本日のセッションの振り返りをお送りいたします。

━━━━━━━━━━━━━━━━━━━━

%s

━━━━━━━━━━━━━━━━━━━━

次回のセッションまでに、上記のアクションアイテムに取り組んでいただければ幸いです。

何かご不明な点やご質問がございましたら、お気軽にご連絡ください。

引き続きよろしくお願いいたします。`, clientName, summaryText)

	return &domain.GeneratedEmail{
		Subject: FollowUpSubject,
		Body:    body,
	}, nil
}

// noteTopics returns up to max non-empty lines with leading markdown markers removed.
func noteTopics(content string, max int) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > max {
		lines = lines[:max]
	}

	topics := make([]string, 0, len(lines))
	for _, line := range lines {
		topic := strings.TrimSpace(leadingMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if topic != "" {
			topics = append(topics, topic)
		}
	}
	return topics
}

func topicOr(topics []string, i int, fallback string) string {
	if i < len(topics) {
		return topics[i]
	}
	return fallback
}
