package store

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	// DefaultUserEmail identifies the implicit coach account.
	DefaultUserEmail = "coach@example.com"
	defaultUserName  = "デフォルトコーチ"
)

type seedTemplate struct {
	name        string
	description string
	category    string
	content     string
}

var systemTemplates = []seedTemplate{
	{
		name:        "ライフコーチング",
		description: "ライフコーチングセッション用テンプレート",
		category:    "life",
		content: `## セッション記録

### 今日のテーマ
-

### クライアントの状態・気づき
-

### 話し合った内容
-

### アクションアイテム
-

### 次回に向けて
- `,
	},
	{
		name:        "ビジネスコーチング",
		description: "ビジネスコーチングセッション用テンプレート",
		category:    "business",
		content: `## セッション記録

### 今日の議題
-

### ビジネス課題の整理
-

### 戦略・アクションプラン
-

### KPI・目標の進捗
-

### 次回のアジェンダ
- `,
	},
	{
		name:        "キャリアコーチング",
		description: "キャリアコーチングセッション用テンプレート",
		category:    "career",
		content: `## セッション記録

### 今日のテーマ
-

### キャリアの現状分析
-

### 強み・価値観の深掘り
-

### アクションステップ
-

### 次回までの課題
- `,
	},
}

// seed inserts the default coach and system templates into an empty database.
func (s *SQLiteStore) seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	return s.withTx(ctx, "seed database", func(tx *sql.Tx) error {
		now := s.timestamp()
		if _, err := s.exec(ctx, tx,
			`INSERT INTO users (id, email, name, title, specialty, plan, onboarding_completed, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, 'free', 0, ?, ?)`,
			newID(), DefaultUserEmail, defaultUserName, "プロコーチ", "life", now, now); err != nil {
			return err
		}
		for i, t := range systemTemplates {
			if _, err := s.exec(ctx, tx,
				`INSERT INTO templates (id, user_id, name, description, content, category, is_system, sort_order, created_at, updated_at)
				 VALUES (?, NULL, ?, ?, ?, ?, 1, ?, ?, ?)`,
				newID(), t.name, t.description, t.content, t.category, i, now, now); err != nil {
				return err
			}
		}
		return nil
	})
}
