package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// HTTPレスポンスに変換されるコードとメッセージを含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, content, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeTopicNotFound    = "TOPIC_NOT_FOUND"
	ErrCodeCategoryNotFound = "CATEGORY_NOT_FOUND"
	ErrCodeTagNotFound      = "TAG_NOT_FOUND"
	ErrCodeGenerationFailed = "GENERATION_FAILED"
)

// NewTopicNotFoundError はトピック未検出エラーを生成する。
// 非表示・制限カテゴリ所属・regular以外のトピックも未検出として扱う。
func NewTopicNotFoundError(topicID int64) *APIError {
	return &APIError{
		Code:     ErrCodeTopicNotFound,
		Message:  fmt.Sprintf("指定されたトピックが見つかりません: %d", topicID),
		Category: "content",
	}
}

// NewCategoryNotFoundError はカテゴリ未検出エラーを生成する。
func NewCategoryNotFoundError(categoryID int64) *APIError {
	return &APIError{
		Code:     ErrCodeCategoryNotFound,
		Message:  fmt.Sprintf("指定されたカテゴリが見つかりません: %d", categoryID),
		Category: "content",
	}
}

// NewTagNotFoundError はタグ未検出エラーを生成する。
func NewTagNotFoundError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeTagNotFound,
		Message:  fmt.Sprintf("指定されたタグが見つかりません: %s", name),
		Category: "content",
	}
}

// NewGenerationFailedError はドキュメント生成失敗エラーを生成する。
// リポジトリ障害はリトライせずこのエラーとして呼び出し側へ伝播する。
func NewGenerationFailedError(doc string, err error) *APIError {
	return &APIError{
		Code:     ErrCodeGenerationFailed,
		Message:  fmt.Sprintf("ドキュメントの生成に失敗しました (%s): %v", doc, err),
		Category: "system",
	}
}
