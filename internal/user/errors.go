package user

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error はユーザーサービスのAPIエラー。
// 各エラーはちょうど1つのHTTPステータスコードと固定メッセージに対応する。
// 内部エラーの詳細はクライアントへ返さない。
type Error struct {
	// Status はHTTPステータスコード。
	Status int
	// Message はクライアントへ返す固定メッセージ。
	Message string
}

// Error はerrorインターフェースを満たす。
func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrRequiredValue は必須値が欠けていることを表す。
	ErrRequiredValue = &Error{Status: http.StatusBadRequest, Message: "必須の値が不足しています"}
	// ErrInvalidEmail はメールアドレスの形式が不正であることを表す。
	ErrInvalidEmail = &Error{Status: http.StatusUnprocessableEntity, Message: "有効でないメールアドレスです。再入力してください"}
	// ErrInvalidPassword はパスワードの形式が不正であることを表す。
	ErrInvalidPassword = &Error{Status: http.StatusUnprocessableEntity, Message: "有効でないパスワード（8文字以上20文字以下、特殊文字を1文字以上含む）です。再入力してください"}
	// ErrInvalidNickname はニックネームの形式が不正であることを表す。
	ErrInvalidNickname = &Error{Status: http.StatusUnprocessableEntity, Message: "有効でないニックネーム（10文字を超える、または特殊文字を含む）です。再入力してください"}
	// ErrDuplicatedEmail はメールアドレスが既に登録されていることを表す。
	ErrDuplicatedEmail = &Error{Status: http.StatusConflict, Message: "既に存在するメールアドレスです"}
	// ErrDuplicatedNickname はニックネームが既に登録されていることを表す。
	ErrDuplicatedNickname = &Error{Status: http.StatusConflict, Message: "既に存在するニックネームです"}
	// ErrNotFoundUser はユーザーが存在しないことを表す。
	ErrNotFoundUser = &Error{Status: http.StatusNotFound, Message: "存在しないユーザーです"}
	// ErrInvalidCredentials はメールアドレスとパスワードの組が一致しないことを表す。
	ErrInvalidCredentials = &Error{Status: http.StatusUnauthorized, Message: "メールアドレスまたはパスワードが一致しません"}
	// ErrUserHaveToSignIn はユーザー情報が不足しており、登録のやり直しが必要なことを表す。
	ErrUserHaveToSignIn = &Error{Status: http.StatusUnauthorized, Message: "ユーザー情報が不足しています。登録を完了してください"}
	// ErrAlreadyRegistered は既に本登録が完了していることを表す。
	ErrAlreadyRegistered = &Error{Status: http.StatusConflict, Message: "既に本登録が完了しています"}
	// ErrUnknownProvider はサポートされていないOAuth2プロバイダを表す。
	ErrUnknownProvider = &Error{Status: http.StatusNotFound, Message: "サポートされていないプロバイダです"}
)

// msgUserPartiallyCreated は部分作成状態のユーザーに返す202レスポンスのメッセージ。
// エラーではなく、クライアントにプロフィール完成を促す中間状態の通知である。
const msgUserPartiallyCreated = "ユーザー情報が部分的に作成されました。プロフィールを完成させてください"

// respondError はエラーをHTTPレスポンスへ変換する。
// 想定外のエラーは詳細を漏らさずに500を返し、内容はログにのみ出力する。
func respondError(c *gin.Context, err error) {
	if apiErr, ok := err.(*Error); ok {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
		return
	}
	log.Printf("内部エラー: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "内部サーバーエラーが発生しました"})
}
