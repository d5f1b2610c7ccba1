package user

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// emailPattern はメールアドレスの形式チェックに使用する正規表現。
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// validateEmail はメールアドレスの形式を検証する。
func validateEmail(email string) error {
	if email == "" {
		return ErrRequiredValue
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// validatePassword はパスワードの形式を検証する。
// 8文字以上20文字以下で、特殊文字を1文字以上含む必要がある。
func validatePassword(password string) error {
	if password == "" {
		return ErrRequiredValue
	}
	length := utf8.RuneCountInString(password)
	if length < 8 || length > 20 {
		return ErrInvalidPassword
	}
	hasSpecial := false
	for _, r := range password {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			hasSpecial = true
			break
		}
	}
	if !hasSpecial {
		return ErrInvalidPassword
	}
	return nil
}

// validateNickname はニックネームの形式を検証する。
// 10文字以下で、英数字とかな・漢字のみ使用できる（特殊文字は不可）。
func validateNickname(nickname string) error {
	if nickname == "" {
		return ErrRequiredValue
	}
	if utf8.RuneCountInString(nickname) > 10 {
		return ErrInvalidNickname
	}
	for _, r := range nickname {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ErrInvalidNickname
		}
	}
	return nil
}
