// Package validation registers the custom binding rules used by request DTOs.
package validation

import (
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// StrongPasswordTag is the binding tag for StrongPassword.
const StrongPasswordTag = "strongpassword"

// MinPasswordLength is the shortest password StrongPassword accepts.
const MinPasswordLength = 8

var once sync.Once

// Register installs the custom rules on gin's validator. Calling it more than once is harmless.
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// タグ名は固定のため、登録エラーは発生しない
		_ = v.RegisterValidation(StrongPasswordTag, strongPassword)
	})
}

func strongPassword(fl validator.FieldLevel) bool {
	return StrongPassword(fl.Field().String())
}

// StrongPassword reports whether s has at least MinPasswordLength characters including
// an upper-case letter, a lower-case letter, a digit and a symbol.
func StrongPassword(s string) bool {
	var n int
	var upper, lower, digit, symbol bool
	for _, r := range s {
		n++
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return n >= MinPasswordLength && upper && lower && digit && symbol
}
