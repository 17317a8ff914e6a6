package domain

import "github.com/go-playground/validator/v10"

// fieldValidator checks single values against validator tags ("email", "url").
var fieldValidator = validator.New()

func isEmail(s string) bool {
	return fieldValidator.Var(s, "required,email") == nil
}

func isURL(s string) bool {
	return fieldValidator.Var(s, "required,url") == nil
}
