package api

import (
	"errors"  // Error unwrapping
	"strings" // Field name formatting
	"unicode" // Case checks for snake_case conversion

	"github.com/gin-gonic/gin"                   // Gin web framework
	"github.com/go-playground/validator/v10"     // Validation engine behind gin binding tags
)

// fieldErrors builds a field-addressable validation error body
func fieldErrors(fields map[string]string) gin.H {
	return gin.H{"errors": fields}
}

// bindErrors translates a gin binding failure into a field-addressable error
// body. Validator errors are keyed by the snake_case field name; anything else
// (malformed JSON, wrong types) gets a generic message.
func bindErrors(err error) gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		// Map each failed field to a message
		for _, fe := range verrs {
			fields[toSnake(fe.Field())] = validationMessage(fe)
		}
		return gin.H{"errors": fields}
	}
	return gin.H{"error": "Invalid request"}
}

// validationMessage maps a validator tag to a human readable message
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "gte", "lte", "min", "max":
		return "Value out of allowed range."
	default:
		return "Invalid value."
	}
}

// toSnake converts a Go field name to its snake_case JSON form
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
