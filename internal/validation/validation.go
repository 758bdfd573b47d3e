// Package validation содержит проверки текстовых полей сделок и оценок.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxTradeNotesLength      = 2000
	MaxMeetupLocationLength  = 500
	MaxRejectionReasonLength = 1000
	MaxRatingCommentLength   = 2000
)

// ValidateLength проверяет длину строки в символах; 0 отключает границу.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

func ValidateTradeNotes(notes string) error {
	return ValidateLength("комментарий к сделке", notes, 0, MaxTradeNotesLength)
}

// ValidateMeetupLocation допускает отсутствие места встречи.
func ValidateMeetupLocation(location *string) error {
	if location == nil {
		return nil
	}
	if err := ValidateNonEmpty("место встречи", *location); err != nil {
		return err
	}
	return ValidateLength("место встречи", strings.TrimSpace(*location), 0, MaxMeetupLocationLength)
}

// ValidateRejectionReason допускает пустую причину; обязательность
// проверяется на уровне HTTP.
func ValidateRejectionReason(reason string) error {
	return ValidateLength("причина отказа", strings.TrimSpace(reason), 0, MaxRejectionReasonLength)
}

func ValidateRatingComment(comment string) error {
	return ValidateLength("комментарий к оценке", comment, 0, MaxRatingCommentLength)
}
