package collector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Field names used across the order flow.
const (
	FieldPhone         = "phone"
	FieldNetwork       = "network"
	FieldAmount        = "amount"
	FieldNotifyMessage = "notify_message"
	FieldTransactionID = "transaction_id"
)

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// PhoneField accepts recipient numbers with a fixed national prefix and length.
func PhoneField(prompt, prefix string, length int) Field {
	return Field{
		Name:      FieldPhone,
		Prompt:    prompt,
		Normalize: strings.TrimSpace,
		Validate: func(s string) error {
			if !digitsOnly(s) || !strings.HasPrefix(s, prefix) || len(s) != length {
				return fmt.Errorf("phone must be %d digits starting with %s", length, prefix)
			}
			return nil
		},
	}
}

// NetworkField accepts one of the enumerated network tags, spelling-normalized.
func NetworkField(prompt string, allowed []string) Field {
	return Field{
		Name:   FieldNetwork,
		Prompt: prompt,
		Normalize: func(s string) string {
			return strings.ToLower(strings.TrimSpace(s))
		},
		Validate: func(s string) error {
			for _, a := range allowed {
				if s == a {
					return nil
				}
			}
			return fmt.Errorf("network must be one of: %s", strings.Join(allowed, ", "))
		},
	}
}

// AmountField accepts a positive integer amount.
func AmountField(prompt string) Field {
	return Field{
		Name:      FieldAmount,
		Prompt:    prompt,
		Normalize: strings.TrimSpace,
		Validate: func(s string) error {
			if !digitsOnly(s) {
				return errors.New("amount must contain digits only")
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil || n <= 0 {
				return errors.New("amount must be a positive number")
			}
			return nil
		},
	}
}

// NotifyField accepts the free-text payment notification.
func NotifyField(prompt string, minLength int) Field {
	return Field{
		Name:      FieldNotifyMessage,
		Prompt:    prompt,
		Normalize: strings.TrimSpace,
		Validate: func(s string) error {
			if len(s) < minLength {
				return fmt.Errorf("notification text must be at least %d characters", minLength)
			}
			return nil
		},
	}
}

// TransactionIDField accepts the merchant's transfer reference.
func TransactionIDField(prompt string, minLength int) Field {
	return Field{
		Name:      FieldTransactionID,
		Prompt:    prompt,
		Normalize: strings.TrimSpace,
		Validate: func(s string) error {
			if !digitsOnly(s) || len(s) < minLength {
				return fmt.Errorf("transaction id must be at least %d digits", minLength)
			}
			return nil
		},
	}
}
