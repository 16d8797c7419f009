package loginflow

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Input validation for the interactive fields. A failure here never aborts
// the flow; the orchestrator re-prompts for the same field.

func parseAPIID(input string) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, errors.New("api id is required")
	}
	apiID, err := strconv.Atoi(input)
	if err != nil {
		return 0, errors.New("api id must be numeric")
	}
	if apiID <= 0 {
		return 0, errors.New("api id must be positive")
	}
	return apiID, nil
}

func validateAPIHash(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("api hash is required")
	}
	return input, nil
}

func validatePhoneNumber(input string) (string, error) {
	phone := strings.TrimSpace(input)
	phone = strings.ReplaceAll(phone, " ", "")
	if phone == "" {
		return "", errors.New("phone number is required")
	}
	digits := phone
	if strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}
	if len(digits) < 7 {
		return "", errors.New("phone number is too short")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", errors.New("phone number must contain only digits")
		}
	}
	return phone, nil
}
