package domain

import "errors"

var (
	// ErrQuestionBankEmpty is returned when a bank source yields no questions.
	ErrQuestionBankEmpty = errors.New("question bank is empty")
	// ErrMalformedQuestion indicates a bank record is missing text or has an invalid answer label.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrMissingFields is returned when a required request field is empty.
	ErrMissingFields = errors.New("required fields missing")
	// ErrUserNotFound indicates no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for malformed, forged or expired bearer tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)
