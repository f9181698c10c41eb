package services

import "errors"

// Общие ошибки сервисного слоя. Ошибки ядра (brackets, betting, moderation)
// не переупаковываются: обработчики мапят их на HTTP-статусы напрямую.
var (
	// Валидация входа: команда отклонена до каких-либо мутаций.
	ErrValidationFailed = errors.New("validation failed")
	ErrPasswordTooShort = errors.New("password is too short")

	// Аутентификация и регистрация
	ErrAuthInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken          = errors.New("username is already in use")
	ErrUsernameReserved       = errors.New("username is reserved")
	ErrUserNotFound           = errors.New("user not found")

	// Чат
	ErrMuted              = errors.New("user is muted")
	ErrForbiddenOperation = errors.New("operation not allowed for this user")

	// Административные операции
	ErrParticipantNotFound = errors.New("participant not found in the bracket")
)
