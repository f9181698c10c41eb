package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/knockout-arena/betting"
	"github.com/Dosada05/knockout-arena/brackets"
	"github.com/Dosada05/knockout-arena/moderation"
	"github.com/Dosada05/knockout-arena/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error", slog.Any("error", err), slog.String("path", r.URL.Path))
	errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusNotFound, err.Error())
}

func conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusConflict, err.Error())
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusUnauthorized, err.Error())
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusForbidden, err.Error())
}

// mapServiceErrorToHTTP преобразует ошибки сервисов и доменных пакетов
// в HTTP-ответы. Отклонённая команда не меняет состояние, поэтому любой
// из этих статусов безопасно пересабмитить после исправления входа.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Валидация входа
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, brackets.ErrInvalidParticipant),
		errors.Is(err, betting.ErrInvalidAmount),
		errors.Is(err, betting.ErrOverLimit),
		errors.Is(err, betting.ErrInsufficientFunds):
		badRequestResponse(w, r, err)

	// Неизвестные сущности
	case errors.Is(err, brackets.ErrUnknownGroup),
		errors.Is(err, brackets.ErrUnknownMatch),
		errors.Is(err, betting.ErrWagerNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrParticipantNotFound):
		notFoundResponse(w, r, err)

	// Конфликт с текущим состоянием турнира или реестра
	case errors.Is(err, brackets.ErrAlreadyDecided),
		errors.Is(err, brackets.ErrMatchNotReady),
		errors.Is(err, brackets.ErrWrongStage),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrUsernameReserved):
		conflictResponse(w, r, err)

	// Аутентификация и запреты
	case errors.Is(err, services.ErrAuthInvalidCredentials):
		unauthorizedResponse(w, r, err)
	case errors.Is(err, services.ErrMuted),
		errors.Is(err, services.ErrForbiddenOperation),
		errors.Is(err, moderation.ErrPrivilegedIdentity):
		forbiddenResponse(w, r, err)

	default:
		serverErrorResponse(w, r, err)
	}
}
