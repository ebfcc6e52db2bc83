package service

import "errors"

var (
	ErrForbidden = errors.New("forbidden")

	// orders
	ErrOnlyCustomersOrder  = errors.New("only customers can place orders")
	ErrOrderFieldsRequired = errors.New("tailor_id and design_url are required")
	ErrInvalidTailor       = errors.New("invalid tailor")
	ErrOrderNotFound       = errors.New("order not found or unauthorized")
	ErrCancelWindowPassed  = errors.New("order cannot be cancelled after 24 hours")
	ErrNotPendingCancel    = errors.New("only pending orders can be cancelled")
	ErrOnlyTailorsConfirm  = errors.New("only tailors can confirm delivery")
	ErrNotPendingConfirm   = errors.New("only pending orders can be confirmed")
	ErrOnlyTailorsComplete = errors.New("only tailors can complete orders")
	ErrNotInProgress       = errors.New("only in-progress orders can be completed")

	// chats
	ErrOnlyCustomersChat = errors.New("only customers can create chats")
	ErrInvalidTailorID   = errors.New("invalid tailorId")
	ErrTailorNotFound    = errors.New("tailor not found")
	ErrChatNotFound      = errors.New("chat not found")
	ErrChatExists        = errors.New("chat already exists")
	ErrInvalidContent    = errors.New("invalid message content")

	// users
	ErrUserNotFound         = errors.New("user not found")
	ErrAlreadyRegistered    = errors.New("user already registered")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrInvalidRole          = errors.New("invalid user role")
	ErrOnlyCustomersMeasure = errors.New("only customers can record measurements")

	// translation
	ErrUnsupportedLanguage = errors.New("invalid messageId or unsupported target language")
	ErrMessageNotFound     = errors.New("message not found")

	// designs
	ErrOnlyTailorsDesign = errors.New("only tailors can upload designs")
	ErrDesignFields      = errors.New("missing required fields")
	ErrInvalidImage      = errors.New("invalid image format")
)

// TranslationError reports a failed call to the external translator.
type TranslationError struct {
	Err error
}

func (e *TranslationError) Error() string {
	return "translation failed: " + e.Err.Error()
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}
