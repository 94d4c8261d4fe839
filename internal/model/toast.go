package model

type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastInfo    ToastLevel = "info"
	ToastError   ToastLevel = "error"
)

// Toast is a short status message shown to the user after an action.
type Toast struct {
	ID          string     `json:"id"`
	Level       ToastLevel `json:"level"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
}
