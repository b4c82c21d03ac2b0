package model

// Form field names, shared by validation, handlers and views.
const (
	FieldFirstName = "firstname"
	FieldLastName  = "lastname"
	FieldEmail     = "email"
	FieldPassword  = "password"
)

// FieldErrors maps a field name to the first validation message it failed.
type FieldErrors map[string]string

// Add records msg for field unless the field already has an error.
func (e FieldErrors) Add(field, msg string) {
	if _, exists := e[field]; exists {
		return
	}
	e[field] = msg
}

// Get returns the message recorded for field, or "".
func (e FieldErrors) Get(field string) string {
	return e[field]
}

// Empty reports whether no field failed validation.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// NoticeKind classifies a notification.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient notification shown to the user as a toast.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}
