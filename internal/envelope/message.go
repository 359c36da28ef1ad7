package envelope

// Message is a standard response message.
type Message string

const (
	MessageOK       Message = "OK"
	MessageFailed   Message = "Failed"
	MessageSuccess  Message = "Success"
	MessageUpdated  Message = "Updated"
	MessageDeleted  Message = "Deleted"
	MessageArchived Message = "Archived"
)

// Error messages. The bare forms follow a subject ("Email is invalid").
const (
	ErrAlreadyExist Message = "is already exist"
	ErrIsNotExist   Message = "isn't exist"
	ErrIsInvalid    Message = "is invalid"
	ErrNotFound     Message = "isn't found"
	ErrExpired      Message = "is expired"

	ErrDataAlreadyExist Message = "Data is already exist"
	ErrDataIsNotExist   Message = "Data isn't exist"
	ErrDataIsInvalid    Message = "Data is invalid"
	ErrDataNotFound     Message = "Data isn't found"
	ErrTokenExpired     Message = "Token is expired"

	ErrForbidden    Message = "Forbidden access"
	ErrUnauthorized Message = "Unathorized"
	ErrWentWrong    Message = "Service error, please tell admin"
)

// About prefixes the message with its subject: About("Email") on
// ErrIsInvalid gives "Email is invalid".
func (m Message) About(subject string) string {
	return subject + " " + string(m)
}
