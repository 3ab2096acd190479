package handlers

// Сообщения об ошибках, возвращаемые клиенту
const (
	MsgURLRequired    = "TikTok URL is required"
	MsgInvalidURL     = "Please provide a valid TikTok URL"
	MsgProcessFailed  = "Failed to process TikTok URL. Please check the URL and try again."
	MsgInternalServer = "Internal server error"
)

// ValidationError описывает некорректный запрос клиента (400)
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
