package telegram

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type editMessageRequest struct {
	ChatID    string `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
}

type apiResponse interface {
	OK() bool
	ErrorText() string
}

type baseResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
}

func (r *baseResponse) OK() bool          { return r.Ok }
func (r *baseResponse) ErrorText() string { return r.Description }

type sendMessageResponse struct {
	baseResponse
	Result struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// Update is the inbound webhook shape: just the fields the funnel reacts to.
type Update struct {
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      *Chat  `json:"chat,omitempty"`
	Text      string `json:"text,omitempty"`
}

type CallbackQuery struct {
	ID   string `json:"id"`
	From *User  `json:"from,omitempty"`
	Data string `json:"data,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type Chat struct {
	ID int64 `json:"id"`
}
