package messages

// MsgMessageAccepted is the acknowledgment sent back to the chat after a
// webhook update is processed.
const MsgMessageAccepted = "Дякую! Ваше повідомлення прийнято."
