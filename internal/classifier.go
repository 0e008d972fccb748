package internal

import "time"

// Classify decides how a raw bot response should be rendered. A pipe table
// wins over JSON, and JSON wins over plain text.
func Classify(raw string) Message {
	return classifyAt(raw, time.Now())
}

func classifyAt(raw string, now time.Time) Message {
	msg := Message{
		Raw:       raw,
		Sender:    SenderBot,
		Timestamp: now,
	}

	if table := ParseTable(raw); table != nil {
		msg.Payload = table
		return msg
	}

	if v, err := decodeJSONDocument([]byte(raw)); err == nil {
		msg.Payload = JSONData{Value: v}
		return msg
	}

	msg.Payload = TextData(raw)
	return msg
}
