package notify

// defaultTitle labels messages that carry no usable display fields.
const defaultTitle = "Notification"

// DisplayContent extracts a title and body from a loosely-typed inbound
// message. Fallback order: the structured notification block wins over
// generic data; within a block, title falls back to the default label and
// body falls back from "body" to "message" to empty.
func DisplayContent(msg InboundMessage) (title, body string) {
	source := msg.Notification
	if len(source) == 0 {
		source = msg.Data
	}

	title = source["title"]
	if title == "" {
		title = defaultTitle
	}

	body = source["body"]
	if body == "" {
		body = source["message"]
	}
	return title, body
}
