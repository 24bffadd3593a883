package story

// History keeps a bounded transcript of the exchange between the user and the
// character, oldest lines dropped first. It feeds generation prompts, so it
// stays small on purpose.
type History struct {
	exchanges []string
	maxSize   int
}

func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = 30
	}
	return &History{
		exchanges: make([]string, 0, maxSize),
		maxSize:   maxSize,
	}
}

func (h *History) AddUserLine(text string) {
	h.add("User: " + text)
}

func (h *History) AddCharacterLine(name, text string) {
	h.add(name + ": " + text)
}

func (h *History) add(entry string) {
	h.exchanges = append(h.exchanges, entry)

	if len(h.exchanges) > h.maxSize {
		h.exchanges = h.exchanges[len(h.exchanges)-h.maxSize:]
	}
}

// Entries returns a copy of the transcript.
func (h *History) Entries() []string {
	result := make([]string, len(h.exchanges))
	copy(result, h.exchanges)
	return result
}
