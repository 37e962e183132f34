package models

import (
	"fmt"
	"strings"
)

// Speaker identifies who produced a transcript entry
type Speaker int

const (
	SpeakerUser Speaker = iota
	SpeakerAssistant
	SpeakerError
)

// String returns the label shown in the log
func (s Speaker) String() string {
	switch s {
	case SpeakerUser:
		return "You"
	case SpeakerAssistant:
		return "Assistant"
	case SpeakerError:
		return "Error"
	default:
		return fmt.Sprintf("Speaker(%d)", int(s))
	}
}

// Entry is a single line of the chat transcript. Entries are values and are
// never modified once appended.
type Entry struct {
	Speaker Speaker
	Text    string
	// Exchange is the sequence number of the exchange this entry belongs to.
	// A prompt and its follow-up share the same number.
	Exchange uint64
}

// String renders the entry as "<speaker>: <text>"
func (e Entry) String() string {
	return e.Speaker.String() + ": " + e.Text
}

// Transcript is the ordered, append-only log of a chat session.
// It is owned by a single view-model and is not safe for concurrent use.
type Transcript struct {
	entries []Entry
}

// NewTranscript returns an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds an entry at the end of the transcript
func (t *Transcript) Append(e Entry) {
	t.entries = append(t.entries, e)
}

// Entries returns a copy of the entries in insertion order
func (t *Transcript) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries
func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Last returns the most recent entry from the given speaker
func (t *Transcript) Last(speaker Speaker) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Speaker == speaker {
			return t.entries[i], true
		}
	}
	return Entry{}, false
}

// String renders the whole transcript, one entry per line
func (t *Transcript) String() string {
	var sb strings.Builder
	for _, e := range t.Entries() {
		sb.WriteString(e.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
