package proximity

const (
	CONTACT_ENTER EventType = iota
	CONTACT_STAY
	CONTACT_EXIT
)

type EventType uint8

func (t EventType) String() string {
	switch t {
	case CONTACT_ENTER:
		return "contact_enter"
	case CONTACT_STAY:
		return "contact_stay"
	case CONTACT_EXIT:
		return "contact_exit"
	default:
		return "unknown"
	}
}

// contactKey identifies a contact across steps
type contactKey struct {
	kind CandidateKind
	a, b int
}

func makeContactKey(c Contact) contactKey {
	return contactKey{kind: c.Kind, a: c.A, b: c.B}
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// ContactEnterEvent is sent the first step a pair gets closer than the activation distance
type ContactEnterEvent struct {
	Contact Contact
}

func (e ContactEnterEvent) Type() EventType { return CONTACT_ENTER }

// ContactStayEvent is sent every following step the pair stays active
type ContactStayEvent struct {
	Contact Contact
}

func (e ContactStayEvent) Type() EventType { return CONTACT_STAY }

// ContactExitEvent is sent once the pair is no longer active, Contact holds its last measure
type ContactExitEvent struct {
	Contact Contact
}

func (e ContactExitEvent) Type() EventType { return CONTACT_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Contact tracking for Enter/Stay/Exit detection
	previousContacts map[contactKey]Contact
	currentContacts  map[contactKey]Contact
}

func NewEvents() Events {
	return Events{
		listeners:        make(map[EventType][]EventListener),
		buffer:           make([]Event, 0, 256),
		previousContacts: make(map[contactKey]Contact),
		currentContacts:  make(map[contactKey]Contact),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		*e = NewEvents()
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// Reset forgets the tracked contacts, the next step only reports enter events
func (e *Events) Reset() {
	clear(e.previousContacts)
	clear(e.currentContacts)
	e.buffer = e.buffer[:0]
}

// recordContacts marks the contacts active for the current step
func (e *Events) recordContacts(contacts []Contact) {
	if e.currentContacts == nil {
		listeners := e.listeners
		*e = NewEvents()
		if listeners != nil {
			e.listeners = listeners
		}
	}
	for _, c := range contacts {
		e.currentContacts[makeContactKey(c)] = c
	}
}

// processContactEvents compares current and previous contacts to detect Enter/Stay/Exit.
// Contacts are walked in sorted order so listeners see a stable sequence.
func (e *Events) processContactEvents(contacts []Contact) {
	for _, c := range contacts {
		if _, ok := e.previousContacts[makeContactKey(c)]; ok {
			e.buffer = append(e.buffer, ContactStayEvent{Contact: c})
		} else {
			e.buffer = append(e.buffer, ContactEnterEvent{Contact: c})
		}
	}

	exited := make([]Contact, 0)
	for key, c := range e.previousContacts {
		if _, ok := e.currentContacts[key]; !ok {
			exited = append(exited, c)
		}
	}
	sortContacts(exited)
	for _, c := range exited {
		e.buffer = append(e.buffer, ContactExitEvent{Contact: c})
	}

	// Swap for next step and clear current
	e.previousContacts, e.currentContacts = e.currentContacts, e.previousContacts
	clear(e.currentContacts)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush(contacts []Contact) {
	e.processContactEvents(contacts)

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
