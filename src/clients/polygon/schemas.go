package polygon

// Event is one element of a feed message. Trades ("T") carry Price and
// Timestamp; minute aggregates ("AM") carry Close and End.
type Event struct {
	Ev        string  `json:"ev"`
	Status    string  `json:"status,omitempty"`
	Message   string  `json:"message,omitempty"`
	Sym       string  `json:"sym,omitempty"`
	Price     float64 `json:"p,omitempty"`
	Size      float64 `json:"s,omitempty"`
	Timestamp int64   `json:"t,omitempty"`
	Close     float64 `json:"c,omitempty"`
	End       int64   `json:"e,omitempty"`
}

type action struct {
	Action string `json:"action"`
	Params string `json:"params"`
}
