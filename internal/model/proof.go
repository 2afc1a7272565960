package model

import "time"

// Proof is the photographic evidence captured before a transaction is
// submitted. The ledger only ever sees its Ref.
type Proof struct {
	Ref       string    `json:"ref"`
	FileName  string    `json:"fileName"`
	Timestamp time.Time `json:"timestamp"`
	Location  *Location `json:"location,omitempty"`
	MIME      string    `json:"mime"`
	Data      []byte    `json:"-"`
}
