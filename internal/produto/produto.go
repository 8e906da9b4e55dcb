package produto

import (
	"html/template"
	"time"
)

// Status classifies a listing within its donation lifecycle.
type Status string

const (
	StatusEmLiberacao Status = "em-liberacao" // pending release
	StatusLiberados   Status = "liberados"    // available for pickup
	StatusVencidos    Status = "vencidos"     // expiration date passed
	StatusDoados      Status = "doados"       // given away
)

// Statuses returns the four lifecycle statuses in display order.
func Statuses() []Status {
	return []Status{StatusEmLiberacao, StatusLiberados, StatusVencidos, StatusDoados}
}

// Valid reports whether s is one of the four lifecycle statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusEmLiberacao, StatusLiberados, StatusVencidos, StatusDoados:
		return true
	}
	return false
}

// Pinned reports whether s was set by an explicit donor action.
// Pinned statuses survive later edits; derivable ones are recomputed
// from the expiration date on every update.
func (s Status) Pinned() bool {
	return s == StatusLiberados || s == StatusDoados
}

// Badge is the presentation mapping for a status.
type Badge struct {
	Label   string
	Variant string
}

var badges = map[Status]Badge{
	StatusEmLiberacao: {Label: "Em liberação", Variant: "secondary"},
	StatusLiberados:   {Label: "Liberado", Variant: "default"},
	StatusVencidos:    {Label: "Vencido", Variant: "destructive"},
	StatusDoados:      {Label: "Doado", Variant: "outline"},
}

// Badge returns the display label and severity variant for s.
func (s Status) Badge() Badge {
	return badges[s]
}

// Produto is a single donation listing.
type Produto struct {
	ID               string    `json:"id"`                // Unique identifier.
	Photo            []byte    `json:"photo,omitempty"`   // Optional photo blob.
	PhotoDescription string    `json:"photo_description"` // Alt text for the photo.
	Name             string    `json:"name"`              // Display name of the listing.
	PickupInfo       string    `json:"pickup_info"`       // Where and when to pick it up.
	Description      string    `json:"description"`       // Full description.
	ExpirationDate   time.Time `json:"expiration_date"`   // Calendar date, no time-of-day semantics.
	ReleaseTime      string    `json:"release_time"`      // Free-text duration label, e.g. "2 horas".
	Status           Status    `json:"status"`            // Lifecycle status.
	CreatedAt        time.Time `json:"created_at"`        // When the listing was added.
}

// NameHTML fixes encoding issues.
func (p *Produto) NameHTML() template.HTML {
	return template.HTML(p.Name)
}

// DeriveStatus computes the status for a listing that has not been pinned:
// vencidos when the expiration date lies strictly before now, em-liberacao
// otherwise.
func DeriveStatus(expiration, now time.Time) Status {
	if expiration.Before(now) {
		return StatusVencidos
	}
	return StatusEmLiberacao
}
