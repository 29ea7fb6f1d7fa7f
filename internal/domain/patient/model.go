package patient

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no patient has the requested code.
var ErrNotFound = errors.New("patient not found")

// Patient maps to the patients table. PatientID is the external code that
// vital records carry; History is stored encrypted when PHI encryption is on.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID string    `db:"patient_id" json:"patient_id"`
	Name      string    `db:"name" json:"name"`
	Age       *int      `db:"age" json:"age,omitempty"`
	History   *string   `db:"history" json:"history,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
