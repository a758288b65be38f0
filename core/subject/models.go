package subject

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/escolarapp/escolar/core"
)

// Subject is a course record. Field names mirror what the frontend expects.
type Subject struct {
	ID        int       `db:"id" json:"id"`
	NRC       string    `db:"nrc" json:"nrc"`
	Name      string    `db:"nombre_materia" json:"nombre_materia"`
	TeacherID null.Int  `db:"profesor_id" json:"profesor"`
	Days      string    `db:"dias" json:"dias"`
	StartTime string    `db:"hora_inicio" json:"hora_inicio"`
	EndTime   string    `db:"hora_fin" json:"hora_fin"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"` // UTC
}

// DayList accepts either a JSON array of day names, joined on decode as
// "Lunes, Martes", or an already-joined string passed through unchanged.
type DayList string

func (d *DayList) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err == nil {
		*d = DayList(strings.Join(names, ", "))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = DayList(s)
	return nil
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	NRC         string  `json:"nrc" validate:"required"`
	Name        string  `json:"nombre_materia" validate:"required"`
	DisplayName string  `json:"nombre"` // frontend alias for nombre_materia
	TeacherID   *int    `json:"profesor_id"`
	Days        DayList `json:"dias"`
	StartTime   string  `json:"hora_inicio" validate:"omitempty,hora"`
	EndTime     string  `json:"hora_fin" validate:"omitempty,hora"`
}

// normalize reshapes frontend fields into their canonical form. No validation
// happens here; referential checks belong to the service.
func (ns *NewSubject) normalize() {
	ns.NRC = core.CleanString(ns.NRC)
	ns.DisplayName = core.CleanString(ns.DisplayName)
	ns.Name = core.CleanString(ns.Name)
	// nombre -> nombre_materia, without clobbering explicit canonical input
	if ns.Name == "" {
		ns.Name = ns.DisplayName
	}
	ns.StartTime = NormalizeTime(ns.StartTime)
	ns.EndTime = NormalizeTime(ns.EndTime)
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.normalize()
	return validate.Struct(ns)
}

// UpdateSubject defines what information may be provided to modify an existing
// Subject; only supplied fields overwrite existing ones. ID may double as the
// body-provided record identifier.
type UpdateSubject struct {
	ID          *int     `json:"id"`
	NRC         *string  `json:"nrc"`
	Name        *string  `json:"nombre_materia"`
	DisplayName *string  `json:"nombre"`
	TeacherID   *int     `json:"profesor_id"`
	Days        *DayList `json:"dias"`
	StartTime   *string  `json:"hora_inicio" validate:"omitempty,hora"`
	EndTime     *string  `json:"hora_fin" validate:"omitempty,hora"`
}

func (us *UpdateSubject) normalize() {
	if us.NRC != nil {
		*us.NRC = core.CleanString(*us.NRC)
	}
	// the frontend alias always wins on update
	if us.DisplayName != nil {
		name := core.CleanString(*us.DisplayName)
		us.Name = &name
	}
	if us.StartTime != nil {
		*us.StartTime = NormalizeTime(*us.StartTime)
	}
	if us.EndTime != nil {
		*us.EndTime = NormalizeTime(*us.EndTime)
	}
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	us.normalize()
	return validate.Struct(us)
}

// apply overlays the supplied fields onto orig.
func (us UpdateSubject) apply(orig Subject) Subject {
	if us.NRC != nil {
		orig.NRC = *us.NRC
	}
	if us.Name != nil {
		orig.Name = *us.Name
	}
	if us.TeacherID != nil {
		orig.TeacherID = null.IntFrom(*us.TeacherID)
	}
	if us.Days != nil {
		orig.Days = string(*us.Days)
	}
	if us.StartTime != nil {
		orig.StartTime = *us.StartTime
	}
	if us.EndTime != nil {
		orig.EndTime = *us.EndTime
	}
	return orig
}
