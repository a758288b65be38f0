package account

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/escolarapp/escolar/core"
)

// Role group names. Groups are created lazily on first use and never deleted.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "maestro"
	RoleStudent = "alumno"
)

// User is the authentication-bearing identity shared by all role profiles.
// Email doubles as the username.
type User struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	Roles        []string  `db:"-" json:"roles,omitempty"` // group names, loaded on demand
	CreatedAt    time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"` // UTC
	LastLogin    null.Time `db:"last_login" json:"last_login"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) FullName() string {
	return core.CleanString(u.FirstName + " " + u.LastName)
}

func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role == name {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool   { return u.HasRole(RoleAdmin) }
func (u *User) IsTeacher() bool { return u.HasRole(RoleTeacher) }
func (u *User) IsStudent() bool { return u.HasRole(RoleStudent) }

// Group is a named role bucket; many-to-many with User.
type Group struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// AdminProfile is the administrator extension of a User.
type AdminProfile struct {
	ID         int    `db:"id" json:"id"`
	UserID     int    `db:"user_id" json:"user_id"`
	AdminKey   string `db:"clave_admin" json:"clave_admin"`
	Phone      string `db:"telefono" json:"telefono"`
	RFC        string `db:"rfc" json:"rfc"`
	Age        int    `db:"edad" json:"edad"`
	Occupation string `db:"ocupacion" json:"ocupacion"`
	User       User   `db:"user" json:"user"`
}

// TeacherProfile is the teacher extension of a User. SubjectsJSON holds a
// free-form JSON list of subjects taught, kept as text.
type TeacherProfile struct {
	ID           int    `db:"id" json:"id"`
	UserID       int    `db:"user_id" json:"user_id"`
	StaffID      string `db:"id_trabajador" json:"id_trabajador"`
	Phone        string `db:"telefono" json:"telefono"`
	RFC          string `db:"rfc" json:"rfc"`
	Cubicle      string `db:"cubiculo" json:"cubiculo"`
	ResearchArea string `db:"area_investigacion" json:"area_investigacion"`
	SubjectsJSON string `db:"materias_json" json:"materias_json"`
	User         User   `db:"user" json:"user"`
}

// StudentProfile is the student extension of a User.
type StudentProfile struct {
	ID         int    `db:"id" json:"id"`
	UserID     int    `db:"user_id" json:"user_id"`
	Enrollment string `db:"matricula" json:"matricula"`
	CURP       string `db:"curp" json:"curp"`
	RFC        string `db:"rfc" json:"rfc"`
	Age        int    `db:"edad" json:"edad"`
	Phone      string `db:"telefono" json:"telefono"`
	Occupation string `db:"ocupacion" json:"ocupacion"`
	User       User   `db:"user" json:"user"`
}

// FlexInt coerces a JSON number or numeric string to an int; the frontend
// sends ages both ways.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*i = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*i = FlexInt(n)
	return nil
}

// NewAdmin contains the fields required to provision an administrator account.
// All fields must be present and non-empty.
type NewAdmin struct {
	Role       string  `json:"rol" validate:"required"`
	FirstName  string  `json:"first_name" validate:"required"`
	LastName   string  `json:"last_name" validate:"required"`
	Email      string  `json:"email" validate:"required,contains=@"`
	Password   string  `json:"password" validate:"required"`
	AdminKey   string  `json:"clave_admin" validate:"required"`
	Phone      string  `json:"telefono" validate:"required"`
	RFC        string  `json:"rfc" validate:"required"`
	Age        FlexInt `json:"edad" validate:"required"`
	Occupation string  `json:"ocupacion" validate:"required"`
}

func (na *NewAdmin) Validate(validate *validator.Validate) error {
	na.Role = core.CleanString(na.Role, true /* lower */)
	na.FirstName = core.CleanString(na.FirstName)
	na.LastName = core.CleanString(na.LastName)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.RFC = strings.ToUpper(core.CleanString(na.RFC))
	return validate.Struct(na)
}

// NewTeacher contains the fields required to provision a teacher account.
type NewTeacher struct {
	Role         string `json:"rol" validate:"required"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	Email        string `json:"email" validate:"required,contains=@"`
	Password     string `json:"password" validate:"required"`
	StaffID      string `json:"id_trabajador" validate:"required"`
	Phone        string `json:"telefono" validate:"required"`
	RFC          string `json:"rfc" validate:"required"`
	Cubicle      string `json:"cubiculo" validate:"required"`
	ResearchArea string `json:"area_investigacion" validate:"required"`
	SubjectsJSON string `json:"materias_json"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Role = core.CleanString(nt.Role, true /* lower */)
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.RFC = strings.ToUpper(core.CleanString(nt.RFC))
	if nt.SubjectsJSON == "" {
		nt.SubjectsJSON = "[]"
	}
	return validate.Struct(nt)
}

// NewStudent contains the fields required to provision a student account.
type NewStudent struct {
	Role       string  `json:"rol" validate:"required"`
	FirstName  string  `json:"first_name" validate:"required"`
	LastName   string  `json:"last_name" validate:"required"`
	Email      string  `json:"email" validate:"required,contains=@"`
	Password   string  `json:"password" validate:"required"`
	Enrollment string  `json:"matricula" validate:"required"`
	CURP       string  `json:"curp" validate:"required"`
	RFC        string  `json:"rfc" validate:"required"`
	Age        FlexInt `json:"edad" validate:"required"`
	Phone      string  `json:"telefono" validate:"required"`
	Occupation string  `json:"ocupacion" validate:"required"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Role = core.CleanString(ns.Role, true /* lower */)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.CURP = strings.ToUpper(core.CleanString(ns.CURP))
	ns.RFC = strings.ToUpper(core.CleanString(ns.RFC))
	return validate.Struct(ns)
}

// UpdateAdmin overwrites an administrator profile and the linked account's
// name fields. ID may double as the body-provided record identifier.
type UpdateAdmin struct {
	ID         *int    `json:"id"`
	FirstName  string  `json:"first_name" validate:"required"`
	LastName   string  `json:"last_name" validate:"required"`
	AdminKey   string  `json:"clave_admin" validate:"required"`
	Phone      string  `json:"telefono" validate:"required"`
	RFC        string  `json:"rfc" validate:"required"`
	Age        FlexInt `json:"edad" validate:"required"`
	Occupation string  `json:"ocupacion" validate:"required"`
}

func (ua *UpdateAdmin) Validate(validate *validator.Validate) error {
	ua.FirstName = core.CleanString(ua.FirstName)
	ua.LastName = core.CleanString(ua.LastName)
	ua.RFC = strings.ToUpper(core.CleanString(ua.RFC))
	return validate.Struct(ua)
}

// UpdateTeacher overwrites a teacher profile and the linked account's name fields.
type UpdateTeacher struct {
	ID           *int   `json:"id"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	StaffID      string `json:"id_trabajador" validate:"required"`
	Phone        string `json:"telefono" validate:"required"`
	RFC          string `json:"rfc" validate:"required"`
	Cubicle      string `json:"cubiculo" validate:"required"`
	ResearchArea string `json:"area_investigacion" validate:"required"`
	SubjectsJSON string `json:"materias_json"`
}

func (ut *UpdateTeacher) Validate(validate *validator.Validate) error {
	ut.FirstName = core.CleanString(ut.FirstName)
	ut.LastName = core.CleanString(ut.LastName)
	ut.RFC = strings.ToUpper(core.CleanString(ut.RFC))
	return validate.Struct(ut)
}

// UpdateStudent overwrites a student profile and the linked account's name fields.
type UpdateStudent struct {
	ID         *int    `json:"id"`
	FirstName  string  `json:"first_name" validate:"required"`
	LastName   string  `json:"last_name" validate:"required"`
	Enrollment string  `json:"matricula" validate:"required"`
	CURP       string  `json:"curp" validate:"required"`
	RFC        string  `json:"rfc" validate:"required"`
	Age        FlexInt `json:"edad" validate:"required"`
	Phone      string  `json:"telefono" validate:"required"`
	Occupation string  `json:"ocupacion" validate:"required"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.FirstName = core.CleanString(us.FirstName)
	us.LastName = core.CleanString(us.LastName)
	us.CURP = strings.ToUpper(core.CleanString(us.CURP))
	us.RFC = strings.ToUpper(core.CleanString(us.RFC))
	return validate.Struct(us)
}
