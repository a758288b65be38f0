package account

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/escolarapp/escolar/core"
)

var (
	// errors
	ErrNotFound    = errors.New("registro no encontrado")
	ErrEmailExists = errors.New("el email ya está registrado")
)

type (
	// UserRepository persists PersonAccounts and their role groups.
	UserRepository interface {
		EmailTaken(ctx context.Context, email string, exec ...core.DBExecutor) (bool, error)
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (User, error)
		GetUserByUsernameOrEmail(ctx context.Context, username string, exec ...core.DBExecutor) (User, error)
		UpdateUserNames(ctx context.Context, id int, firstName, lastName string, exec ...core.DBExecutor) error
		SetUserActive(ctx context.Context, id int, active bool, exec ...core.DBExecutor) error
		SetLastLogin(ctx context.Context, id int, t time.Time, exec ...core.DBExecutor) error
		DeleteUserByID(ctx context.Context, id int, exec ...core.DBExecutor) error
		GetOrCreateGroup(ctx context.Context, name string, exec ...core.DBExecutor) (Group, error)
		AddUserToGroup(ctx context.Context, userID, groupID int, exec ...core.DBExecutor) error
	}

	AdminRepository interface {
		CreateAdminProfile(ctx context.Context, prof AdminProfile, exec ...core.DBExecutor) (AdminProfile, error)
		GetAdminByID(ctx context.Context, id int, exec ...core.DBExecutor) (AdminProfile, error)
		// QueryAdmins returns profiles ordered by identifier ascending.
		QueryAdmins(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]AdminProfile, error)
		UpdateAdminProfile(ctx context.Context, prof AdminProfile, exec ...core.DBExecutor) (AdminProfile, error)
		CountActiveAdmins(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	TeacherRepository interface {
		CreateTeacherProfile(ctx context.Context, prof TeacherProfile, exec ...core.DBExecutor) (TeacherProfile, error)
		GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (TeacherProfile, error)
		QueryTeachers(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]TeacherProfile, error)
		UpdateTeacherProfile(ctx context.Context, prof TeacherProfile, exec ...core.DBExecutor) (TeacherProfile, error)
		TeacherExists(ctx context.Context, id int, exec ...core.DBExecutor) (bool, error)
		CountActiveTeachers(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	StudentRepository interface {
		CreateStudentProfile(ctx context.Context, prof StudentProfile, exec ...core.DBExecutor) (StudentProfile, error)
		GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (StudentProfile, error)
		QueryStudents(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]StudentProfile, error)
		UpdateStudentProfile(ctx context.Context, prof StudentProfile, exec ...core.DBExecutor) (StudentProfile, error)
		CountActiveStudents(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		db       core.DB
		users    UserRepository
		admins   AdminRepository
		teachers TeacherRepository
		students StudentRepository
		mail     core.EmailService
	}
)

func NewService(
	db core.DB,
	users UserRepository,
	admins AdminRepository,
	teachers TeacherRepository,
	students StudentRepository,
	mail core.EmailService,
) *Service {
	return &Service{
		db:       db,
		users:    users,
		admins:   admins,
		teachers: teachers,
		students: students,
		mail:     mail,
	}
}

// createAccount runs the account steps shared by all role provisioning paths:
// duplicate-email check, PersonAccount creation (username = email, hashed
// credential, active) and role group association. Must run inside the
// provisioning transaction.
func (svc *Service) createAccount(
	ctx context.Context,
	tx core.DBTransactor,
	role, firstName, lastName, email, password string,
) (User, error) {
	taken, err := svc.users.EmailTaken(ctx, email, tx)
	if err != nil {
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}
	if taken {
		return User{}, emailExistsError(email)
	}

	now := time.Now().UTC()
	usr := User{
		Username:  email,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err = svc.users.CreateUser(ctx, usr, tx)
	if errors.Cause(err) == ErrEmailExists {
		// a concurrent signup beat the pre-check; the unique constraint wins
		return User{}, emailExistsError(email)
	}
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}

	grp, err := svc.users.GetOrCreateGroup(ctx, role, tx)
	if err != nil {
		return User{}, errors.Wrap(err, "getting or creating group")
	}
	if err := svc.users.AddUserToGroup(ctx, usr.ID, grp.ID, tx); err != nil {
		return User{}, errors.Wrap(err, "associating user to group")
	}
	usr.Roles = []string{grp.Name}
	return usr, nil
}

func (svc *Service) CreateAdmin(ctx context.Context, na NewAdmin) (AdminProfile, error) {
	var prof AdminProfile
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		usr, err := svc.createAccount(ctx, tx, na.Role, na.FirstName, na.LastName, na.Email, na.Password)
		if err != nil {
			return err
		}
		prof, err = svc.admins.CreateAdminProfile(ctx, AdminProfile{
			UserID:     usr.ID,
			AdminKey:   na.AdminKey,
			Phone:      na.Phone,
			RFC:        na.RFC,
			Age:        int(na.Age),
			Occupation: na.Occupation,
		}, tx)
		if err != nil {
			return errors.Wrap(err, "creating admin profile")
		}
		prof.User = usr
		return nil
	})
	if err != nil {
		return AdminProfile{}, err
	}
	svc.sendWelcomeEmail(prof.User)
	return prof, nil
}

func (svc *Service) CreateTeacher(ctx context.Context, nt NewTeacher) (TeacherProfile, error) {
	var prof TeacherProfile
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		usr, err := svc.createAccount(ctx, tx, nt.Role, nt.FirstName, nt.LastName, nt.Email, nt.Password)
		if err != nil {
			return err
		}
		prof, err = svc.teachers.CreateTeacherProfile(ctx, TeacherProfile{
			UserID:       usr.ID,
			StaffID:      nt.StaffID,
			Phone:        nt.Phone,
			RFC:          nt.RFC,
			Cubicle:      nt.Cubicle,
			ResearchArea: nt.ResearchArea,
			SubjectsJSON: nt.SubjectsJSON,
		}, tx)
		if err != nil {
			return errors.Wrap(err, "creating teacher profile")
		}
		prof.User = usr
		return nil
	})
	if err != nil {
		return TeacherProfile{}, err
	}
	svc.sendWelcomeEmail(prof.User)
	return prof, nil
}

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (StudentProfile, error) {
	var prof StudentProfile
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		usr, err := svc.createAccount(ctx, tx, ns.Role, ns.FirstName, ns.LastName, ns.Email, ns.Password)
		if err != nil {
			return err
		}
		prof, err = svc.students.CreateStudentProfile(ctx, StudentProfile{
			UserID:     usr.ID,
			Enrollment: ns.Enrollment,
			CURP:       ns.CURP,
			RFC:        ns.RFC,
			Age:        int(ns.Age),
			Phone:      ns.Phone,
			Occupation: ns.Occupation,
		}, tx)
		if err != nil {
			return errors.Wrap(err, "creating student profile")
		}
		prof.User = usr
		return nil
	})
	if err != nil {
		return StudentProfile{}, err
	}
	svc.sendWelcomeEmail(prof.User)
	return prof, nil
}

func (svc *Service) GetAdmin(ctx context.Context, id int) (AdminProfile, error) {
	return svc.admins.GetAdminByID(ctx, id)
}

func (svc *Service) QueryAdmins(ctx context.Context) ([]AdminProfile, error) {
	return svc.admins.QueryAdmins(ctx, true /* activeOnly */)
}

func (svc *Service) UpdateAdmin(ctx context.Context, id int, ua UpdateAdmin) (AdminProfile, error) {
	var prof AdminProfile
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		orig, err := svc.admins.GetAdminByID(ctx, id, tx)
		if err != nil {
			return err
		}
		orig.AdminKey = ua.AdminKey
		orig.Phone = ua.Phone
		orig.RFC = ua.RFC
		orig.Age = int(ua.Age)
		orig.Occupation = ua.Occupation
		prof, err = svc.admins.UpdateAdminProfile(ctx, orig, tx)
		if err != nil {
			return errors.Wrap(err, "updating admin profile")
		}
		if err := svc.users.UpdateUserNames(ctx, orig.UserID, ua.FirstName, ua.LastName, tx); err != nil {
			return errors.Wrap(err, "updating account names")
		}
		prof.User.FirstName = ua.FirstName
		prof.User.LastName = ua.LastName
		return nil
	})
	if err != nil {
		return AdminProfile{}, err
	}
	return prof, nil
}

// DeleteAdmin physically deletes the underlying PersonAccount; the profile
// cascades from it. The delete is attempted once, not retried.
func (svc *Service) DeleteAdmin(ctx context.Context, id int) error {
	return core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		prof, err := svc.admins.GetAdminByID(ctx, id, tx)
		if err != nil {
			return err
		}
		return svc.users.DeleteUserByID(ctx, prof.UserID, tx)
	})
}

func (svc *Service) GetTeacher(ctx context.Context, id int) (TeacherProfile, error) {
	return svc.teachers.GetTeacherByID(ctx, id)
}

func (svc *Service) QueryTeachers(ctx context.Context) ([]TeacherProfile, error) {
	return svc.teachers.QueryTeachers(ctx, true /* activeOnly */)
}

func (svc *Service) UpdateTeacher(ctx context.Context, id int, ut UpdateTeacher) (TeacherProfile, error) {
	var prof TeacherProfile
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		orig, err := svc.teachers.GetTeacherByID(ctx, id, tx)
		if err != nil {
			return err
		}
		orig.StaffID = ut.StaffID
		orig.Phone = ut.Phone
		orig.RFC = ut.RFC
		orig.Cubicle = ut.Cubicle
		orig.ResearchArea = ut.ResearchArea
		if ut.SubjectsJSON != "" {
			orig.SubjectsJSON = ut.SubjectsJSON
		}
		prof, err = svc.teachers.UpdateTeacherProfile(ctx, orig, tx)
		if err != nil {
			return errors.Wrap(err, "updating teacher profile")
		}
		if err := svc.users.UpdateUserNames(ctx, orig.UserID, ut.FirstName, ut.LastName, tx); err != nil {
			return errors.Wrap(err, "updating account names")
		}
		prof.User.FirstName = ut.FirstName
		prof.User.LastName = ut.LastName
		return nil
	})
	if err != nil {
		return TeacherProfile{}, err
	}
	return prof, nil
}

// DeactivateTeacher logically deletes the teacher: the account's active flag
// flips, the profile row stays. Subjects referencing the teacher are not
// cascade-deleted.
func (svc *Service) DeactivateTeacher(ctx context.Context, id int) error {
	return core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		prof, err := svc.teachers.GetTeacherByID(ctx, id, tx)
		if err != nil {
			return err
		}
		return svc.users.SetUserActive(ctx, prof.UserID, false, tx)
	})
}

func (svc *Service) GetStudent(ctx context.Context, id int) (StudentProfile, error) {
	return svc.students.GetStudentByID(ctx, id)
}

func (svc *Service) QueryStudents(ctx context.Context) ([]StudentProfile, error) {
	return svc.students.QueryStudents(ctx, true /* activeOnly */)
}

func (svc *Service) UpdateStudent(ctx context.Context, id int, us UpdateStudent) (StudentProfile, error) {
	var prof StudentProfile
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		orig, err := svc.students.GetStudentByID(ctx, id, tx)
		if err != nil {
			return err
		}
		orig.Enrollment = us.Enrollment
		orig.CURP = us.CURP
		orig.RFC = us.RFC
		orig.Age = int(us.Age)
		orig.Phone = us.Phone
		orig.Occupation = us.Occupation
		prof, err = svc.students.UpdateStudentProfile(ctx, orig, tx)
		if err != nil {
			return errors.Wrap(err, "updating student profile")
		}
		if err := svc.users.UpdateUserNames(ctx, orig.UserID, us.FirstName, us.LastName, tx); err != nil {
			return errors.Wrap(err, "updating account names")
		}
		prof.User.FirstName = us.FirstName
		prof.User.LastName = us.LastName
		return nil
	})
	if err != nil {
		return StudentProfile{}, err
	}
	return prof, nil
}

// DeactivateStudent logically deletes the student account.
func (svc *Service) DeactivateStudent(ctx context.Context, id int) error {
	return core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		prof, err := svc.students.GetStudentByID(ctx, id, tx)
		if err != nil {
			return err
		}
		return svc.users.SetUserActive(ctx, prof.UserID, false, tx)
	})
}

func (svc *Service) GetUserByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.users.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	now := time.Now().UTC()
	if err := svc.users.SetLastLogin(ctx, usr.ID, now); err != nil {
		return usr, errors.Wrap(err, "setting last login")
	}
	usr.LastLogin.SetValid(now)
	return usr, nil
}

func (svc *Service) sendWelcomeEmail(usr User) {
	if svc.mail == nil {
		return
	}
	svc.mail.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject: "Bienvenido a " + core.Conf.AppName,
		Body: fmt.Sprintf(
			"Hola %s,\r\n\r\nTu cuenta ha sido creada con el correo %s. "+
				"Ya puedes iniciar sesión en la plataforma.\r\n",
			usr.FullName(), usr.Email,
		),
	})
}

func emailExistsError(email string) error {
	return core.NewValidationError(
		ErrEmailExists,
		core.FieldError{Field: "email", Error: fmt.Sprintf("El email %s ya está registrado.", email)},
	)
}
