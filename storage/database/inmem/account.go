package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/account"
)

// AccountRepository implements every account repository interface on shared
// in-memory maps. Uniqueness checks run under the table lock, so the
// concurrent-signup behavior matches the database's unique constraints.
type AccountRepository struct {
	mu         sync.Mutex
	users      map[int]account.User
	groups     map[string]account.Group
	userGroups map[int]map[int]bool // userID -> groupIDs
	admins     map[int]account.AdminProfile
	teachers   map[int]account.TeacherProfile
	students   map[int]account.StudentProfile

	userSeq, groupSeq, adminSeq, teacherSeq, studentSeq int
}

var (
	_ account.UserRepository    = (*AccountRepository)(nil)
	_ account.AdminRepository   = (*AccountRepository)(nil)
	_ account.TeacherRepository = (*AccountRepository)(nil)
	_ account.StudentRepository = (*AccountRepository)(nil)
)

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		users:      make(map[int]account.User),
		groups:     make(map[string]account.Group),
		userGroups: make(map[int]map[int]bool),
		admins:     make(map[int]account.AdminProfile),
		teachers:   make(map[int]account.TeacherProfile),
		students:   make(map[int]account.StudentProfile),
	}
}

func (repo *AccountRepository) EmailTaken(ctx context.Context, email string, exec ...core.DBExecutor) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.emailTaken(email), nil
}

func (repo *AccountRepository) emailTaken(email string) bool {
	for _, usr := range repo.users {
		if usr.Email == email {
			return true
		}
	}
	return false
}

func (repo *AccountRepository) CreateUser(ctx context.Context, usr account.User, exec ...core.DBExecutor) (account.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.emailTaken(usr.Email) {
		return account.User{}, account.ErrEmailExists
	}
	repo.userSeq++
	usr.ID = repo.userSeq
	repo.users[usr.ID] = usr
	return usr, nil
}

func (repo *AccountRepository) GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (account.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	usr, ok := repo.users[id]
	if !ok {
		return account.User{}, account.ErrNotFound
	}
	usr.Roles = repo.rolesOf(id)
	return usr, nil
}

func (repo *AccountRepository) GetUserByUsernameOrEmail(ctx context.Context, username string, exec ...core.DBExecutor) (account.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, usr := range repo.users {
		if usr.Username == username || usr.Email == username {
			usr.Roles = repo.rolesOf(usr.ID)
			return usr, nil
		}
	}
	return account.User{}, account.ErrNotFound
}

func (repo *AccountRepository) rolesOf(userID int) []string {
	var roles []string
	for _, grp := range repo.groups {
		if repo.userGroups[userID][grp.ID] {
			roles = append(roles, grp.Name)
		}
	}
	sort.Strings(roles)
	return roles
}

func (repo *AccountRepository) UpdateUserNames(ctx context.Context, id int, firstName, lastName string, exec ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	usr, ok := repo.users[id]
	if !ok {
		return account.ErrNotFound
	}
	usr.FirstName = firstName
	usr.LastName = lastName
	usr.UpdatedAt = time.Now().UTC()
	repo.users[id] = usr
	return nil
}

func (repo *AccountRepository) SetUserActive(ctx context.Context, id int, active bool, exec ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	usr, ok := repo.users[id]
	if !ok {
		return account.ErrNotFound
	}
	usr.IsActive = active
	usr.UpdatedAt = time.Now().UTC()
	repo.users[id] = usr
	return nil
}

func (repo *AccountRepository) SetLastLogin(ctx context.Context, id int, t time.Time, exec ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	usr, ok := repo.users[id]
	if !ok {
		return account.ErrNotFound
	}
	usr.LastLogin.SetValid(t)
	repo.users[id] = usr
	return nil
}

func (repo *AccountRepository) DeleteUserByID(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	delete(repo.users, id)
	delete(repo.userGroups, id)
	// profiles cascade
	for pid, prof := range repo.admins {
		if prof.UserID == id {
			delete(repo.admins, pid)
		}
	}
	for pid, prof := range repo.teachers {
		if prof.UserID == id {
			delete(repo.teachers, pid)
		}
	}
	for pid, prof := range repo.students {
		if prof.UserID == id {
			delete(repo.students, pid)
		}
	}
	return nil
}

func (repo *AccountRepository) GetOrCreateGroup(ctx context.Context, name string, exec ...core.DBExecutor) (account.Group, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if grp, ok := repo.groups[name]; ok {
		return grp, nil
	}
	repo.groupSeq++
	grp := account.Group{ID: repo.groupSeq, Name: name}
	repo.groups[name] = grp
	return grp, nil
}

func (repo *AccountRepository) AddUserToGroup(ctx context.Context, userID, groupID int, exec ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.userGroups[userID] == nil {
		repo.userGroups[userID] = make(map[int]bool)
	}
	repo.userGroups[userID][groupID] = true
	return nil
}

// hydrate attaches the linked User (with roles) to a stored profile copy.
func (repo *AccountRepository) hydrate(userID int) account.User {
	usr := repo.users[userID]
	usr.Roles = repo.rolesOf(userID)
	return usr
}

func (repo *AccountRepository) CreateAdminProfile(ctx context.Context, prof account.AdminProfile, exec ...core.DBExecutor) (account.AdminProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.adminSeq++
	prof.ID = repo.adminSeq
	prof.User = account.User{}
	repo.admins[prof.ID] = prof
	prof.User = repo.hydrate(prof.UserID)
	return prof, nil
}

func (repo *AccountRepository) GetAdminByID(ctx context.Context, id int, exec ...core.DBExecutor) (account.AdminProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	prof, ok := repo.admins[id]
	if !ok {
		return account.AdminProfile{}, account.ErrNotFound
	}
	prof.User = repo.hydrate(prof.UserID)
	return prof, nil
}

func (repo *AccountRepository) QueryAdmins(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]account.AdminProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	profs := make([]account.AdminProfile, 0, len(repo.admins))
	for _, prof := range repo.admins {
		usr := repo.hydrate(prof.UserID)
		if activeOnly && !usr.IsActive {
			continue
		}
		prof.User = usr
		profs = append(profs, prof)
	}
	sort.Slice(profs, func(i, j int) bool { return profs[i].ID < profs[j].ID })
	return profs, nil
}

func (repo *AccountRepository) UpdateAdminProfile(ctx context.Context, prof account.AdminProfile, exec ...core.DBExecutor) (account.AdminProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.admins[prof.ID]; !ok {
		return account.AdminProfile{}, account.ErrNotFound
	}
	stored := prof
	stored.User = account.User{}
	repo.admins[prof.ID] = stored
	prof.User = repo.hydrate(prof.UserID)
	return prof, nil
}

func (repo *AccountRepository) CountActiveAdmins(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	profs, err := repo.QueryAdmins(ctx, true)
	return len(profs), err
}

func (repo *AccountRepository) CreateTeacherProfile(ctx context.Context, prof account.TeacherProfile, exec ...core.DBExecutor) (account.TeacherProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.teacherSeq++
	prof.ID = repo.teacherSeq
	prof.User = account.User{}
	repo.teachers[prof.ID] = prof
	prof.User = repo.hydrate(prof.UserID)
	return prof, nil
}

func (repo *AccountRepository) GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (account.TeacherProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	prof, ok := repo.teachers[id]
	if !ok {
		return account.TeacherProfile{}, account.ErrNotFound
	}
	prof.User = repo.hydrate(prof.UserID)
	return prof, nil
}

func (repo *AccountRepository) QueryTeachers(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]account.TeacherProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	profs := make([]account.TeacherProfile, 0, len(repo.teachers))
	for _, prof := range repo.teachers {
		usr := repo.hydrate(prof.UserID)
		if activeOnly && !usr.IsActive {
			continue
		}
		prof.User = usr
		profs = append(profs, prof)
	}
	sort.Slice(profs, func(i, j int) bool { return profs[i].ID < profs[j].ID })
	return profs, nil
}

func (repo *AccountRepository) UpdateTeacherProfile(ctx context.Context, prof account.TeacherProfile, exec ...core.DBExecutor) (account.TeacherProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.teachers[prof.ID]; !ok {
		return account.TeacherProfile{}, account.ErrNotFound
	}
	stored := prof
	stored.User = account.User{}
	repo.teachers[prof.ID] = stored
	prof.User = repo.hydrate(prof.UserID)
	return prof, nil
}

func (repo *AccountRepository) TeacherExists(ctx context.Context, id int, exec ...core.DBExecutor) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	_, ok := repo.teachers[id]
	return ok, nil
}

func (repo *AccountRepository) CountActiveTeachers(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	profs, err := repo.QueryTeachers(ctx, true)
	return len(profs), err
}

func (repo *AccountRepository) CreateStudentProfile(ctx context.Context, prof account.StudentProfile, exec ...core.DBExecutor) (account.StudentProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.studentSeq++
	prof.ID = repo.studentSeq
	prof.User = account.User{}
	repo.students[prof.ID] = prof
	prof.User = repo.hydrate(prof.UserID)
	return prof, nil
}

func (repo *AccountRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (account.StudentProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	prof, ok := repo.students[id]
	if !ok {
		return account.StudentProfile{}, account.ErrNotFound
	}
	prof.User = repo.hydrate(prof.UserID)
	return prof, nil
}

func (repo *AccountRepository) QueryStudents(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]account.StudentProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	profs := make([]account.StudentProfile, 0, len(repo.students))
	for _, prof := range repo.students {
		usr := repo.hydrate(prof.UserID)
		if activeOnly && !usr.IsActive {
			continue
		}
		prof.User = usr
		profs = append(profs, prof)
	}
	sort.Slice(profs, func(i, j int) bool { return profs[i].ID < profs[j].ID })
	return profs, nil
}

func (repo *AccountRepository) UpdateStudentProfile(ctx context.Context, prof account.StudentProfile, exec ...core.DBExecutor) (account.StudentProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.students[prof.ID]; !ok {
		return account.StudentProfile{}, account.ErrNotFound
	}
	stored := prof
	stored.User = account.User{}
	repo.students[prof.ID] = stored
	prof.User = repo.hydrate(prof.UserID)
	return prof, nil
}

func (repo *AccountRepository) CountActiveStudents(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	profs, err := repo.QueryStudents(ctx, true)
	return len(profs), err
}
