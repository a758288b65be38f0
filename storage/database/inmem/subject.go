package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/subject"
)

type SubjectRepository struct {
	mu       sync.Mutex
	subjects map[int]subject.Subject
	seq      int
}

var _ subject.Repository = (*SubjectRepository)(nil)

func NewSubjectRepository() *SubjectRepository {
	return &SubjectRepository{subjects: make(map[int]subject.Subject)}
}

func (repo *SubjectRepository) NRCExists(ctx context.Context, nrc string, excludedIDs []int, exec ...core.DBExecutor) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.nrcExists(nrc, excludedIDs), nil
}

func (repo *SubjectRepository) nrcExists(nrc string, excludedIDs []int) bool {
	for _, sub := range repo.subjects {
		if sub.NRC != nrc {
			continue
		}
		excluded := false
		for _, id := range excludedIDs {
			if sub.ID == id {
				excluded = true
				break
			}
		}
		if !excluded {
			return true
		}
	}
	return false
}

func (repo *SubjectRepository) CreateSubject(ctx context.Context, sub subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	// the check and the insert share the lock, like the DB's unique constraint
	if repo.nrcExists(sub.NRC, nil) {
		return subject.Subject{}, subject.ErrNRCExists
	}
	repo.seq++
	sub.ID = repo.seq
	repo.subjects[sub.ID] = sub
	return sub, nil
}

func (repo *SubjectRepository) QuerySubjects(ctx context.Context, exec ...core.DBExecutor) ([]subject.Subject, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	subs := make([]subject.Subject, 0, len(repo.subjects))
	for _, sub := range repo.subjects {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (repo *SubjectRepository) GetSubjectByID(ctx context.Context, id int, exec ...core.DBExecutor) (subject.Subject, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	sub, ok := repo.subjects[id]
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	return sub, nil
}

func (repo *SubjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.subjects[sub.ID]; !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	if repo.nrcExists(sub.NRC, []int{sub.ID}) {
		return subject.Subject{}, subject.ErrNRCExists
	}
	repo.subjects[sub.ID] = sub
	return sub, nil
}

func (repo *SubjectRepository) DeleteSubjectByID(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	delete(repo.subjects, id)
	return nil
}
