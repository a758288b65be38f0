package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/escolarapp/escolar/apps/api/echo"
	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/account"
	"github.com/escolarapp/escolar/core/report"
	"github.com/escolarapp/escolar/core/subject"
	"github.com/escolarapp/escolar/services/email"
	"github.com/escolarapp/escolar/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testEnv struct {
	app      Server
	acctSvc  *account.Service
	subjSvc  *subject.Service
	accounts *inmem.AccountRepository
	subjects *inmem.SubjectRepository
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func setup(t *testing.T) *testEnv {
	t.Helper()

	accounts := inmem.NewAccountRepository()
	subjects := inmem.NewSubjectRepository()
	db := inmem.NewDB()

	mailSvc := emailsvc.NewConsoleServiceMock()
	acctSvc := account.NewService(db, accounts, accounts, accounts, accounts, mailSvc)
	subjSvc := subject.NewService(db, subjects, accounts)
	reportSvc := report.NewService(accounts, accounts, accounts, nopLogger{})

	validate, translator := core.NewValidator()
	subject.RegisterValidators(validate, translator)

	app := NewServer(&Options{
		DisableReqLogs: true,
		SubjectSvc:     subjSvc,
		AccountSvc:     acctSvc,
		ReportSvc:      reportSvc,
		Logger:         nopLogger{},
		Validate:       validate,
		Translator:     translator,
	})
	return &testEnv{app: app, acctSvc: acctSvc, subjSvc: subjSvc, accounts: accounts, subjects: subjects}
}

// createAdmin provisions an admin account directly through the service and
// returns its user, ready for getToken.
func (env *testEnv) createAdmin(t *testing.T, email string) account.User {
	t.Helper()
	prof, err := env.acctSvc.CreateAdmin(context.Background(), account.NewAdmin{
		Role: account.RoleAdmin, FirstName: "Admin", LastName: "Uno",
		Email: email, Password: "s3cr3t", AdminKey: "ADM", Phone: "55",
		RFC: "XAXX010101000", Age: 40, Occupation: "Admin",
	})
	require.NoError(t, err)
	return prof.User
}

func (env *testEnv) createTeacher(t *testing.T, email string) account.TeacherProfile {
	t.Helper()
	prof, err := env.acctSvc.CreateTeacher(context.Background(), account.NewTeacher{
		Role: account.RoleTeacher, FirstName: "Profe", LastName: "Uno",
		Email: email, Password: "s3cr3t", StaffID: "T-1", Phone: "55",
		RFC: "XAXX010101000", Cubicle: "C-1", ResearchArea: "IA", SubjectsJSON: "[]",
	})
	require.NoError(t, err)
	return prof
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr account.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}
