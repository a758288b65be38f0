package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escolarapp/escolar/core/account"
)

func adminPayload(email string) map[string]interface{} {
	return map[string]interface{}{
		"rol":         account.RoleAdmin,
		"first_name":  "Luis",
		"last_name":   "Pérez",
		"email":       email,
		"password":    "s3cr3t",
		"clave_admin": "ADM-1",
		"telefono":    "5512345678",
		"rfc":         "pelu800101abc",
		"edad":        "42", // the frontend sends ages as strings too
		"ocupacion":   "Director",
	}
}

func TestAdminCreateIsOpen(t *testing.T) {
	env := setup(t)

	// no token on POST
	req, rec := newRequest(http.MethodPost, "/admin/", marchallObj(t, adminPayload("luis@uni.mx")))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Message string `json:"message"`
		ID      int    `json:"id"`
	}
	decodeBody(t, rec, &created)
	assert.Equal(t, "Administrador creado exitosamente", created.Message)
	require.NotZero(t, created.ID)

	prof, err := env.accounts.GetAdminByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "PELU800101ABC", prof.RFC, "rfc uppercased")
	assert.Equal(t, 42, prof.Age, "edad coerced to int")
	assert.Equal(t, "luis@uni.mx", prof.User.Username)

	t.Run("reads require auth", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/lista-admins/")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestAdminCreateValidation(t *testing.T) {
	env := setup(t)
	env.createAdmin(t, "luis@uni.mx")

	tests := []httpTest{
		{
			name: "missing required field",
			body: marchallObj(t, map[string]interface{}{"rol": "admin", "email": "x@y.mx"}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"first_name": ["Este campo es obligatorio."],
				"last_name": ["Este campo es obligatorio."],
				"password": ["Este campo es obligatorio."],
				"clave_admin": ["Este campo es obligatorio."],
				"telefono": ["Este campo es obligatorio."],
				"rfc": ["Este campo es obligatorio."],
				"edad": ["Este campo es obligatorio."],
				"ocupacion": ["Este campo es obligatorio."]
			}`),
		},
		{
			name: "email without @",
			body: func() []byte {
				p := adminPayload("not-an-email")
				return marchallObj(t, p)
			}(),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email": ["El correo no es válido."]}`),
		},
		{
			name:     "duplicate email",
			body:     marchallObj(t, adminPayload("luis@uni.mx")),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email": ["El email luis@uni.mx ya está registrado."]}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/admin/", tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("no partial account on failure", func(t *testing.T) {
		taken, err := env.accounts.EmailTaken(context.Background(), "x@y.mx")
		require.NoError(t, err)
		assert.False(t, taken)
	})
}

func TestAdminLifecycle(t *testing.T) {
	env := setup(t)
	admin := env.createAdmin(t, "luis@uni.mx")
	token := getToken(t, admin)

	t.Run("retrieve by query id", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/admin/?id=1", token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got map[string]interface{}
		decodeBody(t, rec, &got)
		assert.Equal(t, "ADM", got["clave_admin"])
	})

	t.Run("list active admins", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/lista-admins/", token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []map[string]interface{}
		decodeBody(t, rec, &got)
		require.Len(t, got, 1)
	})

	t.Run("update by body id", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"id": 1, "first_name": "Luis Alberto", "last_name": "Pérez",
			"clave_admin": "ADM-2", "telefono": "55", "rfc": "XAXX010101000",
			"edad": 43, "ocupacion": "Rector",
		})
		req, rec := newAuthRequest(http.MethodPut, "/admin/", token, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got struct {
			Message string               `json:"message"`
			Admin   account.AdminProfile `json:"admin"`
		}
		decodeBody(t, rec, &got)
		assert.Equal(t, "Administrador actualizado correctamente", got.Message)
		assert.Equal(t, "ADM-2", got.Admin.AdminKey)
		assert.Equal(t, "Luis Alberto", got.Admin.User.FirstName)
	})

	t.Run("physical delete frees the email", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: []byte(`{"details": "Administrador eliminado"}`)}
		req, rec := newAuthRequest(http.MethodDelete, "/admin/?id=1", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)

		taken, err := env.accounts.EmailTaken(context.Background(), "luis@uni.mx")
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("delete missing record", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: []byte(`{"error": "no encontrado"}`)}
		req, rec := newAuthRequest(http.MethodDelete, "/admin/?id=99", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestTeacherLifecycle(t *testing.T) {
	env := setup(t)
	admin := env.createAdmin(t, "admin@uni.mx")
	token := getToken(t, admin)

	// open signup
	req, rec := newRequest(http.MethodPost, "/maestros/", marchallObj(t, map[string]interface{}{
		"rol": account.RoleTeacher, "first_name": "Ana", "last_name": "García",
		"email": "ana@uni.mx", "password": "pwd", "id_trabajador": "T-77",
		"telefono": "55", "rfc": "gaaa900101xxx", "cubiculo": "C-4", "area_investigacion": "IA",
	}))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Message string `json:"message"`
		ID      int    `json:"id"`
	}
	decodeBody(t, rec, &created)
	assert.Equal(t, "Maestro creado exitosamente", created.Message)

	prof, err := env.accounts.GetTeacherByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "[]", prof.SubjectsJSON, "materias_json defaults to an empty list")

	t.Run("listing decodes materias_json", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/lista-maestros/", token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []map[string]interface{}
		decodeBody(t, rec, &got)
		require.Len(t, got, 1)
		assert.Equal(t, []interface{}{}, got[0]["materias_json"])
	})

	t.Run("deactivation hides from listings but keeps the row", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: []byte(`{"details": "Maestro eliminado"}`)}
		req, rec := newAuthRequest(http.MethodDelete, "/maestros/?id=1", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)

		req, rec = newAuthRequest(http.MethodGet, "/lista-maestros/", token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var got []map[string]interface{}
		decodeBody(t, rec, &got)
		assert.Empty(t, got)

		prof, err := env.accounts.GetTeacherByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.False(t, prof.User.IsActive)
	})
}

func TestStudentLifecycle(t *testing.T) {
	env := setup(t)
	admin := env.createAdmin(t, "admin@uni.mx")
	token := getToken(t, admin)

	req, rec := newRequest(http.MethodPost, "/alumnos/", marchallObj(t, map[string]interface{}{
		"rol": account.RoleStudent, "first_name": "Eva", "last_name": "Ruiz",
		"email": "eva@uni.mx", "password": "pwd", "matricula": "A0001",
		"curp": "ruev000101mdfxxx01", "rfc": "ruev000101xxx", "edad": 20,
		"telefono": "55", "ocupacion": "Estudiante",
	}))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	prof, err := env.accounts.GetStudentByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "RUEV000101MDFXXX01", prof.CURP, "curp uppercased")

	t.Run("update overwrites the profile", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"id": 1, "first_name": "Eva María", "last_name": "Ruiz",
			"matricula": "A0002", "curp": "RUEV000101MDFXXX01", "rfc": "RUEV000101XXX",
			"edad": 21, "telefono": "55", "ocupacion": "Estudiante",
		})
		req, rec := newAuthRequest(http.MethodPut, "/alumnos/", token, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		prof, err := env.accounts.GetStudentByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "A0002", prof.Enrollment)
		assert.Equal(t, 21, prof.Age)
		assert.Equal(t, "Eva María", prof.User.FirstName)
	})

	t.Run("deactivation", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: []byte(`{"details": "Alumno eliminado"}`)}
		req, rec := newAuthRequest(http.MethodDelete, "/alumnos/?id=1", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
