package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escolarapp/escolar/core/account"
)

func TestLogin(t *testing.T) {
	env := setup(t)
	admin := env.createAdmin(t, "luis@uni.mx")

	t.Run("ok", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"username": "luis@uni.mx", "password": "s3cr3t"})
		req, rec := newRequest(http.MethodPost, "/login/", body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got struct {
			Token  string   `json:"token"`
			UserID int      `json:"user_id"`
			Email  string   `json:"email"`
			Roles  []string `json:"roles"`
		}
		decodeBody(t, rec, &got)
		assert.NotEmpty(t, got.Token)
		assert.Equal(t, admin.ID, got.UserID)
		assert.Equal(t, "luis@uni.mx", got.Email)
		assert.Equal(t, []string{account.RoleAdmin}, got.Roles)

		// last login recorded
		usr, err := env.accounts.GetUserByID(context.Background(), admin.ID)
		require.NoError(t, err)
		assert.True(t, usr.LastLogin.Valid)

		t.Run("token opens protected endpoints", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/materias-all/", got.Token)
			env.app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	})

	t.Run("username is case-insensitive", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"username": "LUIS@UNI.MX", "password": "s3cr3t"})
		req, rec := newRequest(http.MethodPost, "/login/", body)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("wrong password", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"error": "credenciales inválidas"}`)}
		body := marchallObj(t, map[string]string{"username": "luis@uni.mx", "password": "nope"})
		req, rec := newRequest(http.MethodPost, "/login/", body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("unknown user", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"error": "credenciales inválidas"}`)}
		body := marchallObj(t, map[string]string{"username": "nadie@uni.mx", "password": "s3cr3t"})
		req, rec := newRequest(http.MethodPost, "/login/", body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("missing credentials", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"username": ["Este campo es obligatorio."], "password": ["Este campo es obligatorio."]}`),
		}
		req, rec := newRequest(http.MethodPost, "/login/", []byte(`{}`))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("deactivated account", func(t *testing.T) {
		teacher := env.createTeacher(t, "ana@uni.mx")
		require.NoError(t, env.acctSvc.DeactivateTeacher(context.Background(), teacher.ID))

		tt := httpTest{wantCode: http.StatusForbidden, wantData: []byte(`{"error": "cuenta desactivada"}`)}
		body := marchallObj(t, map[string]string{"username": "ana@uni.mx", "password": "s3cr3t"})
		req, rec := newRequest(http.MethodPost, "/login/", body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestLogout(t *testing.T) {
	env := setup(t)
	admin := env.createAdmin(t, "luis@uni.mx")

	t.Run("requires a token", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodPost, "/logout/")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("acknowledges", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: []byte(`{"message": "Sesión cerrada correctamente"}`)}
		req, rec := newAuthRequest(http.MethodPost, "/logout/", getToken(t, admin))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
