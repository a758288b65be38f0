package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectAPIAuthRequired(t *testing.T) {
	env := setup(t)

	tests := []httpTest{
		{name: "list", method: http.MethodGet, path: "/materias-all/", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "detail", method: http.MethodGet, path: "/materias/1/", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "create", method: http.MethodPost, path: "/materias/", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "verify", method: http.MethodGet, path: "/materias/verificar-nrc/123/", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestSubjectCreate(t *testing.T) {
	env := setup(t)
	admin := env.createAdmin(t, "admin@uni.mx")
	teacher := env.createTeacher(t, "profe@uni.mx")
	token := getToken(t, admin)

	// the frontend payload: alias name key, teacher id, day list, 12h times
	body := marchallObj(t, map[string]interface{}{
		"nrc":         "12345",
		"nombre":      "Cálculo I",
		"profesor_id": teacher.ID,
		"dias":        []string{"Lunes", "Miércoles"},
		"hora_inicio": "2:00 PM",
		"hora_fin":    "4:00 PM",
	})
	req, rec := newAuthRequest(http.MethodPost, "/materias/", token, body)
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID int `json:"materia_created_id"`
	}
	decodeBody(t, rec, &created)
	require.NotZero(t, created.ID)

	t.Run("record normalized", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/materias/1/", token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got map[string]interface{}
		decodeBody(t, rec, &got)
		assert.Equal(t, "Cálculo I", got["nombre_materia"])
		assert.Equal(t, float64(teacher.ID), got["profesor"])
		assert.Equal(t, "Lunes, Miércoles", got["dias"])
		assert.Equal(t, "14:00:00", got["hora_inicio"])
		assert.Equal(t, "16:00:00", got["hora_fin"])
	})

	t.Run("explicit canonical name not clobbered by alias", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"nrc": "77777", "nombre": "Alias", "nombre_materia": "Canónico",
		})
		req, rec := newAuthRequest(http.MethodPost, "/materias/", token, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created struct {
			ID int `json:"materia_created_id"`
		}
		decodeBody(t, rec, &created)
		sub, err := env.subjects.GetSubjectByID(req.Context(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Canónico", sub.Name)
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []httpTest{
			{
				name: "duplicate NRC", method: http.MethodPost, path: "/materias/", token: token,
				body:     marchallObj(t, map[string]interface{}{"nrc": "12345", "nombre": "Otra"}),
				wantCode: http.StatusBadRequest,
				wantData: []byte(`{"nrc": ["El NRC ya existe en la base de datos."]}`),
			},
			{
				name: "unknown teacher", method: http.MethodPost, path: "/materias/", token: token,
				body:     marchallObj(t, map[string]interface{}{"nrc": "88888", "nombre": "Otra", "profesor_id": teacher.ID + 99}),
				wantCode: http.StatusBadRequest,
				wantData: []byte(`{"profesor": ["El profesor seleccionado no existe."]}`),
			},
			{
				name: "unparseable time rejected downstream", method: http.MethodPost, path: "/materias/", token: token,
				body:     marchallObj(t, map[string]interface{}{"nrc": "88888", "nombre": "Otra", "hora_inicio": "25:99"}),
				wantCode: http.StatusBadRequest,
				wantData: []byte(`{"hora_inicio": ["La hora no tiene un formato válido (HH:MM:SS)."]}`),
			},
			{
				name: "missing required fields", method: http.MethodPost, path: "/materias/", token: token,
				body:     marchallObj(t, map[string]interface{}{}),
				wantCode: http.StatusBadRequest,
				wantData: []byte(`{"nrc": ["Este campo es obligatorio."], "nombre_materia": ["Este campo es obligatorio."]}`),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
				env.app.ServeHTTP(rec, req)
				checkCodeAndData(t, tt, rec)
			})
		}
	})
}

func TestSubjectRetrieveAndList(t *testing.T) {
	env := setup(t)
	admin := env.createAdmin(t, "admin@uni.mx")
	token := getToken(t, admin)

	for _, nrc := range []string{"11111", "22222"} {
		body := marchallObj(t, map[string]interface{}{"nrc": nrc, "nombre": "Materia " + nrc})
		req, rec := newAuthRequest(http.MethodPost, "/materias/", token, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	t.Run("list ordered by id", func(t *testing.T) {
		for _, path := range []string{"/materias-all/", "/materias/"} {
			req, rec := newAuthRequest(http.MethodGet, path, token)
			env.app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			var got []map[string]interface{}
			decodeBody(t, rec, &got)
			require.Len(t, got, 2)
			assert.Equal(t, "11111", got[0]["nrc"])
			assert.Equal(t, "22222", got[1]["nrc"])
		}
	})

	t.Run("id via query param", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/materias/?id=2", token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got map[string]interface{}
		decodeBody(t, rec, &got)
		assert.Equal(t, "22222", got["nrc"])
	})

	t.Run("id via body", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/materias/", token, []byte(`{"id": 2}`))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got map[string]interface{}
		decodeBody(t, rec, &got)
		assert.Equal(t, "22222", got["nrc"])
	})

	t.Run("missing record", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "no encontrado"}`),
		}
		req, rec := newAuthRequest(http.MethodGet, "/materias/99/", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("verify NRC", func(t *testing.T) {
		tests := []httpTest{
			{name: "taken", path: "/materias/verificar-nrc/11111/", wantCode: http.StatusOK, wantData: []byte(`{"existe": true}`)},
			{name: "free", path: "/materias/verificar-nrc/00000/", wantCode: http.StatusOK, wantData: []byte(`{"existe": false}`)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(http.MethodGet, tt.path, token)
				env.app.ServeHTTP(rec, req)
				checkCodeAndData(t, tt, rec)
			})
		}
	})
}

func TestSubjectUpdate(t *testing.T) {
	env := setup(t)
	admin := env.createAdmin(t, "admin@uni.mx")
	token := getToken(t, admin)

	body := marchallObj(t, map[string]interface{}{"nrc": "11111", "nombre": "Física"})
	req, rec := newAuthRequest(http.MethodPost, "/materias/", token, body)
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("partial update via path id", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: []byte(`{"message": "Materia actualizada correctamente"}`),
		}
		body := marchallObj(t, map[string]interface{}{"nombre": "Física II", "hora_inicio": "7:30 AM"})
		req, rec := newAuthRequest(http.MethodPut, "/materias/1/", token, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)

		sub, err := env.subjects.GetSubjectByID(req.Context(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Física II", sub.Name, "update alias always wins")
		assert.Equal(t, "07:30:00", sub.StartTime)
		assert.Equal(t, "11111", sub.NRC, "unsupplied fields keep their values")
	})

	t.Run("id via body", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"id": 1, "dias": []string{"Viernes"}})
		req, rec := newAuthRequest(http.MethodPut, "/materias/", token, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		sub, err := env.subjects.GetSubjectByID(req.Context(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Viernes", sub.Days)
	})

	t.Run("missing record", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "no encontrado"}`),
		}
		body := marchallObj(t, map[string]interface{}{"nombre": "X"})
		req, rec := newAuthRequest(http.MethodPut, "/materias/99/", token, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestSubjectDelete(t *testing.T) {
	env := setup(t)
	admin := env.createAdmin(t, "admin@uni.mx")
	token := getToken(t, admin)

	body := marchallObj(t, map[string]interface{}{"nrc": "11111", "nombre": "Historia"})
	req, rec := newAuthRequest(http.MethodPost, "/materias/", token, body)
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("delete via query id", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: []byte(`{"message": "Materia eliminada correctamente"}`),
		}
		req, rec := newAuthRequest(http.MethodDelete, "/materias/?id=1", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("already gone", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "no encontrado"}`),
		}
		req, rec := newAuthRequest(http.MethodDelete, "/materias/1/", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
