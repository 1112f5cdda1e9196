package series

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/StablePeru/Fullstack-AsRecorded/database"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/catalog"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(db, zap.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", uint(1)) })
	r.GET("/series", h.ListSeries)
	r.GET("/series/:id", h.GetSerie)
	r.POST("/series", h.CreateSerie)
	r.DELETE("/series/:id", h.DeleteSerie)
	r.GET("/series/:id/capitulos", h.ListCapitulos)
	r.GET("/series/:id/resumen", h.Resumen)
	r.GET("/capitulos/:id/details", h.ChapterDetails)
	return r
}

type fixture struct {
	serie    catalog.Serie
	capitulo catalog.Capitulo
	takes    []catalog.Take
	marta    catalog.Personaje
	jon      catalog.Personaje
	user     users.Usuario
}

// seedFixture builds one serie with one chapter, two takes and three
// interventions, the first of them completed by a user.
func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	fx := fixture{}
	fx.serie = catalog.Serie{NumeroReferencia: "REF01", NombreSerie: "Mi Serie"}
	require.NoError(t, db.Create(&fx.serie).Error)
	fx.capitulo = catalog.Capitulo{SerieID: fx.serie.ID, NumeroCapitulo: 3, TituloCapitulo: "El tercero"}
	require.NoError(t, db.Create(&fx.capitulo).Error)

	fx.takes = []catalog.Take{
		{CapituloID: fx.capitulo.ID, NumeroTake: 1, TCIn: "00:00:01:00", TCOut: "00:00:10:00"},
		{CapituloID: fx.capitulo.ID, NumeroTake: 2, TCIn: "00:00:11:00", TCOut: "00:00:20:00"},
	}
	require.NoError(t, db.Create(&fx.takes).Error)

	fx.marta = catalog.Personaje{NombrePersonaje: "MARTA"}
	require.NoError(t, db.Create(&fx.marta).Error)
	fx.jon = catalog.Personaje{NombrePersonaje: "JON"}
	require.NoError(t, db.Create(&fx.jon).Error)

	fx.user = users.Usuario{Nombre: "tecnico_juan", PasswordHash: "x", Rol: users.RoleTecnico}
	require.NoError(t, db.Create(&fx.user).Error)

	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	intervenciones := []catalog.Intervencion{
		{
			TakeID: fx.takes[0].ID, PersonajeID: fx.marta.ID, Dialogo: "Hola.",
			Completo: true, Estado: catalog.EstadoCompletado, OrdenEnTake: 0,
			CompletadoPorID: &fx.user.ID, CompletadoEn: &now,
		},
		{
			TakeID: fx.takes[0].ID, PersonajeID: fx.jon.ID, Dialogo: "Adiós.",
			Estado: catalog.EstadoPendiente, OrdenEnTake: 1,
		},
		{
			TakeID: fx.takes[1].ID, PersonajeID: fx.marta.ID, Dialogo: "Sigo aquí.",
			Estado: catalog.EstadoPendiente, OrdenEnTake: 0,
		},
	}
	require.NoError(t, db.Create(&intervenciones).Error)
	return fx
}

func TestChapterDetailsNestsTakesAndInterventions(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	fx := seedFixture(t, db)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/capitulos/%d/details", fx.capitulo.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var details ChapterDetailsDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, 3, details.Capitulo.NumeroCapitulo)
	require.Len(t, details.Takes, 2)

	first := details.Takes[0]
	assert.Equal(t, 1, first.NumeroTake)
	require.Len(t, first.Intervenciones, 2)
	assert.Equal(t, "MARTA", first.Intervenciones[0].Personaje)
	assert.Equal(t, "tecnico_juan", first.Intervenciones[0].CompletadoPor)
	assert.True(t, first.Intervenciones[0].Completo)
	assert.Equal(t, "JON", first.Intervenciones[1].Personaje)
	assert.Empty(t, first.Intervenciones[1].CompletadoPor)

	second := details.Takes[1]
	require.Len(t, second.Intervenciones, 1)
	assert.Equal(t, "Sigo aquí.", second.Intervenciones[0].Dialogo)
}

func TestChapterDetailsNotFound(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	req := httptest.NewRequest(http.MethodGet, "/capitulos/999/details", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResumenListsPendingCharactersOnly(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	fx := seedFixture(t, db)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/series/%d/resumen", fx.serie.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rows []ResumenRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)

	// Both characters have one pending intervention; the tie breaks on name.
	assert.Equal(t, "JON", rows[0].NombrePersonaje)
	assert.Equal(t, 1, rows[0].Restantes)
	assert.Zero(t, rows[0].PorcentajeCompletado)
	assert.Equal(t, "MARTA", rows[1].NombrePersonaje)
	assert.Equal(t, 1, rows[1].Restantes)
	assert.InDelta(t, 50.0, rows[1].PorcentajeCompletado, 0.01)

	// Completing everything empties the summary.
	require.NoError(t, db.Model(&catalog.Intervencion{}).Where("1 = 1").Update("completo", true).Error)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Empty(t, rows)
}

func TestCreateSerieRejectsDuplicateReference(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	seedFixture(t, db)

	body, _ := json.Marshal(gin.H{"numero_referencia": "REF01", "nombre_serie": "Otra"})
	req := httptest.NewRequest(http.MethodPost, "/series", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteSerieCascades(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	fx := seedFixture(t, db)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/series/%d", fx.serie.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, model := range []any{&catalog.Serie{}, &catalog.Capitulo{}, &catalog.Take{}, &catalog.Intervencion{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	// Characters are shared across series and are not removed.
	var personajes int64
	require.NoError(t, db.Model(&catalog.Personaje{}).Count(&personajes).Error)
	assert.EqualValues(t, 2, personajes)
}

func TestDeleteSerieNotFound(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	req := httptest.NewRequest(http.MethodDelete, "/series/999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
