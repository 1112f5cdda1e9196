package series

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/catalog"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{DB: db, Log: log}
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// GET /api/series
func (h *Handler) ListSeries(c *gin.Context) {
	var series []catalog.Serie
	if err := h.DB.Order("nombre_serie").Find(&series).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al obtener series."})
		return
	}
	c.JSON(http.StatusOK, series)
}

// GET /api/series/:id
func (h *Handler) GetSerie(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var serie catalog.Serie
	err := h.DB.First(&serie, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Serie no encontrada."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al obtener detalles de serie."})
		return
	}
	c.JSON(http.StatusOK, serie)
}

// POST /api/series
func (h *Handler) CreateSerie(c *gin.Context) {
	var req CreateSerieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ref := strings.TrimSpace(req.NumeroReferencia)
	nombre := strings.TrimSpace(req.NombreSerie)
	if ref == "" || nombre == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Numero de referencia y nombre de serie no pueden estar vacíos."})
		return
	}

	serie := catalog.Serie{NumeroReferencia: ref, NombreSerie: nombre}
	if err := h.DB.Create(&serie).Error; err != nil {
		h.Log.Warn("serie insert rejected", zap.String("referencia", ref), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "No se pudo añadir la serie. ¿La referencia ya existe?"})
		return
	}
	c.JSON(http.StatusCreated, serie)
}

// DELETE /api/series/:id — cascades to chapters, takes and interventions.
func (h *Handler) DeleteSerie(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("user_id")

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var serie catalog.Serie
		if err := tx.First(&serie, id).Error; err != nil {
			return err
		}

		capituloIDs := tx.Model(&catalog.Capitulo{}).Select("id").Where("serie_id = ?", id)
		takeIDs := tx.Model(&catalog.Take{}).Select("id").Where("capitulo_id IN (?)", capituloIDs)

		if err := tx.Where("take_id IN (?)", takeIDs).Delete(&catalog.Intervencion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("capitulo_id IN (?)", capituloIDs).Delete(&catalog.Take{}).Error; err != nil {
			return err
		}
		if err := tx.Where("serie_id = ?", id).Delete(&catalog.Capitulo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&serie).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Serie no encontrada."})
		return
	}
	if err != nil {
		h.Log.Error("serie delete failed", zap.Uint("serie_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al eliminar serie."})
		return
	}

	h.Log.Info("serie deleted", zap.Uint("serie_id", id), zap.Uint("user_id", userID))
	c.JSON(http.StatusOK, gin.H{"message": "Serie eliminada."})
}

// GET /api/series/:id/capitulos
func (h *Handler) ListCapitulos(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var capitulos []catalog.Capitulo
	if err := capitulosQuery(h.DB, id).Find(&capitulos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al obtener capítulos."})
		return
	}
	out := make([]CapituloDTO, 0, len(capitulos))
	for _, cap := range capitulos {
		out = append(out, CapituloDTO{ID: cap.ID, NumeroCapitulo: cap.NumeroCapitulo, TituloCapitulo: cap.TituloCapitulo})
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/capitulos/:id/details — the chapter with its takes and nested
// interventions, character and completing-user names resolved.
func (h *Handler) ChapterDetails(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var capitulo catalog.Capitulo
	err := h.DB.First(&capitulo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Capítulo no encontrado."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al obtener detalles del capítulo."})
		return
	}

	var takes []catalog.Take
	err = h.DB.Where("capitulo_id = ?", id).
		Order("numero_take").
		Preload("Intervenciones", func(db *gorm.DB) *gorm.DB {
			return db.Order("orden_en_take, id")
		}).
		Find(&takes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al obtener detalles del capítulo."})
		return
	}

	personajeNames, userNames, err := h.resolveNames(takes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al obtener detalles del capítulo."})
		return
	}

	out := ChapterDetailsDTO{
		Capitulo: CapituloDTO{ID: capitulo.ID, NumeroCapitulo: capitulo.NumeroCapitulo, TituloCapitulo: capitulo.TituloCapitulo},
		Takes:    make([]TakeDTO, 0, len(takes)),
	}
	for _, t := range takes {
		dto := TakeDTO{
			ID:             t.ID,
			NumeroTake:     t.NumeroTake,
			TCIn:           t.TCIn,
			TCOut:          t.TCOut,
			Intervenciones: make([]IntervencionDTO, 0, len(t.Intervenciones)),
		}
		for _, i := range t.Intervenciones {
			var completadoPor string
			if i.CompletadoPorID != nil {
				completadoPor = userNames[*i.CompletadoPorID]
			}
			dto.Intervenciones = append(dto.Intervenciones, IntervencionDTO{
				ID:              i.ID,
				TakeID:          i.TakeID,
				Personaje:       personajeNames[i.PersonajeID],
				Dialogo:         i.Dialogo,
				Completo:        i.Completo,
				Estado:          i.Estado,
				EstadoNota:      i.EstadoNota,
				NecesitaEfectos: i.NecesitaEfectos,
				EfectosNota:     i.EfectosNota,
				TCIn:            i.TCIn,
				TCOut:           i.TCOut,
				OrdenEnTake:     i.OrdenEnTake,
				CompletadoPor:   completadoPor,
				CompletadoEn:    i.CompletadoEn,
			})
		}
		out.Takes = append(out.Takes, dto)
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/series/:id/resumen
func (h *Handler) Resumen(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rows, err := resumenRows(h.DB, id)
	if err != nil {
		h.Log.Error("resumen query failed", zap.Uint("serie_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al generar el resumen."})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) resolveNames(takes []catalog.Take) (map[uint]string, map[uint]string, error) {
	personajeSet := make(map[uint]bool)
	userSet := make(map[uint]bool)
	for _, t := range takes {
		for _, i := range t.Intervenciones {
			personajeSet[i.PersonajeID] = true
			if i.CompletadoPorID != nil {
				userSet[*i.CompletadoPorID] = true
			}
		}
	}

	personajeNames := make(map[uint]string, len(personajeSet))
	if len(personajeSet) > 0 {
		ids := make([]uint, 0, len(personajeSet))
		for id := range personajeSet {
			ids = append(ids, id)
		}
		var personajes []catalog.Personaje
		if err := h.DB.Where("id IN ?", ids).Find(&personajes).Error; err != nil {
			return nil, nil, err
		}
		for _, p := range personajes {
			personajeNames[p.ID] = p.NombrePersonaje
		}
	}

	userNames := make(map[uint]string, len(userSet))
	if len(userSet) > 0 {
		ids := make([]uint, 0, len(userSet))
		for id := range userSet {
			ids = append(ids, id)
		}
		var usuarios []users.Usuario
		if err := h.DB.Where("id IN ?", ids).Find(&usuarios).Error; err != nil {
			return nil, nil, err
		}
		for _, u := range usuarios {
			userNames[u.ID] = u.Nombre
		}
	}
	return personajeNames, userNames, nil
}
