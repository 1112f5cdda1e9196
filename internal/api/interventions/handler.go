package interventions

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/audit"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/catalog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const entidadIntervencion = "Intervencion"

type Handler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{DB: db, Log: log}
}

func (h *Handler) load(c *gin.Context) (*catalog.Intervencion, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return nil, false
	}
	var intervencion catalog.Intervencion
	dbErr := h.DB.First(&intervencion, uint(id)).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Intervención no encontrada."})
		return nil, false
	}
	if dbErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno."})
		return nil, false
	}
	return &intervencion, true
}

func (h *Handler) save(c *gin.Context, intervencion *catalog.Intervencion, accion string, payload any) bool {
	userID := c.GetUint("user_id")
	if err := h.DB.Save(intervencion).Error; err != nil {
		h.Log.Error("intervention update failed",
			zap.Uint("intervencion_id", intervencion.ID),
			zap.String("accion", accion),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al actualizar."})
		return false
	}
	audit.Log(h.DB, h.Log, entidadIntervencion, intervencion.ID, userID, accion, payload)
	return true
}

// PATCH /api/intervenciones/:id/status — the legacy completion flag. The
// timestamp and completing user are recorded on the transition to true and
// cleared on the transition to false.
func (h *Handler) UpdateStatus(c *gin.Context) {
	intervencion, ok := h.load(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Completo == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Falta campo 'completo' (boolean) en JSON."})
		return
	}

	userID := c.GetUint("user_id")
	applyCompletion(intervencion, *req.Completo, userID)

	if !h.save(c, intervencion, "update_status", gin.H{"completo": *req.Completo}) {
		return
	}
	c.JSON(http.StatusOK, intervencion)
}

// PATCH /api/intervenciones/:id/estado — tri-state status. A note is
// mandatory when skipping.
func (h *Handler) UpdateEstado(c *gin.Context) {
	intervencion, ok := h.load(c)
	if !ok {
		return
	}
	var req UpdateEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	estado := strings.ToLower(strings.TrimSpace(req.Estado))
	if !catalog.ValidEstado(estado) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Estado inválido. Valores permitidos: pendiente, completado, omitido."})
		return
	}
	nota := strings.TrimSpace(req.Nota)
	if estado == catalog.EstadoOmitido && nota == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se requiere una nota al marcar una intervención como omitida."})
		return
	}

	userID := c.GetUint("user_id")
	intervencion.Estado = estado
	intervencion.EstadoNota = nota
	applyCompletion(intervencion, estado == catalog.EstadoCompletado, userID)

	if !h.save(c, intervencion, "update_estado", gin.H{"estado": estado, "nota": nota}) {
		return
	}
	c.JSON(http.StatusOK, intervencion)
}

// PATCH /api/intervenciones/:id/efectos — the independent needs-effects flag
// with its note, source and marker metadata. Clearing the flag clears them.
func (h *Handler) UpdateEfectos(c *gin.Context) {
	intervencion, ok := h.load(c)
	if !ok {
		return
	}
	var req UpdateEfectosRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.NecesitaEfectos == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Falta campo 'necesita_efectos' (boolean) en JSON."})
		return
	}

	intervencion.NecesitaEfectos = *req.NecesitaEfectos
	if *req.NecesitaEfectos {
		intervencion.EfectosNota = strings.TrimSpace(req.Nota)
		intervencion.EfectosOrigen = strings.TrimSpace(req.Origen)
		intervencion.EfectosMarca = strings.TrimSpace(req.Marca)
	} else {
		intervencion.EfectosNota = ""
		intervencion.EfectosOrigen = ""
		intervencion.EfectosMarca = ""
	}

	if !h.save(c, intervencion, "update_efectos", gin.H{"necesita_efectos": *req.NecesitaEfectos, "nota": intervencion.EfectosNota}) {
		return
	}
	c.JSON(http.StatusOK, intervencion)
}

// PATCH /api/intervenciones/:id/dialogo
func (h *Handler) UpdateDialogo(c *gin.Context) {
	intervencion, ok := h.load(c)
	if !ok {
		return
	}
	var req UpdateDialogoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Dialogo == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Campo 'dialogo' (string) requerido en el cuerpo JSON."})
		return
	}

	intervencion.Dialogo = strings.TrimSpace(*req.Dialogo)
	if !h.save(c, intervencion, "update_dialogo", gin.H{"dialogo": intervencion.Dialogo}) {
		return
	}
	c.JSON(http.StatusOK, intervencion)
}

// PATCH /api/intervenciones/:id/timecode — either field may be updated
// independently. The response carries the row's post-write values, not an
// echo of the request.
func (h *Handler) UpdateTimecode(c *gin.Context) {
	intervencion, ok := h.load(c)
	if !ok {
		return
	}
	var req UpdateTimecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TCIn == nil && req.TCOut == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se requiere 'tc_in' o 'tc_out'."})
		return
	}

	if req.TCIn != nil {
		intervencion.TCIn = strings.TrimSpace(*req.TCIn)
	}
	if req.TCOut != nil {
		intervencion.TCOut = strings.TrimSpace(*req.TCOut)
	}

	if !h.save(c, intervencion, "update_timecode", gin.H{"tc_in": intervencion.TCIn, "tc_out": intervencion.TCOut}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Timecode actualizado",
		"tc_in":   intervencion.TCIn,
		"tc_out":  intervencion.TCOut,
	})
}

// applyCompletion keeps the legacy flag and the tri-state estado coherent.
// Completing always lands on estado completado, even from omitido, where the
// skip note no longer applies.
func applyCompletion(intervencion *catalog.Intervencion, completo bool, userID uint) {
	intervencion.Completo = completo
	if completo {
		now := time.Now()
		intervencion.CompletadoPorID = &userID
		intervencion.CompletadoEn = &now
		if intervencion.Estado == catalog.EstadoOmitido {
			intervencion.EstadoNota = ""
		}
		intervencion.Estado = catalog.EstadoCompletado
	} else {
		intervencion.CompletadoPorID = nil
		intervencion.CompletadoEn = nil
		if intervencion.Estado == catalog.EstadoCompletado {
			intervencion.Estado = catalog.EstadoPendiente
		}
	}
}
