package series

import "time"

// ---------- requests

type CreateSerieRequest struct {
	NumeroReferencia string `json:"numero_referencia" binding:"required"`
	NombreSerie      string `json:"nombre_serie" binding:"required"`
}

// ---------- responses

type CapituloDTO struct {
	ID             uint   `json:"id"`
	NumeroCapitulo int    `json:"numero_capitulo"`
	TituloCapitulo string `json:"titulo_capitulo"`
}

type IntervencionDTO struct {
	ID              uint       `json:"id"`
	TakeID          uint       `json:"take_id"`
	Personaje       string     `json:"personaje"`
	Dialogo         string     `json:"dialogo"`
	Completo        bool       `json:"completo"`
	Estado          string     `json:"estado"`
	EstadoNota      string     `json:"estado_nota,omitempty"`
	NecesitaEfectos bool       `json:"necesita_efectos"`
	EfectosNota     string     `json:"efectos_nota,omitempty"`
	TCIn            string     `json:"tc_in"`
	TCOut           string     `json:"tc_out"`
	OrdenEnTake     int        `json:"orden_en_take"`
	CompletadoPor   string     `json:"completado_por,omitempty"`
	CompletadoEn    *time.Time `json:"completado_en,omitempty"`
}

type TakeDTO struct {
	ID             uint              `json:"id"`
	NumeroTake     int               `json:"numero_take"`
	TCIn           string            `json:"tc_in"`
	TCOut          string            `json:"tc_out"`
	Intervenciones []IntervencionDTO `json:"intervenciones"`
}

type ChapterDetailsDTO struct {
	Capitulo CapituloDTO `json:"capitulo"`
	Takes    []TakeDTO   `json:"takes"`
}

// ResumenRow is one character's pending-work line for a serie.
type ResumenRow struct {
	PersonajeID          uint    `json:"personaje_id"`
	NombrePersonaje      string  `json:"nombre_personaje"`
	Restantes            int     `json:"intervenciones_restantes"`
	PorcentajeCompletado float64 `json:"porcentaje_completado"`
}
