package interventions

type UpdateStatusRequest struct {
	Completo *bool `json:"completo" binding:"required"`
}

type UpdateEstadoRequest struct {
	Estado string `json:"estado" binding:"required"`
	Nota   string `json:"nota"`
}

type UpdateEfectosRequest struct {
	NecesitaEfectos *bool  `json:"necesita_efectos" binding:"required"`
	Nota            string `json:"nota"`
	Origen          string `json:"origen"`
	Marca           string `json:"marca"`
}

type UpdateDialogoRequest struct {
	Dialogo *string `json:"dialogo" binding:"required"`
}

type UpdateTimecodeRequest struct {
	TCIn  *string `json:"tc_in"`
	TCOut *string `json:"tc_out"`
}
