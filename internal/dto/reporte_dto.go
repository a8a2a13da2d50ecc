package dto

import "github.com/shopspring/decimal"

type ReporteFilter struct {
	Desde string `form:"desde" validate:"omitempty,datetime=2006-01-02"`
	Hasta string `form:"hasta" validate:"omitempty,datetime=2006-01-02"`
}

// ResumenResponse is the admin dashboard summary.
type ResumenResponse struct {
	CotizacionesPorEstado map[string]int64 `json:"cotizaciones_por_estado"`
	PedidosPorEstado      map[string]int64 `json:"pedidos_por_estado"`
	Ofertas               int64            `json:"ofertas"`
	MontoEntregado        decimal.Decimal  `json:"monto_entregado"`
}
