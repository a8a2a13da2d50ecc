package infra

import (
	"bytes"
	"fmt"
	"strings"

	"findautopart/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// PedidoSlip carries what the order slip prints besides the pedido itself.
type PedidoSlip struct {
	Pedido    *model.Pedido
	Taller    string
	Proveedor string
	Titulo    string
	Vehiculo  string
	Items     []model.OfertaItem
}

// GeneratePedidoPDF renders an A4 order slip and returns the PDF bytes.
// Unavailable items are listed but excluded from the total, matching Pedido.Total.
func GeneratePedidoPDF(s PedidoSlip) ([]byte, error) {
	p := s.Pedido
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetMargins(15, 15, 15)
	doc.AddPage()

	pageW, _ := doc.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(contentW, 9, "FindAutoPart", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(contentW, 6, tr("Pedido N° ")+p.ID.String(), "", 1, "L", false, 0, "")
	doc.CellFormat(contentW, 6, "Fecha: "+p.CreatedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	doc.CellFormat(contentW, 6, "Estado: "+strings.ToUpper(p.Estado), "", 1, "L", false, 0, "")
	doc.Ln(3)

	// ── Partes ───────────────────────────────────────────────────────────────
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(contentW/2, 6, "Taller", "", 0, "L", false, 0, "")
	doc.CellFormat(contentW/2, 6, "Proveedor", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(contentW/2, 6, tr(s.Taller), "", 0, "L", false, 0, "")
	doc.CellFormat(contentW/2, 6, tr(s.Proveedor), "", 1, "L", false, 0, "")
	doc.MultiCell(contentW, 6, tr("Entrega: "+p.DireccionEntrega), "", "L", false)
	doc.CellFormat(contentW, 6, "Entrega estimada: "+p.FechaEntregaEstimada.Format("02/01/2006"), "", 1, "L", false, 0, "")
	if s.Titulo != "" {
		doc.CellFormat(contentW, 6, tr(s.Titulo+" / "+s.Vehiculo), "", 1, "L", false, 0, "")
	}
	doc.Ln(3)

	// ── Items ────────────────────────────────────────────────────────────────
	colNombre := contentW * 0.46
	colCant := contentW * 0.10
	colPrecio := contentW * 0.20
	colSub := contentW * 0.24

	doc.SetFont("Helvetica", "B", 9)
	doc.CellFormat(colNombre, 7, "Repuesto", "B", 0, "L", false, 0, "")
	doc.CellFormat(colCant, 7, "Cant", "B", 0, "C", false, 0, "")
	doc.CellFormat(colPrecio, 7, "P. unit.", "B", 0, "R", false, 0, "")
	doc.CellFormat(colSub, 7, "Subtotal", "B", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 9)
	for _, it := range s.Items {
		nombre := it.Nombre
		if it.Marca != nil && *it.Marca != "" {
			nombre += " (" + *it.Marca + ")"
		}
		if len(nombre) > 48 {
			nombre = nombre[:47] + "..."
		}
		sub := "no disponible"
		if it.Disponible {
			sub = "$" + it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad))).StringFixed(2)
		}
		doc.CellFormat(colNombre, 6, tr(nombre), "", 0, "L", false, 0, "")
		doc.CellFormat(colCant, 6, fmt.Sprintf("%d", it.Cantidad), "", 0, "C", false, 0, "")
		doc.CellFormat(colPrecio, 6, "$"+it.PrecioUnitario.StringFixed(2), "", 0, "R", false, 0, "")
		doc.CellFormat(colSub, 6, sub, "", 1, "R", false, 0, "")
	}

	doc.Ln(2)
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(colNombre+colCant+colPrecio, 7, "TOTAL:", "T", 0, "R", false, 0, "")
	doc.CellFormat(colSub, 7, "$"+p.Total.StringFixed(2), "T", 1, "R", false, 0, "")

	if p.Notas != nil && *p.Notas != "" {
		doc.Ln(3)
		doc.SetFont("Helvetica", "I", 9)
		doc.MultiCell(contentW, 5, tr("Notas: "+*p.Notas), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render pedido: %w", err)
	}
	return buf.Bytes(), nil
}
