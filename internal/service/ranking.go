package service

import (
	"sort"

	"findautopart/internal/model"

	"github.com/shopspring/decimal"
)

// OfertaResumen is an oferta with the figures the ranking compares.
type OfertaResumen struct {
	Oferta           *model.Oferta
	Total            decimal.Decimal
	ItemsDisponibles int
	ItemsTotales     int
	DiasEntrega      int
}

var cien = decimal.NewFromInt(100)

// Cobertura is ItemsDisponibles/ItemsTotales as a percentage with two
// decimals; 0 when the oferta has no items.
func (r OfertaResumen) Cobertura() decimal.Decimal {
	if r.ItemsTotales == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(r.ItemsDisponibles)).
		Mul(cien).
		Div(decimal.NewFromInt(int64(r.ItemsTotales))).
		Round(2)
}

// ResumirOferta computes total over available items only and the coverage counts.
func ResumirOferta(o *model.Oferta) OfertaResumen {
	r := OfertaResumen{Oferta: o, Total: decimal.Zero, DiasEntrega: o.DiasEntrega, ItemsTotales: len(o.Items)}
	for _, it := range o.Items {
		if !it.Disponible {
			continue
		}
		r.ItemsDisponibles++
		r.Total = r.Total.Add(it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad))))
	}
	return r
}

// compararCobertura returns -1, 0, 1 as a's coverage is lower, equal, higher
// than b's. Cross-multiplication keeps it exact.
func compararCobertura(a, b OfertaResumen) int {
	an, ad := a.ItemsDisponibles, a.ItemsTotales
	bn, bd := b.ItemsDisponibles, b.ItemsTotales
	if ad == 0 {
		an, ad = 0, 1
	}
	if bd == 0 {
		bn, bd = 0, 1
	}
	l, r := an*bd, bn*ad
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

// OrdenarMejorOferta sorts in place: coverage desc, total asc, días asc.
// The sort is stable; full ties keep input order (created_at, id ascending).
func OrdenarMejorOferta(rs []OfertaResumen) {
	sort.SliceStable(rs, func(i, j int) bool {
		if c := compararCobertura(rs[i], rs[j]); c != 0 {
			return c > 0
		}
		if c := rs[i].Total.Cmp(rs[j].Total); c != 0 {
			return c < 0
		}
		return rs[i].DiasEntrega < rs[j].DiasEntrega
	})
}

// OrdenarPorPrecio sorts in place by total ascending only (comparison view).
func OrdenarPorPrecio(rs []OfertaResumen) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].Total.LessThan(rs[j].Total)
	})
}
