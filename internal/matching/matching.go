// Package matching decides which open cotizaciones a proveedor may see.
//
// Criterio is the normalized proveedor profile. Production listing applies it as
// the SQL filter in repository.CotizacionRepository.ListVisibles; Visible states
// the same rule over loaded values and is what in-memory stores evaluate.
package matching

import (
	"strings"

	"findautopart/internal/model"

	"github.com/google/uuid"
)

// Criterio is a proveedor's matching profile.
type Criterio struct {
	ProveedorID uuid.UUID
	// Categorias empty means every category.
	Categorias []string
	// Regiones empty matches nothing.
	Regiones []string
}

// NuevoCriterio normalizes the proveedor profile: trims, lowercases and drops
// empty entries so comparisons are case-insensitive.
func NuevoCriterio(p *model.Proveedor) Criterio {
	return Criterio{
		ProveedorID: p.ID,
		Categorias:  normalizar(p.Categorias),
		Regiones:    normalizar(p.Regiones),
	}
}

// SinCobertura reports whether no cotización can ever match.
func (c Criterio) SinCobertura() bool { return len(c.Regiones) == 0 }

// TodasLasCategorias reports whether the category filter is disabled.
func (c Criterio) TodasLasCategorias() bool { return len(c.Categorias) == 0 }

// Candidata is what Visible needs to know about a cotización.
type Candidata struct {
	Estado       string
	Categoria    string
	RegionTaller string
	// YaOfertada is true when the proveedor already has an oferta on it.
	YaOfertada bool
}

// Visible is the matching predicate.
func Visible(c Criterio, cand Candidata) bool {
	if cand.Estado != model.CotizacionAbierta || cand.YaOfertada {
		return false
	}
	if !contiene(c.Regiones, Normalizar(cand.RegionTaller)) {
		return false
	}
	return c.TodasLasCategorias() || contiene(c.Categorias, Normalizar(cand.Categoria))
}

// Normalizar is the canonical form used for categories and regions.
func Normalizar(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func normalizar(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := Normalizar(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func contiene(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
