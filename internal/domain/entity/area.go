package entity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Area es un área (departamento) de producción. Conjunto cerrado: no se crean áreas en tiempo de ejecución.
type Area string

// Áreas de producción conocidas.
const (
	AreaCorte       Area = "corte"
	AreaBordado     Area = "bordado"
	AreaEnsamble    Area = "ensamble"
	AreaPlancha     Area = "plancha"
	AreaCalidad     Area = "calidad"
	AreaEnvios      Area = "envios"
	AreaAlmacen     Area = "almacen"
	AreaAdmin       Area = "admin"
	AreaDiseno      Area = "diseño"
	AreaPatronaje   Area = "patronaje"
	AreaOperaciones Area = "operaciones"
)

var allAreas = []Area{
	AreaCorte, AreaBordado, AreaEnsamble, AreaPlancha, AreaCalidad, AreaEnvios,
	AreaAlmacen, AreaAdmin, AreaDiseno, AreaPatronaje, AreaOperaciones,
}

// areaByKey indexa las áreas por su forma normalizada (minúsculas, sin acentos).
var areaByKey = func() map[string]Area {
	m := make(map[string]Area, len(allAreas))
	for _, a := range allAreas {
		m[areaKey(string(a))] = a
	}
	return m
}()

// Areas devuelve todas las áreas registradas en orden de proceso.
func Areas() []Area {
	out := make([]Area, len(allAreas))
	copy(out, allAreas)
	return out
}

// ParseArea convierte texto libre en un Area conocida. Acepta mayúsculas y la forma sin tilde ("diseno").
func ParseArea(s string) (Area, bool) {
	a, ok := areaByKey[areaKey(s)]
	return a, ok
}

// Valid indica si el área pertenece al registro (forma canónica).
func (a Area) Valid() bool {
	for _, known := range allAreas {
		if known == a {
			return true
		}
	}
	return false
}

// CanOriginateOrders indica si el área puede dar de alta pedidos.
func (a Area) CanOriginateOrders() bool {
	return a == AreaCorte || a == AreaAdmin
}

// HoldsPieces indica si el área puede tener piezas físicamente (admin no).
func (a Area) HoldsPieces() bool {
	return a.Valid() && a != AreaAdmin
}

func (a Area) String() string { return string(a) }

func areaKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
