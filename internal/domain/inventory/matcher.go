package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DefaultTransferWindow ventana máxima entre salida y llegada de un traslado.
const DefaultTransferWindow = 7 * 24 * time.Hour

// Nombres de las estrategias de emparejamiento (config TRANSFER_MATCHER, query ?matcher=).
const (
	MatcherFirst    = "first"
	MatcherNearest  = "nearest"
	MatcherOneToOne = "one_to_one"
)

// TransferMatcher decide qué TransferIn corresponde a cada TransferOut.
// Match devuelve, por cada elemento de outs, el índice del ingreso elegido en ins o -1.
type TransferMatcher interface {
	Name() string
	Match(outs, ins []entity.MovementRecord, window time.Duration) []int
}

// MatcherByName resuelve una estrategia por nombre. Vacío = FirstMatch.
func MatcherByName(name string) (TransferMatcher, error) {
	switch name {
	case "", MatcherFirst:
		return FirstMatch{}, nil
	case MatcherNearest:
		return NearestDate{}, nil
	case MatcherOneToOne:
		return OneToOne{}, nil
	}
	return nil, fmt.Errorf("estrategia de emparejamiento desconocida %q", name)
}

// IsCandidate indica si in puede ser la llegada de out: mismo libro, misma ruta
// (out.SiteID → out.ToSiteID = in.FromSiteID → in.SiteID) y |d2 − d1| ≤ window.
func IsCandidate(out, in entity.MovementRecord, window time.Duration) bool {
	if out.Type != entity.MovementTransferOut || in.Type != entity.MovementTransferIn {
		return false
	}
	if out.BookID != in.BookID || out.SiteID != in.FromSiteID || out.ToSiteID != in.SiteID {
		return false
	}
	return gap(out, in) <= window
}

func gap(out, in entity.MovementRecord) time.Duration {
	d := in.Timestamp.Sub(out.Timestamp)
	if d < 0 {
		return -d
	}
	return d
}

// FirstMatch es la heurística histórica: por cada salida gana el primer candidato en
// orden de entrada. Un mismo ingreso puede emparejarse con varias salidas, de modo que
// con varios traslados del mismo libro y ruta dentro de la ventana el resultado depende
// del orden de entrada.
type FirstMatch struct{}

func (FirstMatch) Name() string { return MatcherFirst }

func (FirstMatch) Match(outs, ins []entity.MovementRecord, window time.Duration) []int {
	result := make([]int, len(outs))
	for i, out := range outs {
		result[i] = -1
		for j, in := range ins {
			if IsCandidate(out, in, window) {
				result[i] = j
				break
			}
		}
	}
	return result
}

// NearestDate elige por cada salida el candidato más cercano en fecha; a igual distancia,
// el primero en orden de entrada. Igual que FirstMatch, no reserva ingresos.
type NearestDate struct{}

func (NearestDate) Name() string { return MatcherNearest }

func (NearestDate) Match(outs, ins []entity.MovementRecord, window time.Duration) []int {
	result := make([]int, len(outs))
	for i, out := range outs {
		result[i] = -1
		var best time.Duration
		for j, in := range ins {
			if !IsCandidate(out, in, window) {
				continue
			}
			if g := gap(out, in); result[i] == -1 || g < best {
				result[i], best = j, g
			}
		}
	}
	return result
}

// OneToOne empareja como grafo bipartito: cada ingreso se usa a lo sumo una vez y se
// maximiza el número de traslados completados (caminos de aumento). Cada salida prueba
// sus candidatos del más cercano al más lejano, así que entre emparejamientos máximos
// se prefieren las distancias cortas de las primeras salidas.
type OneToOne struct{}

func (OneToOne) Name() string { return MatcherOneToOne }

func (OneToOne) Match(outs, ins []entity.MovementRecord, window time.Duration) []int {
	candidates := make([][]int, len(outs))
	for i, out := range outs {
		for j, in := range ins {
			if IsCandidate(out, in, window) {
				candidates[i] = append(candidates[i], j)
			}
		}
		c := candidates[i]
		sort.SliceStable(c, func(a, b int) bool {
			return gap(out, ins[c[a]]) < gap(out, ins[c[b]])
		})
	}

	owner := make([]int, len(ins)) // ingreso → salida
	for j := range owner {
		owner[j] = -1
	}
	var augment func(i int, visited []bool) bool
	augment = func(i int, visited []bool) bool {
		for _, j := range candidates[i] {
			if visited[j] {
				continue
			}
			visited[j] = true
			if owner[j] == -1 || augment(owner[j], visited) {
				owner[j] = i
				return true
			}
		}
		return false
	}
	for i := range outs {
		augment(i, make([]bool, len(ins)))
	}

	result := make([]int, len(outs))
	for i := range result {
		result[i] = -1
	}
	for j, i := range owner {
		if i >= 0 {
			result[i] = j
		}
	}
	return result
}
