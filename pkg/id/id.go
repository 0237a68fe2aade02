// Package id genera identificadores TypeID para los registros del ledger.
//
// Un TypeID tiene la forma "prefijo_sufijo" donde el sufijo codifica un UUIDv7:
// los IDs generados más tarde ordenan lexicográficamente después de los anteriores.
// El motor de inventario usa ese orden como desempate determinista cuando dos
// movimientos comparten timestamp.
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifica el tipo de entidad codificado en el TypeID.
type Prefix string

const (
	PrefixMovement Prefix = "mov" // movimiento de inventario
	PrefixRequest  Prefix = "req" // petición HTTP (trazabilidad en logs)
)

// New genera un ID nuevo con el prefijo indicado.
// Entra en pánico si el prefijo no es válido (error de programación).
func New(prefix Prefix) string {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: prefijo inválido %q: %v", prefix, err))
	}
	return tid.String()
}

// NewMovementID genera el ID de un movimiento ("mov_...").
func NewMovementID() string { return New(PrefixMovement) }

// NewRequestID genera el ID de una petición ("req_...").
func NewRequestID() string { return New(PrefixRequest) }

// Parse valida un TypeID y comprueba que tenga el prefijo esperado.
func Parse(s string, expected Prefix) (string, error) {
	if s == "" {
		return "", fmt.Errorf("id: cadena vacía")
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("id: parse %q: %w", s, err)
	}
	if Prefix(tid.Prefix()) != expected {
		return "", fmt.Errorf("id: se esperaba prefijo %q, llegó %q", expected, tid.Prefix())
	}
	return tid.String(), nil
}

// ParseMovementID valida un ID de movimiento.
func ParseMovementID(s string) (string, error) { return Parse(s, PrefixMovement) }
