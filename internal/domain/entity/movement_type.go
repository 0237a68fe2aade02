package entity

import "fmt"

// MovementType es la variante cerrada de movimientos de inventario.
// El valor cero no es un tipo válido.
type MovementType uint8

const (
	MovementStockIn     MovementType = iota + 1 // entrada (recepción)
	MovementStockOut                            // salida (entrega, consumo)
	MovementTransferIn                          // llegada de traslado desde otra sede
	MovementTransferOut                         // envío de traslado hacia otra sede
	MovementAdjustment                          // ajuste con signo (corrección de conteo)
)

// MovementTypes lista todos los tipos válidos en orden estable.
var MovementTypes = []MovementType{
	MovementStockIn,
	MovementStockOut,
	MovementTransferIn,
	MovementTransferOut,
	MovementAdjustment,
}

// String devuelve el código persistido del tipo (ej. "STOCK_IN").
func (t MovementType) String() string {
	switch t {
	case MovementStockIn:
		return "STOCK_IN"
	case MovementStockOut:
		return "STOCK_OUT"
	case MovementTransferIn:
		return "TRANSFER_IN"
	case MovementTransferOut:
		return "TRANSFER_OUT"
	case MovementAdjustment:
		return "ADJUSTMENT"
	}
	return fmt.Sprintf("MovementType(%d)", uint8(t))
}

// IsValid indica si t es una de las variantes definidas.
func (t MovementType) IsValid() bool {
	return t >= MovementStockIn && t <= MovementAdjustment
}

// IsTransfer indica si es uno de los dos tramos de un traslado.
func (t MovementType) IsTransfer() bool {
	return t == MovementTransferIn || t == MovementTransferOut
}

// ParseMovementType convierte el código persistido en MovementType.
func ParseMovementType(s string) (MovementType, error) {
	for _, t := range MovementTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("tipo de movimiento desconocido %q", s)
}

// MarshalText implementa encoding.TextMarshaler (JSON, columnas de texto).
func (t MovementType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("tipo de movimiento inválido %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implementa encoding.TextUnmarshaler.
func (t *MovementType) UnmarshalText(data []byte) error {
	parsed, err := ParseMovementType(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
