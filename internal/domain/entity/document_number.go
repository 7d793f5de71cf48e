package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Familias de documentos con numeración consecutiva propia.
const (
	DocumentFamilySales     = "ventas"
	DocumentFamilyPurchases = "compras"
)

// Numbering describe el formato de los números de una familia de documentos.
type Numbering struct {
	Prefix string // VEN, COMP
	Width  int    // dígitos del sufijo
}

// Format produce el número legible: VEN-0001, COMP-0042.
func (n Numbering) Format(value int) string {
	return fmt.Sprintf("%s-%0*d", n.Prefix, n.Width, value)
}

// ParseDocumentSuffix extrae el sufijo numérico de un número de documento
// (VEN-0012 -> 12). Si el número no tiene la forma esperada devuelve 0, de
// modo que una numeración corrupta reinicia en 0001 en lugar de fallar. El
// corte es en el primer guion: así "VEN--5" deja el sufijo "-5", que cae en
// la guarda de negativos.
func ParseDocumentSuffix(number string) int {
	idx := strings.Index(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0
	}
	v, err := strconv.Atoi(number[idx+1:])
	if err != nil || v < 0 {
		return 0
	}
	return v
}
