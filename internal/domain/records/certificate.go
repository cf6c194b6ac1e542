package records

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// maxCertificateAttempts acota los reintentos ante colisión de número
// de certificado. Agotarlos se reporta como conflicto, nunca se pisa
// un número existente.
const maxCertificateAttempts = 5

// newCertificateNumber genera un candidato CERT-XXXXXXXX (8 dígitos).
// El primer intento deriva del reloj (como el sistema original, que usaba
// los últimos 8 dígitos del timestamp); los reintentos son aleatorios
// para despegarse de un choque por milisegundo compartido.
func newCertificateNumber(now time.Time, attempt int) string {
	if attempt == 0 {
		ms := now.UnixMilli()
		return fmt.Sprintf("CERT-%08d", ms%100000000)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(100000000))
	if err != nil {
		// rand.Reader no falla en la práctica; caemos al reloj con offset.
		return fmt.Sprintf("CERT-%08d", (now.UnixMilli()+int64(attempt))%100000000)
	}
	return fmt.Sprintf("CERT-%08d", n.Int64())
}

// newRegistrationID genera un id REG- + 9 caracteres base36 mayúsculas,
// el formato de id del sistema original.
func newRegistrationID() string {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		// Fallback determinista; no debería ocurrir.
		return fmt.Sprintf("REG-%09d", time.Now().UnixNano()%1000000000)
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return "REG-" + string(b)
}
