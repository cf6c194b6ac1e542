package auditlog

import "time"

// Acciones conocidas. El campo Action es texto libre: estas constantes
// cubren las acciones que emite el propio sistema.
const (
	ActionLogin          = "LOGIN"
	ActionCreateRecord   = "CREATE_RECORD"
	ActionUpdateRecord   = "UPDATE_RECORD"
	ActionCreateUser     = "CREATE_USER"
	ActionExportDatabase = "EXPORT_DATABASE"
	ActionImportDatabase = "IMPORT_DATABASE"
)

// Entry es una entrada inmutable del log de auditoría.
// El ID lo asigna el store al insertar; nunca se actualiza ni se borra.
type Entry struct {
	ID        string
	Timestamp time.Time
	UserID    string
	UserName  string
	Action    string
	Details   string
}
