package kebeles

// Info describe un kebele (la unidad administrativa mínima).
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// catalog es la lista fija de kebeles de la jurisdicción.
var catalog = []Info{
	{ID: "01", Name: "Kebele 01"},
	{ID: "02", Name: "Kebele 02"},
	{ID: "03", Name: "Kebele 03"},
	{ID: "04", Name: "Kebele 04"},
	{ID: "05", Name: "Kebele 05"},
	{ID: "06", Name: "Kebele 06"},
	{ID: "07", Name: "Kebele 07"},
	{ID: "08", Name: "Kebele 08"},
}

// List devuelve el catálogo completo (copia).
func List() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// IsValid reporta si el id pertenece al catálogo.
func IsValid(id string) bool {
	for _, k := range catalog {
		if k.ID == id {
			return true
		}
	}
	return false
}
