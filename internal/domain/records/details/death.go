package details

// Death es el payload de un registro de defunción.
type Death struct {
	FullName     string `json:"fullName"`
	DateOfDeath  string `json:"dod"` // YYYY-MM-DD
	Gender       string `json:"gender"`
	PlaceOfDeath string `json:"pob"` // el formulario original reusa "pob"
	Nationality  string `json:"nationality"`
	Religion     string `json:"religion"`

	MaritalStatus string `json:"maritalStatus"`
	Occupation    string `json:"occupation"`
	Education     string `json:"education"`
	Cause         string `json:"cause"`
}

func (d *Death) Validate() error {
	if err := required("fullName", d.FullName); err != nil {
		return err
	}
	return required("dod", d.DateOfDeath)
}

func (d *Death) Holder() string { return d.FullName }

func (d *Death) EventDate() string { return d.DateOfDeath }
