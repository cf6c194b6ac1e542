package details

// Birth es el payload de un registro de nacimiento.
// Los nombres JSON vienen del formulario de registro original.
type Birth struct {
	FullName     string `json:"fullName"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"dob"` // YYYY-MM-DD
	PlaceOfBirth string `json:"placeOfBirth"`
	Nationality  string `json:"nationality"`

	FatherName        string `json:"fatherName"`
	FatherNationality string `json:"fatherNationality"`
	FatherOccupation  string `json:"fatherOccupation"`

	MotherName        string `json:"motherName"`
	MotherNationality string `json:"motherNationality"`
	MotherOccupation  string `json:"motherOccupation"`
}

func (d *Birth) Validate() error {
	if err := required("fullName", d.FullName); err != nil {
		return err
	}
	return required("dob", d.DateOfBirth)
}

func (d *Birth) Holder() string { return d.FullName }

func (d *Birth) EventDate() string { return d.DateOfBirth }
