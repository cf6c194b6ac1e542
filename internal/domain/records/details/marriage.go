package details

// Marriage es el payload de un registro de matrimonio.
type Marriage struct {
	GroomName        string `json:"groomName"`
	GroomDOB         string `json:"groomDob"`
	GroomNationality string `json:"groomNationality"`
	GroomOccupation  string `json:"groomOccupation"`

	BrideName        string `json:"brideName"`
	BrideDOB         string `json:"brideDob"`
	BrideNationality string `json:"brideNationality"`
	BrideOccupation  string `json:"brideOccupation"`

	MarriageDate string `json:"dom"` // YYYY-MM-DD
	Religion     string `json:"marriageReligion"`
	Witnesses    string `json:"witnesses"`
}

func (d *Marriage) Validate() error {
	if err := required("groomName", d.GroomName); err != nil {
		return err
	}
	if err := required("brideName", d.BrideName); err != nil {
		return err
	}
	return required("dom", d.MarriageDate)
}

func (d *Marriage) Holder() string { return d.GroomName + " & " + d.BrideName }

func (d *Marriage) EventDate() string { return d.MarriageDate }
