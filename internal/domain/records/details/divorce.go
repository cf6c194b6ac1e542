package details

// Divorce es el payload de un registro de divorcio.
type Divorce struct {
	ApplicantName        string `json:"applicantName"`
	ApplicantNationality string `json:"applicantNationality"`
	ApplicantOccupation  string `json:"applicantOccupation"`

	SpouseName        string `json:"spouseName"`
	SpouseNationality string `json:"spouseNationality"`

	DivorceDate   string `json:"dodiv"` // YYYY-MM-DD
	ChildrenCount string `json:"childrenCount"`
	Reason        string `json:"divorceReason"`
}

func (d *Divorce) Validate() error {
	if err := required("applicantName", d.ApplicantName); err != nil {
		return err
	}
	if err := required("spouseName", d.SpouseName); err != nil {
		return err
	}
	return required("dodiv", d.DivorceDate)
}

func (d *Divorce) Holder() string { return d.ApplicantName + " & " + d.SpouseName }

func (d *Divorce) EventDate() string { return d.DivorceDate }
