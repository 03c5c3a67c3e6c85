package registry

import "strings"

// Address is the registry's postal address shape, shared by companies,
// officers and PSCs. Every field is optional.
type Address struct {
	CareOf       string `json:"care_of,omitempty"`
	Premises     string `json:"premises,omitempty"`
	AddressLine1 string `json:"address_line_1,omitempty"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	Locality     string `json:"locality,omitempty"`
	Region       string `json:"region,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
}

func (a *Address) String() string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, 7)
	for _, part := range []string{a.Premises, a.AddressLine1, a.AddressLine2, a.Locality, a.Region, a.PostalCode, a.Country} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

type PartialDate struct {
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}

// Links is the HATEOAS block on officer and search records.
type Links struct {
	Self    string        `json:"self,omitempty"`
	Officer *OfficerLinks `json:"officer,omitempty"`
}

type OfficerLinks struct {
	Appointments string `json:"appointments,omitempty"`
}

type CompanySummary struct {
	Title          string   `json:"title"`
	CompanyNumber  string   `json:"company_number"`
	CompanyStatus  string   `json:"company_status,omitempty"`
	CompanyType    string   `json:"company_type,omitempty"`
	DateOfCreation string   `json:"date_of_creation,omitempty"`
	AddressSnippet string   `json:"address_snippet,omitempty"`
	Description    string   `json:"description,omitempty"`
	Address        *Address `json:"address,omitempty"`
	Links          *Links   `json:"links,omitempty"`
}

type OfficerSummary struct {
	Title            string       `json:"title"`
	Description      string       `json:"description,omitempty"`
	AddressSnippet   string       `json:"address_snippet,omitempty"`
	AppointmentCount int          `json:"appointment_count,omitempty"`
	DateOfBirth      *PartialDate `json:"date_of_birth,omitempty"`
	Address          *Address     `json:"address,omitempty"`
	Links            *Links       `json:"links,omitempty"`
}

// Officer is a director or secretary listed against a company.
type Officer struct {
	Name               string       `json:"name"`
	OfficerRole        string       `json:"officer_role,omitempty"`
	AppointedOn        string       `json:"appointed_on,omitempty"`
	ResignedOn         string       `json:"resigned_on,omitempty"`
	Nationality        string       `json:"nationality,omitempty"`
	Occupation         string       `json:"occupation,omitempty"`
	CountryOfResidence string       `json:"country_of_residence,omitempty"`
	DateOfBirth        *PartialDate `json:"date_of_birth,omitempty"`
	Address            *Address     `json:"address,omitempty"`
	Links              *Links       `json:"links,omitempty"`
}

func (o Officer) Active() bool {
	return strings.TrimSpace(o.ResignedOn) == ""
}

// PSC is a person with significant control.
type PSC struct {
	Name             string   `json:"name"`
	Kind             string   `json:"kind,omitempty"`
	NotifiedOn       string   `json:"notified_on,omitempty"`
	CeasedOn         string   `json:"ceased_on,omitempty"`
	Nationality      string   `json:"nationality,omitempty"`
	NaturesOfControl []string `json:"natures_of_control,omitempty"`
	Address          *Address `json:"address,omitempty"`
	Links            *Links   `json:"links,omitempty"`
}

type Filing struct {
	TransactionID string       `json:"transaction_id,omitempty"`
	Date          string       `json:"date,omitempty"`
	Category      string       `json:"category,omitempty"`
	Type          string       `json:"type,omitempty"`
	Description   string       `json:"description,omitempty"`
	Pages         int          `json:"pages,omitempty"`
	Links         *FilingLinks `json:"links,omitempty"`
}

type FilingLinks struct {
	Self             string `json:"self,omitempty"`
	DocumentMetadata string `json:"document_metadata,omitempty"`
}

type Charge struct {
	ChargeCode      string                `json:"charge_code,omitempty"`
	Status          string                `json:"status,omitempty"`
	CreatedOn       string                `json:"created_on,omitempty"`
	DeliveredOn     string                `json:"delivered_on,omitempty"`
	SatisfiedOn     string                `json:"satisfied_on,omitempty"`
	Classification  *ChargeClassification `json:"classification,omitempty"`
	PersonsEntitled []PersonEntitled      `json:"persons_entitled,omitempty"`
}

type ChargeClassification struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

type PersonEntitled struct {
	Name string `json:"name"`
}

// Appointment is one company appointment held by an officer.
type Appointment struct {
	Name        string      `json:"name"`
	OfficerRole string      `json:"officer_role,omitempty"`
	AppointedOn string      `json:"appointed_on,omitempty"`
	ResignedOn  string      `json:"resigned_on,omitempty"`
	AppointedTo AppointedTo `json:"appointed_to"`
	Address     *Address    `json:"address,omitempty"`
}

type AppointedTo struct {
	CompanyName   string `json:"company_name,omitempty"`
	CompanyNumber string `json:"company_number,omitempty"`
	CompanyStatus string `json:"company_status,omitempty"`
}

type CompanyProfile struct {
	CompanyName             string    `json:"company_name"`
	CompanyNumber           string    `json:"company_number"`
	CompanyStatus           string    `json:"company_status,omitempty"`
	Type                    string    `json:"type,omitempty"`
	Jurisdiction            string    `json:"jurisdiction,omitempty"`
	DateOfCreation          string    `json:"date_of_creation,omitempty"`
	DateOfCessation         string    `json:"date_of_cessation,omitempty"`
	HasCharges              bool      `json:"has_charges,omitempty"`
	SICCodes                []string  `json:"sic_codes,omitempty"`
	RegisteredOfficeAddress *Address  `json:"registered_office_address,omitempty"`
	Accounts                *Accounts `json:"accounts,omitempty"`
	Links                   *Links    `json:"links,omitempty"`
}

type Accounts struct {
	NextDue      string        `json:"next_due,omitempty"`
	LastAccounts *LastAccounts `json:"last_accounts,omitempty"`
}

type LastAccounts struct {
	MadeUpTo string `json:"made_up_to,omitempty"`
	Type     string `json:"type,omitempty"`
}
